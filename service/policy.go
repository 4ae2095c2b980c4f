package service

import "pdfvault-backend/models"

// canMutate implements the owner-or-admin rule applied to every
// mutating operation (update, delete, bulk variants).
func canMutate(actor *models.User, file *models.File) bool {
	if actor == nil {
		return false
	}
	return actor.IsAdmin || actor.ID == file.UploadedBy
}

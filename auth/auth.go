package auth

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"pdfvault-backend/models"
	"pdfvault-backend/repository"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials covers unknown email and wrong password alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

const userContextKey = "auth_user"

// Authenticator verifies passwords and issues/validates bearer tokens.
type Authenticator struct {
	users         repository.UserRepository
	jwtSecret     []byte
	tokenDuration time.Duration
}

// NewAuthenticator reads JWT settings from the environment.
func NewAuthenticator(users repository.UserRepository) (*Authenticator, error) {
	jwtSecret := os.Getenv("JWT_SECRET")
	if len(jwtSecret) < 32 {
		return nil, errors.New("JWT_SECRET must be at least 32 characters long")
	}

	expHours := 24 // Default to 24 hours
	if expStr := os.Getenv("JWT_EXPIRATION_HOURS"); expStr != "" {
		var err error
		expHours, err = strconv.Atoi(expStr)
		if err != nil || expHours <= 0 {
			return nil, errors.New("JWT_EXPIRATION_HOURS must be a positive integer")
		}
	}

	return &Authenticator{
		users:         users,
		jwtSecret:     []byte(jwtSecret),
		tokenDuration: time.Duration(expHours) * time.Hour,
	}, nil
}

// Login checks the password and returns a signed token plus the user.
func (a *Authenticator) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := a.GenerateToken(user.ID)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// GenerateToken issues an HS256 token for the given user id.
func (a *Authenticator) GenerateToken(userID uuid.UUID) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"exp": time.Now().Add(a.tokenDuration).Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtSecret)
}

// VerifyToken parses and validates a token, returning the user id.
func (a *Authenticator) VerifyToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.jwtSecret, nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	if !token.Valid {
		return uuid.Nil, errors.New("invalid token")
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return uuid.Nil, errors.New("invalid token subject")
	}

	return uuid.Parse(sub)
}

// Middleware authenticates the request and stores the resolved user in
// the gin context. Handlers pass that user into the service explicitly.
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "authorization token required",
				},
			})
			return
		}

		userID, err := a.VerifyToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "invalid token",
				},
			})
			return
		}

		user, err := a.users.GetByID(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "unknown user",
				},
			})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// CurrentUser returns the authenticated user stored by the middleware.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

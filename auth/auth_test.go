package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"pdfvault-backend/models"
	"pdfvault-backend/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[uuid.UUID]*models.User{}}
}

func (r *memUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = uuid.New()
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func newTestAuthenticator(t *testing.T) (*Authenticator, *memUserRepo) {
	t.Helper()
	t.Setenv("JWT_SECRET", testSecret)

	users := newMemUserRepo()
	a, err := NewAuthenticator(users)
	if err != nil {
		t.Fatalf("NewAuthenticator: %v", err)
	}
	return a, users
}

func seedUser(t *testing.T, users *memUserRepo, email, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	user := &models.User{Email: email, PasswordHash: string(hash), Name: "Test"}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	return user
}

func TestGenerateAndVerifyToken(t *testing.T) {
	a, _ := newTestAuthenticator(t)

	userID := uuid.New()
	token, err := a.GenerateToken(userID)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	got, err := a.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if got != userID {
		t.Errorf("VerifyToken = %s, want %s", got, userID)
	}
}

func TestVerifyTokenGarbage(t *testing.T) {
	a, _ := newTestAuthenticator(t)

	if _, err := a.VerifyToken("not.a.token"); err == nil {
		t.Fatal("VerifyToken accepted garbage")
	}
}

func TestSecretTooShort(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")
	if _, err := NewAuthenticator(newMemUserRepo()); err == nil {
		t.Fatal("NewAuthenticator accepted a short secret")
	}
}

func TestLogin(t *testing.T) {
	a, users := newTestAuthenticator(t)
	seedUser(t, users, "user@example.com", "correct horse")

	token, user, err := a.Login(context.Background(), "user@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" || user == nil {
		t.Fatal("Login returned empty token or nil user")
	}

	if _, _, err := a.Login(context.Background(), "user@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := a.Login(context.Background(), "nobody@example.com", "x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email error = %v, want ErrInvalidCredentials", err)
	}
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a, users := newTestAuthenticator(t)
	user := seedUser(t, users, "user@example.com", "pw")

	r := gin.New()
	r.GET("/protected", a.Middleware(), func(c *gin.Context) {
		current := CurrentUser(c)
		if current == nil {
			c.String(http.StatusInternalServerError, "no user in context")
			return
		}
		c.String(http.StatusOK, current.Email)
	})

	// No token
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", w.Code)
	}

	// Valid token
	token, err := a.GenerateToken(user.ID)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("valid token: status = %d, want 200", w.Code)
	}
	if w.Body.String() != user.Email {
		t.Errorf("handler saw user %q, want %q", w.Body.String(), user.Email)
	}

	// Token for a deleted user
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	unknownToken, _ := a.GenerateToken(uuid.New())
	req.Header.Set("Authorization", "Bearer "+unknownToken)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unknown user: status = %d, want 401", w.Code)
	}
}

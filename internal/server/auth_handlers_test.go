package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"golang.org/x/crypto/bcrypt"
)

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestSignup_CreatesUserAndIssuesToken(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	app := newTestApp(s, 0)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/auth/signup",
		`{"username":"fresh","email":"fresh@example.com","password":"s3cret-pw"}`))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	token, ok := body["token"].(string)
	if !ok || token == "" {
		t.Fatalf("missing token in response: %v", body)
	}

	var user models.User
	if err := s.db.Where("email = ?", "fresh@example.com").First(&user).Error; err != nil {
		t.Fatalf("user missing: %v", err)
	}
	if user.Password == "s3cret-pw" {
		t.Fatalf("password stored in plaintext")
	}

	userID, err := middleware.ParseUserID(token, s.config.JWTSecret)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if userID != user.ID {
		t.Fatalf("token subject %d does not match user %d", userID, user.ID)
	}
}

func TestSignup_DuplicateEmailRejected(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	createTestUser(t, s.db, "taken")
	app := newTestApp(s, 0)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/auth/signup",
		`{"username":"other","email":"taken@example.com","password":"s3cret-pw"}`))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestLogin_WrongPasswordRejected(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	hashed, err := bcrypt.GenerateFromPassword([]byte("right-pw"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := &models.User{Username: "guarded", Email: "guarded@example.com", Password: string(hashed)}
	if err := s.db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	app := newTestApp(s, 0)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/auth/login",
		`{"email":"guarded@example.com","password":"wrong-pw"}`))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestLogin_ValidCredentialsIssueToken(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	hashed, err := bcrypt.GenerateFromPassword([]byte("right-pw"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := &models.User{Username: "welcome", Email: "welcome@example.com", Password: string(hashed)}
	if err := s.db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	app := newTestApp(s, 0)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/auth/login",
		`{"email":"welcome@example.com","password":"right-pw"}`))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	token, ok := body["token"].(string)
	if !ok || token == "" {
		t.Fatalf("missing token in response: %v", body)
	}
	userID, err := middleware.ParseUserID(token, s.config.JWTSecret)
	if err != nil || userID != user.ID {
		t.Fatalf("token does not identify the user: id=%d err=%v", userID, err)
	}
}

func TestLoginPrompt_EchoesReturnPath(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	app := newTestApp(s, 0)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/auth/login?next=%2Fcreate", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["next"] != "/create" {
		t.Fatalf("expected echoed return path, got %v", body["next"])
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func signToken(t *testing.T, sub string, secret string) string {
	t.Helper()
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": now.Add(time.Hour).Unix(),
		"iat": now.Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func identityApp() *fiber.App {
	app := fiber.New()
	app.Use(Identity(testSecret))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		uid, ok := CurrentUserID(c)
		return c.JSON(fiber.Map{"user_id": uid, "authenticated": ok})
	})
	guarded := app.Group("", LoginRequired())
	guarded.Get("/private", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestParseUserID(t *testing.T) {
	t.Parallel()

	uid, err := ParseUserID(signToken(t, "42", testSecret), testSecret)
	require.NoError(t, err)
	assert.Equal(t, uint(42), uid)

	_, err = ParseUserID(signToken(t, "42", "other-secret"), testSecret)
	assert.Error(t, err)

	_, err = ParseUserID(signToken(t, "not-a-number", testSecret), testSecret)
	assert.Error(t, err)
}

func TestIdentity_BearerHeader(t *testing.T) {
	t.Parallel()

	app := identityApp()

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "7", testSecret))
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestIdentity_SessionCookie(t *testing.T) {
	t.Parallel()

	app := identityApp()

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: signToken(t, "7", testSecret)})
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestIdentity_InvalidTokenStaysAnonymous(t *testing.T) {
	t.Parallel()

	app := identityApp()

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/auth/login?next=%2Fprivate", resp.Header.Get("Location"))
}

func TestLoginRequired_PreservesQueryInReturnPath(t *testing.T) {
	t.Parallel()

	app := fiber.New()
	app.Get("/feed", LoginRequired(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/feed?page=2", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/auth/login?next=%2Ffeed%3Fpage%3D2", resp.Header.Get("Location"))
}

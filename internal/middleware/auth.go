// Package middleware provides identity, logging and rate-limiting middleware.
package middleware

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// LoginPath is the login entry point guarded handlers redirect to.
const LoginPath = "/auth/login"

// ParseUserID validates an HS256 token and extracts the user ID from the
// subject claim.
func ParseUserID(tokenString, secret string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return 0, err
	}
	if !token.Valid {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid subject claim")
	}

	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid user ID in token")
	}
	return uint(userID), nil
}

// bearerToken extracts the token from "Bearer <token>" or the session cookie.
func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}
	return c.Cookies("session")
}

// Identity extracts the caller's identity from the request, if any, and
// stores the user ID in c.Locals("userID"). Requests without a valid token
// proceed anonymously; enforcement is left to LoginRequired.
func Identity(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tokenString := bearerToken(c); tokenString != "" {
			if userID, err := ParseUserID(tokenString, secret); err == nil {
				c.Locals("userID", userID)
			}
		}
		return c.Next()
	}
}

// LoginRequired guards a route group. Anonymous callers are redirected to the
// login entry point with a `next` parameter carrying the original URL, and no
// state is mutated.
func LoginRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Locals("userID") == nil {
			next := url.QueryEscape(c.OriginalURL())
			return c.Redirect(LoginPath+"?next="+next, fiber.StatusFound)
		}
		return c.Next()
	}
}

// CurrentUserID returns the authenticated user's ID, or (0, false) for
// anonymous requests.
func CurrentUserID(c *fiber.Ctx) (uint, bool) {
	if uid, ok := c.Locals("userID").(uint); ok {
		return uid, true
	}
	return 0, false
}

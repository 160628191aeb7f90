// Package middleware provides HTTP middleware for the fiber app.
// The engine has no end users of its own; the only guarded surface is
// the admin API (withdrawal payouts and manual job triggers), reached
// by the operator tooling with a signed service token.
package middleware

import (
	"log"
	"strings"

	"adsettle/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// AdminClaims is the payload of an operator service token.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AdminAuth validates the bearer service token and requires the admin
// role before letting a request through to the admin routes.
func AdminAuth() fiber.Handler {
	secret := []byte(config.GetEnv("ADMIN_JWT_SECRET", "adsettle-admin"))

	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing bearer token"})
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims := &AdminClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return secret, nil
		})
		if err != nil || !token.Valid {
			log.Printf("admin token rejected: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
		}
		if claims.Role != "admin" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "admin role required"})
		}

		c.Locals("admin_claims", claims)
		return c.Next()
	}
}

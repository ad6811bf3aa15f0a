// FILE: internal/pkg/serverutils/jwt_middleware.go
package serverutils

import (
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JwtMiddleware verifies the gateway-issued token and stores the
// user_id claim in Locals. Websocket upgrades cannot set an
// Authorization header, so a "token" query parameter is accepted too.
func JwtMiddleware(ctx *fiber.Ctx) error {
	tokenStr := ""
	if authHeader := ctx.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		tokenStr = authHeader[len("Bearer "):]
	} else if q := ctx.Query("token"); q != "" {
		tokenStr = q
	}
	if tokenStr == "" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Missing token"})
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})

	if err != nil || !token.Valid {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid claims"})
	}

	ctx.Locals("user_id", claims["user_id"])
	return ctx.Next()
}

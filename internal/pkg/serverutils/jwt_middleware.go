// FILE: internal/pkg/serverutils/jwt_middleware.go
package serverutils

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// TokenQuery carries the token for clients that cannot set headers, i.e. browser websockets.
const TokenQuery = "access_token"

// NewJwtMiddleware verifies HS256 bearer tokens and exposes the user_id and sub claims as locals.
func NewJwtMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tokenStr := ctx.Query(TokenQuery)
		if authHeader := ctx.Get("Authorization"); len(authHeader) >= 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
		if tokenStr == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "Missing token"))
		}

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

		if err != nil || !token.Valid {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "Invalid token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "Invalid claims"))
		}

		// user_id may be numeric or a uuid string depending on the issuer
		if uid, ok := claims["user_id"]; ok && uid != nil {
			switch v := uid.(type) {
			case float64:
				ctx.Locals("user_id", fmt.Sprintf("%.0f", v))
			default:
				ctx.Locals("user_id", fmt.Sprint(v))
			}
		}
		if sub, err := claims.GetSubject(); err == nil {
			ctx.Locals("username", sub)
		}
		return ctx.Next()
	}
}

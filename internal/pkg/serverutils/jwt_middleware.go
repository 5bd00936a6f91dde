package serverutils

import (
	"os"

	"ai-studyroom-be/internal/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func JwtMiddleware(ctx *fiber.Ctx) error {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Missing token"})
	}
	tokenStr := authHeader[7:]

	userId, err := VerifyToken(tokenStr)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
	}

	ctx.Locals("user_id", userId.String())
	return ctx.Next()
}

// VerifyToken validates a bearer token and returns the user id claim. Used
// by both the HTTP middleware and the websocket handshake, where the token
// arrives as a query parameter.
func VerifyToken(tokenStr string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, apperr.Wrap(apperr.ErrAuthentication, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, apperr.Wrapf(apperr.ErrAuthentication, "invalid claims")
	}

	sub, _ := claims["user_id"].(string)
	userId, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, apperr.Wrapf(apperr.ErrAuthentication, "user_id claim missing or malformed")
	}
	return userId, nil
}

package serverutils

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	LocalUserID    = "user_id"
	LocalUserEmail = "user_email"
)

func parseClaims(tokenStr string) (jwt.MapClaims, bool) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	return claims, ok
}

func bearerToken(ctx *fiber.Ctx) string {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ""
	}
	return authHeader[7:]
}

func storeIdentity(ctx *fiber.Ctx, claims jwt.MapClaims) {
	if id, ok := claims["user_id"].(string); ok {
		ctx.Locals(LocalUserID, id)
	}
	if email, ok := claims["email"].(string); ok {
		ctx.Locals(LocalUserEmail, email)
	}
}

func JwtMiddleware(ctx *fiber.Ctx) error {
	tokenStr := bearerToken(ctx)
	if tokenStr == "" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
	}

	claims, ok := parseClaims(tokenStr)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
	}

	storeIdentity(ctx, claims)
	return ctx.Next()
}

// OptionalJwtMiddleware identifies the user when a valid token is present and lets anonymous visitors through
func OptionalJwtMiddleware(ctx *fiber.Ctx) error {
	if tokenStr := bearerToken(ctx); tokenStr != "" {
		if claims, ok := parseClaims(tokenStr); ok {
			storeIdentity(ctx, claims)
		}
	}
	return ctx.Next()
}

// Identity reads what the JWT middlewares stored; empty strings for anonymous requests
func Identity(ctx *fiber.Ctx) (userID, email string) {
	userID, _ = ctx.Locals(LocalUserID).(string)
	email, _ = ctx.Locals(LocalUserEmail).(string)
	return userID, email
}

// IdentityFromToken validates a raw token, for transports that cannot send headers
func IdentityFromToken(tokenStr string) (userID, email string, ok bool) {
	claims, ok := parseClaims(tokenStr)
	if !ok {
		return "", "", false
	}
	userID, _ = claims["user_id"].(string)
	email, _ = claims["email"].(string)
	return userID, email, true
}

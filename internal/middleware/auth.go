// Package middleware provides authentication, logging, tracing and rate
// limiting middleware for the HTTP server.
package middleware

import (
	"errors"
	"strings"
	"time"

	"skillhive/internal/models"
	"skillhive/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Fiber locals set by Auth.Required.
const (
	LocalUserID = "userID"
	LocalRole   = "role"
)

const (
	tokenIssuer   = "skillhive-api"
	tokenAudience = "skillhive-client"
)

// Claims is the JWT payload issued at signup and login.
type Claims struct {
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Auth issues and verifies HS256 tokens.
type Auth struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewAuth(secret string, ttl time.Duration) *Auth {
	return &Auth{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// IssueToken signs a token whose subject is userID.
func (a *Auth) IssueToken(userID string, role models.Role) (string, error) {
	if len(a.secret) == 0 {
		return "", errors.New("JWT secret not configured")
	}
	now := a.now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Parse validates tokenString and returns its claims.
func (a *Auth) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !token.Valid {
		return nil, models.NewUnauthorizedError("Invalid or expired token")
	}
	if claims.Subject == "" {
		return nil, models.NewUnauthorizedError("Invalid subject claim")
	}
	return claims, nil
}

// Required rejects requests without a valid bearer token. WebSocket upgrades
// may pass the token as ?token= since browsers cannot set headers there.
func (a *Auth) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c.Get(fiber.HeaderAuthorization))
		if tokenString == "" && strings.HasSuffix(c.Path(), "/ws") {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			return models.Respond(c, models.NewUnauthorizedError("Authorization required"))
		}

		claims, err := a.Parse(tokenString)
		if err != nil {
			return models.Respond(c, err)
		}

		c.Locals(LocalUserID, claims.Subject)
		c.Locals(LocalRole, claims.Role)
		c.SetUserContext(observability.WithUserID(c.UserContext(), claims.Subject))
		return c.Next()
	}
}

// AdminRequired rejects non-admin callers with 403. It must run after Required.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if role, _ := c.Locals(LocalRole).(models.Role); role != models.RoleAdmin {
			return models.Respond(c, models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}

// UserID returns the authenticated user id, or "" on public routes.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}

// IsAdmin reports whether the caller's token carries the admin role.
func IsAdmin(c *fiber.Ctx) bool {
	role, _ := c.Locals(LocalRole).(models.Role)
	return role == models.RoleAdmin
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || scheme != "Bearer" {
		return ""
	}
	return strings.TrimSpace(token)
}

package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/goatkit/kbgen/internal/apierrors"
)

const operatorKey = "kb_operator"

// AnonymousOperator is the operator name used when admin auth is disabled.
const AnonymousOperator = "admin"

// AdminAuth checks the HS256 bearer token the host platform issues to its
// admins. The operator name comes from the "username" claim, else "sub".
// An empty secret disables the check.
func AdminAuth(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		if secret == "" {
			c.Set(operatorKey, AnonymousOperator)
			c.Next()
			return
		}

		raw := bearerToken(c)
		if raw == "" {
			apierrors.Error(c, apierrors.CodeUnauthorized)
			c.Abort()
			return
		}

		operator, err := parseOperator(raw, key)
		if err != nil {
			apierrors.Error(c, apierrors.CodeInvalidToken)
			c.Abort()
			return
		}

		c.Set(operatorKey, operator)
		c.Next()
	}
}

// Operator returns the authenticated operator name, or "".
func Operator(c *gin.Context) string {
	return c.GetString(operatorKey)
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func parseOperator(raw string, key []byte) (string, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}

	if name, ok := claims["username"].(string); ok && name != "" {
		return name, nil
	}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		return sub, nil
	}
	return "", errors.New("token names no operator")
}

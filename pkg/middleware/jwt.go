package middleware

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prohmpiriya/tenant-service/pkg/response"
)

var (
	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrInvalidAuthFormat = errors.New("invalid authorization header format")
	ErrInvalidToken      = errors.New("invalid token")
	ErrTokenExpired      = errors.New("token expired")
)

// Context keys for caller information
const (
	ContextKeyUserID   = "user_id"
	ContextKeyEmail    = "email"
	ContextKeyRoles    = "roles"
	ContextKeyTenantID = "tenant_id"
)

// JWTConfig holds configuration for JWT middleware
type JWTConfig struct {
	// Secret key for validating JWT tokens
	Secret string
	// SkipPaths is a list of paths that should skip JWT validation
	SkipPaths []string
	// Optional lets requests without an Authorization header through anonymously.
	// A header that is present must still carry a valid token.
	Optional bool
}

// JWTMiddleware creates a new JWT validation middleware
func JWTMiddleware(config *JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, path := range config.SkipPaths {
			if c.Request.URL.Path == path {
				c.Next()
				return
			}
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			if config.Optional {
				c.Next()
				return
			}
			response.Abort(c, response.Error(response.ErrCodeMissingToken, "Authorization header is required"))
			return
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			response.Abort(c, response.Error(response.ErrCodeInvalidToken, "Invalid authorization header format"))
			return
		}
		tokenString := strings.TrimSpace(authHeader[len(bearerPrefix):])

		if tokenString == "" {
			response.Abort(c, response.Error(response.ErrCodeInvalidToken, "Token is empty"))
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return []byte(config.Secret), nil
		})

		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				response.Abort(c, response.Error(response.ErrCodeTokenExpired, "Access token has expired"))
				return
			}
			response.Abort(c, response.Error(response.ErrCodeInvalidToken, "Invalid access token"))
			return
		}

		if !token.Valid {
			response.Abort(c, response.Error(response.ErrCodeInvalidToken, "Invalid access token"))
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.Abort(c, response.Error(response.ErrCodeInvalidToken, "Invalid token claims"))
			return
		}

		userID := stringClaim(claims, "user_id")
		if userID == "" {
			userID = stringClaim(claims, "sub")
		}
		if userID == "" {
			response.Abort(c, response.Error(response.ErrCodeInvalidToken, "Missing subject in token"))
			return
		}

		c.Set(ContextKeyUserID, userID)
		c.Set(ContextKeyEmail, stringClaim(claims, "email"))
		c.Set(ContextKeyRoles, RolesFromClaims(claims))
		if tenantID, ok := TenantIDFromClaims(claims); ok {
			c.Set(ContextKeyTenantID, tenantID)
		}

		c.Next()
	}
}

// RolesFromClaims collects roles from a "role" string, a "roles" array
// and the Keycloak "realm_access.roles" array.
func RolesFromClaims(claims jwt.MapClaims) []string {
	var roles []string
	if role := stringClaim(claims, "role"); role != "" {
		roles = append(roles, role)
	}
	roles = append(roles, stringSlice(claims["roles"])...)
	if realm, ok := claims["realm_access"].(map[string]interface{}); ok {
		roles = append(roles, stringSlice(realm["roles"])...)
	}
	return roles
}

// TenantIDFromClaims reads the tenant claim ("tenantId", falling back to "tenant_id").
// Numeric and string encodings are both accepted.
func TenantIDFromClaims(claims map[string]interface{}) (int64, bool) {
	for _, key := range []string{"tenantId", "tenant_id"} {
		switch v := claims[key].(type) {
		case float64:
			return int64(v), true
		case int64:
			return v, true
		case int:
			return int64(v), true
		case string:
			if id, err := strconv.ParseInt(v, 10, 64); err == nil {
				return id, true
			}
		}
	}
	return 0, false
}

func stringClaim(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}

func stringSlice(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// GetUserID extracts user ID from gin context
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(ContextKeyUserID)
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok
}

// GetEmail extracts email from gin context
func GetEmail(c *gin.Context) (string, bool) {
	email, exists := c.Get(ContextKeyEmail)
	if !exists {
		return "", false
	}
	e, ok := email.(string)
	return e, ok
}

// GetRoles extracts roles from gin context
func GetRoles(c *gin.Context) ([]string, bool) {
	roles, exists := c.Get(ContextKeyRoles)
	if !exists {
		return nil, false
	}
	r, ok := roles.([]string)
	return r, ok
}

// GetTenantID extracts the caller's bound tenant ID from gin context
func GetTenantID(c *gin.Context) (int64, bool) {
	tenantID, exists := c.Get(ContextKeyTenantID)
	if !exists {
		return 0, false
	}
	t, ok := tenantID.(int64)
	return t, ok
}

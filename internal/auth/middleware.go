package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID    = "user_id"
	ctxUserEmail = "user_email"
	ctxUserRole  = "user_role"
)

func AuthMiddleware(accessTokenSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(strings.TrimSpace(parts[0]), "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token is empty"})
			return
		}

		claims, err := ValidateToken(tokenString, accessTokenSecret)
		if err != nil {
			msg := "invalid or malformed token"
			if errors.Is(err, ErrTokenExpired) {
				msg = "token expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		if claims.TokenType != tokenTypeAccess {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "access token required"})
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUserEmail, claims.Email)
		c.Set(ctxUserRole, claims.Role)

		c.Next()
	}
}

// RequireRole lets the request through when the caller holds any of the given roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ctxUserRole)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user role not found"})
			return
		}

		roleStr, ok := role.(string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid role type"})
			return
		}

		for _, r := range roles {
			if roleStr == r {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
	}
}

func GetUserID(c *gin.Context) (int, bool) {
	userID, exists := c.Get(ctxUserID)
	if !exists {
		return 0, false
	}

	id, ok := userID.(int)
	return id, ok
}

// CurrentPrincipal returns the authenticated caller; handlers respond 401 when ok is false.
func CurrentPrincipal(c *gin.Context) (Principal, bool) {
	id, ok := GetUserID(c)
	if !ok {
		return Principal{}, false
	}
	role, _ := c.Get(ctxUserRole)
	roleStr, _ := role.(string)
	return Principal{UserID: id, Role: roleStr}, true
}

// MustPrincipal resolves the caller or writes a 401 response.
func MustPrincipal(c *gin.Context) (Principal, bool) {
	p, ok := CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
	}
	return p, ok
}

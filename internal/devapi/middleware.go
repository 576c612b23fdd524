package devapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const bearerPrefix = "Bearer "

var (
	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrInvalidAuthFormat = errors.New("invalid authorization header format")
	ErrEmptyToken        = errors.New("empty token")
)

// sessionUser returns the authenticated user attached by the auth middleware
func sessionUser(c *gin.Context) (*User, bool) {
	value, exists := c.Get("user")
	if !exists {
		return nil, false
	}
	user, ok := value.(*User)
	return user, ok
}

func extractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", ErrInvalidAuthFormat
	}
	token := strings.TrimPrefix(authHeader, bearerPrefix)
	if token == "" {
		return "", ErrEmptyToken
	}
	return token, nil
}

// fail writes the API's error shape and aborts the request
func fail(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"message": message})
	c.Abort()
}

// authMiddleware validates the bearer token and loads the account
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			fail(c, http.StatusUnauthorized, "Authentication required")
			return
		}

		claims, err := s.issuer.Validate(token)
		if err != nil {
			fail(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		var user User
		if err := s.db.Where("id = ?", claims.UserID).First(&user).Error; err != nil {
			fail(c, http.StatusUnauthorized, "User not found")
			return
		}

		if user.Status == StatusSuspended {
			fail(c, http.StatusForbidden, "Account suspended")
			return
		}

		c.Set("user", &user)
		c.Next()
	}
}

// requireAdmin ensures the authenticated user is an admin
func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := sessionUser(c)
		if !exists {
			fail(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		if user.Role != RoleAdmin {
			fail(c, http.StatusForbidden, "Admin access required")
			return
		}
		c.Next()
	}
}

// internal/middleware/helpers.go
package middleware

import "github.com/gin-gonic/gin"

// MustGetUserID gets the acting rep's ID from context or panics
func MustGetUserID(c *gin.Context) int64 {
	userID, exists := GetUserID(c)
	if !exists {
		panic("user_id not found in context")
	}
	return userID
}

// MustGetOrgID gets the organization ID from context or panics
func MustGetOrgID(c *gin.Context) int64 {
	orgID, exists := GetOrgID(c)
	if !exists {
		panic("org_id not found in context")
	}
	return orgID
}

// GetUserID gets the acting rep's ID from context
func GetUserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// GetOrgID gets the organization ID from context
func GetOrgID(c *gin.Context) (int64, bool) {
	v, exists := c.Get("org_id")
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// IsAuthenticated checks if request is authenticated
func IsAuthenticated(c *gin.Context) bool {
	_, exists := c.Get("user_id")
	return exists
}

package middleware

import (
	"github.com/YairAcuna3/kaufbuch-sub001/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuditMiddleware persists one audit row per mutating request of a
// logged-in user. Reads are not recorded.
func AuditMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method == "GET" {
			return
		}

		var userID *uint
		if v, ok := c.Get("currentUser"); ok {
			if user, ok := v.(*models.User); ok && user != nil {
				userID = &user.ID
			}
		}
		if userID == nil {
			return
		}

		entry := models.AuditLog{
			UserID:    userID,
			Path:      c.Request.URL.Path,
			Method:    c.Request.Method,
			Action:    c.FullPath(),
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
		// best effort, an audit failure must not fail the request
		_ = db.Create(&entry).Error
	}
}

package api

import (
	"net/http"

	"travel_risk/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HealthHandler reports whether the database and the cache answer
func HealthHandler(db *gorm.DB, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
			return
		}
		resp := gin.H{"status": "ok", "database": "ok", "cache": "disabled"}
		if cache.Enabled() {
			resp["cache"] = "ok"
			if err := cache.Ping(ctx); err != nil {
				resp["cache"] = err.Error() // Cache is optional, report but stay healthy
			}
		}
		c.JSON(http.StatusOK, resp)
	}
}

package api

import (
	"math"     // Page bound
	"net/http" // HTTP status codes
	"strconv"  // String conversion

	"travel_risk/internal/domain" // Importing domain models
	"travel_risk/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

const (
	usersCachePrefix = "users:"
	maxPage          = math.MaxInt32 / 100 // page * max page_size stays within int32
)

// UserPage is one page of the user listing
type UserPage struct {
	Users      []domain.User `json:"users"`       // List of users
	Page       int           `json:"page"`        // Current page
	PageSize   int           `json:"page_size"`   // Page size
	Total      int64         `json:"total"`       // Total number of users
	TotalPages int           `json:"total_pages"` // Total pages
	Cached     bool          `json:"cached"`      // Served from cache
}

// ListUsersHandler returns users page by page, for HR and admin
func ListUsersHandler(db *gorm.DB, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		page, pageSize := pagination(c) // Read pagination parameters
		// Create a cache key based on pagination parameters
		cacheKey := usersCachePrefix + "page=" + strconv.Itoa(page) + ":size=" + strconv.Itoa(pageSize)
		var cached UserPage
		// If cached data found, return it
		if cache.Get(ctx, cacheKey, &cached) {
			cached.Cached = true
			c.JSON(http.StatusOK, cached)
			return
		}
		var total int64 // Total user count
		if err := db.WithContext(ctx).Model(&domain.User{}).Count(&total).Error; err != nil {
			writeError(c, err)
			return
		}
		users := []domain.User{} // Slice to hold users
		offset := (page - 1) * pageSize
		if err := db.WithContext(ctx).Order("username").Offset(offset).Limit(pageSize).Find(&users).Error; err != nil {
			writeError(c, err)
			return
		}
		resp := UserPage{
			Users:      users,
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: (int(total) + pageSize - 1) / pageSize, // Calculate total pages
		}
		cache.Set(ctx, cacheKey, resp) // Cache the response for future requests
		c.JSON(http.StatusOK, resp)
	}
}

// pagination reads page and page_size, defaulting to 1 and 20, page_size capped at 100
func pagination(c *gin.Context) (int, int) {
	page := 1      // Default page
	pageSize := 20 // Default page size
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = min(v, maxPage) // Set page if valid, bounded so the offset cannot overflow
		}
	}
	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v // Set page size if valid
		}
	}
	return page, pageSize
}

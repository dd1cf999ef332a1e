package api

import (
	"context"  // Cache invalidation
	"errors"   // Error inspection
	"fmt"      // Error wrapping
	"net/http" // HTTP status codes
	"time"     // Token lifetimes

	"travel_risk/internal/apperr"     // Error taxonomy
	"travel_risk/internal/domain"     // Importing domain models
	"travel_risk/internal/middleware" // Current user helpers
	"travel_risk/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
	"gorm.io/gorm"               // GORM ORM library
)

// TokenSettings configures token issuance
type TokenSettings struct {
	Secret     string        // HMAC secret
	AccessTTL  time.Duration // Access token lifetime
	RefreshTTL time.Duration // Refresh token lifetime
}

// RegisterRequest is the registration payload
type RegisterRequest struct {
	Username    string       `json:"username" validate:"required,max=150"`
	Email       string       `json:"email" validate:"required,email,max=254"`
	Password    string       `json:"password" validate:"required,min=8"`
	Role        string       `json:"role" validate:"omitempty,oneof=traveler hr_manager admin"`
	DateOfBirth *domain.Date `json:"date_of_birth"`
	Gender      *string      `json:"gender" validate:"omitempty,max=20"`
	Nationality *string      `json:"nationality" validate:"omitempty,max=120"`
	Department  *string      `json:"department" validate:"omitempty,max=120"`
	JobTitle    *string      `json:"job_title" validate:"omitempty,max=120"`
	EmployeeID  *string      `json:"employee_id" validate:"omitempty,max=50"`
	Timezone    *string      `json:"timezone" validate:"omitempty,max=50"`
}

// LoginRequest is the login payload
type LoginRequest struct {
	Username string `json:"username" validate:"required"` // Username must be provided
	Password string `json:"password" validate:"required"` // Password must be provided
}

// LoginResponse is returned on successful login
type LoginResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Email    string `json:"email"`
	Access   string `json:"access"`
	Refresh  string `json:"refresh"`
}

// RefreshRequest exchanges a refresh token for a new access token
type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// RegisterHandler creates a user
func RegisterHandler(db *gorm.DB, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Decode and validate request
		if _, err := readJSON(c, &req); err != nil {
			writeError(c, err)
			return
		}
		ctx := c.Request.Context()
		// Check uniqueness of username, email and employee id
		if err := checkUnique(ctx, db, &req); err != nil {
			writeError(c, err)
			return
		}
		// Hash the password and create the user
		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			writeError(c, err)
			return
		}
		user := domain.User{
			Username:    req.Username,
			Email:       req.Email,
			Password:    hash,
			Role:        req.Role,
			DateOfBirth: req.DateOfBirth,
			Gender:      req.Gender,
			Nationality: req.Nationality,
			Department:  req.Department,
			JobTitle:    req.JobTitle,
			EmployeeID:  req.EmployeeID,
			Timezone:    "UTC",
		}
		if user.Role == "" {
			user.Role = domain.RoleTraveler // Default role
		}
		if req.Timezone != nil && *req.Timezone != "" {
			user.Timezone = *req.Timezone
		}
		// Attempt to create the user in the database
		if err := db.WithContext(ctx).Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Lost a race with a concurrent registration, report the field that collided
				if uerr := checkUnique(ctx, db, &req); uerr != nil {
					writeError(c, uerr)
					return
				}
				writeError(c, apperr.Validation("non_field_errors", "A user with these details already exists."))
				return
			}
			writeError(c, err)
			return
		}
		cache.DeletePrefix(ctx, usersCachePrefix) // User listing changed
		logrus.WithFields(logrus.Fields{
			"user_id":  user.ID,       // New user ID
			"username": user.Username, // Username
			"role":     user.Role,     // Role
		}).Info("User registered")
		// Return success response
		c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user_id": user.ID})
	}
}

// uniqueField is a user column that must not repeat
type uniqueField struct {
	column string
	value  any
	msg    string
}

// checkUnique reports every unique field already taken as a *apperr.ValidationError.
// Lookup failures are returned as is.
func checkUnique(ctx context.Context, db *gorm.DB, req *RegisterRequest) error {
	fields := []uniqueField{
		{"username", req.Username, "A user with that username already exists."},
		{"email", req.Email, "A user with that email already exists."},
	}
	if req.EmployeeID != nil && *req.EmployeeID != "" {
		fields = append(fields, uniqueField{"employee_id", *req.EmployeeID, "A user with that employee id already exists."})
	}
	verr := &apperr.ValidationError{}
	for _, f := range fields {
		var n int64
		if err := db.WithContext(ctx).Model(&domain.User{}).Where(f.column+" = ?", f.value).Count(&n).Error; err != nil {
			return fmt.Errorf("check %s: %w", f.column, err)
		}
		if n > 0 {
			verr.Add(f.column, f.msg)
		}
	}
	if verr.Empty() {
		return nil
	}
	return verr
}

// LoginHandler authenticates a user and returns an access and refresh token
func LoginHandler(db *gorm.DB, tokens TokenSettings) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Decode and validate request
		if _, err := readJSON(c, &req); err != nil {
			writeError(c, err)
			return
		}
		var user domain.User // Fetch user from database
		if err := db.WithContext(c.Request.Context()).Where("username = ?", req.Username).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				writeError(c, apperr.Unauthenticated("Invalid credentials"))
				return
			}
			writeError(c, err)
			return
		}
		// Compare provided password with stored hash
		if !utils.CheckPassword(user.Password, req.Password) {
			logrus.WithField("username", req.Username).Warn("Login failed")
			writeError(c, apperr.Unauthenticated("Invalid credentials"))
			return
		}
		pair, err := utils.GenerateTokenPair(user.ID, user.Role, tokens.Secret, tokens.AccessTTL, tokens.RefreshTTL)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, LoginResponse{
			UserID:   user.ID,
			Username: user.Username,
			Role:     user.Role,
			Email:    user.Email,
			Access:   pair.Access,
			Refresh:  pair.Refresh,
		})
	}
}

// RefreshHandler issues a new access token for a valid refresh token
func RefreshHandler(db *gorm.DB, tokens TokenSettings) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RefreshRequest
		if _, err := readJSON(c, &req); err != nil {
			writeError(c, err)
			return
		}
		claims, err := utils.ParseJWT(req.Refresh, tokens.Secret, utils.TokenRefresh)
		if err != nil {
			writeError(c, apperr.Unauthenticated("Token is invalid or expired"))
			return
		}
		var user domain.User // The user may have been removed since the token was issued
		if err := db.WithContext(c.Request.Context()).First(&user, "id = ?", claims.UserID).Error; err != nil {
			writeError(c, apperr.Unauthenticated("User not found"))
			return
		}
		access, err := utils.GenerateJWT(user.ID, user.Role, utils.TokenAccess, tokens.Secret, tokens.AccessTTL)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"access": access})
	}
}

// MeHandler returns the authenticated user
func MeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			writeError(c, apperr.Unauthenticated("Authentication credentials were not provided."))
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

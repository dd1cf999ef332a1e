package api

import (
	"context"  // Cache invalidation
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"time"     // Log timestamps

	"travel_risk/internal/access"     // Role matrix
	"travel_risk/internal/apperr"     // Error taxonomy
	"travel_risk/internal/domain"     // Domain models
	"travel_risk/internal/middleware" // Principal helpers
	"travel_risk/internal/utils"      // Cache

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
	"gorm.io/gorm"               // GORM ORM library
)

// TravelerInput is the writable part of a traveler profile
type TravelerInput struct {
	User                   *string      `json:"user"` // Owning user, HR and admin only, create only
	PassportNumber         *string      `json:"passport_number" validate:"omitempty,max=50"`
	PassportIssuingCountry *string      `json:"passport_issuing_country" validate:"omitempty,max=100"`
	PassportExpiryDate     *domain.Date `json:"passport_expiry_date"`
	HealthConditions       *string      `json:"health_conditions"`
	FrequentTraveler       *bool        `json:"frequent_traveler"`
}

// apply copies fields onto tr; with partial set only keys present in b are copied
func (in *TravelerInput) apply(tr *domain.Traveler, b body, partial bool) {
	set := func(key string) bool { return !partial || b.has(key) }
	if set("passport_number") {
		tr.PassportNumber = in.PassportNumber
	}
	if set("passport_issuing_country") {
		tr.PassportIssuingCountry = in.PassportIssuingCountry
	}
	if set("passport_expiry_date") {
		tr.PassportExpiryDate = in.PassportExpiryDate
	}
	if set("health_conditions") {
		tr.HealthConditions = in.HealthConditions
	}
	if set("frequent_traveler") {
		tr.FrequentTraveler = in.FrequentTraveler != nil && *in.FrequentTraveler
	}
}

func travelerColumns(tr *domain.Traveler) map[string]any {
	return map[string]any{
		"passport_number":          tr.PassportNumber,
		"passport_issuing_country": tr.PassportIssuingCountry,
		"passport_expiry_date":     tr.PassportExpiryDate,
		"health_conditions":        tr.HealthConditions,
		"frequent_traveler":        tr.FrequentTraveler,
	}
}

// Cache keys of role-scoped traveler lists
func travelersAllKey() string { return "travelers:all" }
func travelersUserKey(userID string) string { return "travelers:user:" + userID }

func travelersListKey(p access.Principal) string {
	if access.CanManageAll(p.Role) {
		return travelersAllKey()
	}
	return travelersUserKey(p.UserID)
}

func invalidateTravelers(ctx context.Context, cache *utils.Cache, ownerIDs ...string) {
	keys := []string{travelersAllKey()}
	for _, id := range ownerIDs {
		keys = append(keys, travelersUserKey(id))
	}
	cache.Delete(ctx, keys...)
}

// loadTraveler fetches a traveler visible to p
func loadTraveler(c *gin.Context, db *gorm.DB, p access.Principal) (*domain.Traveler, error) {
	id, err := parseID(c)
	if err != nil {
		return nil, err
	}
	var tr domain.Traveler
	q := access.ScopeTravelers(db.WithContext(c.Request.Context()).Model(&domain.Traveler{}), p)
	if err := q.First(&tr, "travelers.id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Not found.")
		}
		return nil, err
	}
	return &tr, nil
}

// ListTravelersHandler returns the traveler profiles the caller may see
func ListTravelersHandler(db *gorm.DB, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, _ := middleware.CurrentPrincipal(c)
		ctx := c.Request.Context()
		cacheKey := travelersListKey(p)
		travelers := []domain.Traveler{}
		// Try the cache first
		if cache.Get(ctx, cacheKey, &travelers) {
			c.JSON(http.StatusOK, travelers)
			return
		}
		q := access.ScopeTravelers(db.WithContext(ctx).Model(&domain.Traveler{}), p)
		if err := q.Order("travelers.id").Find(&travelers).Error; err != nil {
			writeError(c, err)
			return
		}
		cache.Set(ctx, cacheKey, travelers)
		c.JSON(http.StatusOK, travelers)
	}
}

// GetTravelerHandler returns one traveler profile
func GetTravelerHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, _ := middleware.CurrentPrincipal(c)
		tr, err := loadTraveler(c, db, p)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, tr)
	}
}

// CreateTravelerHandler creates a profile. Travelers create their own; HR and admin name the user.
func CreateTravelerHandler(db *gorm.DB, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, _ := middleware.CurrentPrincipal(c)
		ctx := c.Request.Context()
		var in TravelerInput
		b, err := readJSON(c, &in)
		if err != nil {
			writeError(c, err)
			return
		}
		if b.isNull("frequent_traveler") {
			writeError(c, apperr.Validation("frequent_traveler", "This field may not be null."))
			return
		}
		ownerID := p.UserID // Travelers always own the profile they create
		if access.CanManageAll(p.Role) {
			if in.User == nil || *in.User == "" {
				writeError(c, apperr.Validation("user", "This field is required."))
				return
			}
			var owner domain.User
			if err := db.WithContext(ctx).First(&owner, "id = ?", *in.User).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					writeError(c, apperr.Validation("user", "User does not exist."))
					return
				}
				writeError(c, err)
				return
			}
			ownerID = owner.ID
		}
		// One profile per user
		var n int64
		if err := db.WithContext(ctx).Model(&domain.Traveler{}).Where("user_id = ?", ownerID).Count(&n).Error; err != nil {
			writeError(c, err)
			return
		}
		if n > 0 {
			writeError(c, apperr.Validation("user", "Traveler profile already exists for this user."))
			return
		}
		tr := domain.Traveler{UserID: ownerID}
		in.apply(&tr, b, false)
		if err := db.WithContext(ctx).Create(&tr).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				writeError(c, apperr.Validation("user", "Traveler profile already exists for this user."))
				return
			}
			writeError(c, err)
			return
		}
		invalidateTravelers(ctx, cache, ownerID)
		// Log traveler creation
		logrus.WithFields(logrus.Fields{
			"actor_id":    p.UserID,                        // Acting user
			"user_id":     ownerID,                         // Profile owner
			"traveler_id": tr.ID,                           // New profile ID
			"timestamp":   time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Traveler created")
		c.JSON(http.StatusCreated, tr)
	}
}

// UpdateTravelerHandler serves PUT (partial=false) and PATCH (partial=true)
func UpdateTravelerHandler(db *gorm.DB, cache *utils.Cache, partial bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, _ := middleware.CurrentPrincipal(c)
		ctx := c.Request.Context()
		tr, err := loadTraveler(c, db, p)
		if err != nil {
			writeError(c, err)
			return
		}
		var in TravelerInput
		b, err := readJSON(c, &in)
		if err != nil {
			writeError(c, err)
			return
		}
		if b.isNull("frequent_traveler") {
			writeError(c, apperr.Validation("frequent_traveler", "This field may not be null."))
			return
		}
		in.apply(tr, b, partial)
		if err := db.WithContext(ctx).Model(tr).Updates(travelerColumns(tr)).Error; err != nil {
			writeError(c, err)
			return
		}
		invalidateTravelers(ctx, cache, tr.UserID)
		logrus.WithFields(logrus.Fields{
			"actor_id":    p.UserID, // Acting user
			"traveler_id": tr.ID,    // Updated profile
			"partial":     partial,  // PATCH or PUT
		}).Info("Traveler updated")
		c.JSON(http.StatusOK, tr)
	}
}

// DeleteTravelerHandler removes a profile together with its trips
func DeleteTravelerHandler(db *gorm.DB, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, _ := middleware.CurrentPrincipal(c)
		ctx := c.Request.Context()
		tr, err := loadTraveler(c, db, p)
		if err != nil {
			writeError(c, err)
			return
		}
		var removedTrips int64
		err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			res := tx.Where("traveler_id = ?", tr.ID).Delete(&domain.Trip{})
			if res.Error != nil {
				return res.Error // Return error to rollback
			}
			removedTrips = res.RowsAffected
			return tx.Delete(&domain.Traveler{}, tr.ID).Error
		})
		if err != nil {
			writeError(c, err)
			return
		}
		invalidateTravelers(ctx, cache, tr.UserID)
		invalidateTrips(ctx, cache, tr.UserID)
		logrus.WithFields(logrus.Fields{
			"actor_id":      p.UserID,     // Acting user
			"traveler_id":   tr.ID,        // Deleted profile
			"removed_trips": removedTrips, // Cascaded trips
		}).Info("Traveler deleted")
		c.Status(http.StatusNoContent)
	}
}

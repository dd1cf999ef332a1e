package api

import (
	"context"  // Cache invalidation
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strings"  // Blank checks
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

// TripInput is the writable part of a trip
type TripInput struct {
	Traveler           *uint        `json:"traveler"`
	DestinationCountry *string      `json:"destination_country" validate:"omitempty,max=100"`
	DestinationCity    *string      `json:"destination_city" validate:"omitempty,max=100"`
	StartDate          *domain.Date `json:"start_date"`
	EndDate            *domain.Date `json:"end_date"`
	Purpose            *string      `json:"purpose" validate:"omitempty,max=255"`
	Accommodation      *string      `json:"accommodation" validate:"omitempty,max=255"`
	TransportMode      *string      `json:"transport_mode" validate:"omitempty,max=100"`
}

// checkRequired validates the non-nullable fields. On a full write they must
// all be present; on a partial write only the ones sent are checked.
func (in *TripInput) checkRequired(b body, partial bool) *apperr.ValidationError {
	verr := &apperr.ValidationError{}
	text := func(key string, v *string) {
		switch {
		case !b.has(key):
			if !partial {
				verr.Add(key, "This field is required.")
			}
		case v == nil:
			verr.Add(key, "This field may not be null.")
		case strings.TrimSpace(*v) == "":
			verr.Add(key, "This field may not be blank.")
		}
	}
	date := func(key string, v *domain.Date) {
		switch {
		case !b.has(key):
			if !partial {
				verr.Add(key, "This field is required.")
			}
		case v == nil:
			verr.Add(key, "This field may not be null.")
		}
	}
	text("destination_country", in.DestinationCountry)
	date("start_date", in.StartDate)
	date("end_date", in.EndDate)
	text("purpose", in.Purpose)
	return verr
}

// apply copies fields onto trip; with partial set only keys present in b are copied
func (in *TripInput) apply(trip *domain.Trip, b body, partial bool) {
	set := func(key string) bool { return !partial || b.has(key) }
	if set("destination_country") && in.DestinationCountry != nil {
		trip.DestinationCountry = *in.DestinationCountry
	}
	if set("destination_city") {
		trip.DestinationCity = in.DestinationCity
	}
	if set("start_date") && in.StartDate != nil {
		trip.StartDate = *in.StartDate
	}
	if set("end_date") && in.EndDate != nil {
		trip.EndDate = *in.EndDate
	}
	if set("purpose") && in.Purpose != nil {
		trip.Purpose = *in.Purpose
	}
	if set("accommodation") {
		trip.Accommodation = in.Accommodation
	}
	if set("transport_mode") {
		trip.TransportMode = in.TransportMode
	}
}

// checkDates rejects a trip ending before it starts
func checkDates(trip *domain.Trip) error {
	if trip.EndDate.Before(trip.StartDate.Time) {
		return apperr.Validation("end_date", "End date must not be before start date.")
	}
	return nil
}

func tripColumns(trip *domain.Trip) map[string]any {
	return map[string]any{
		"traveler_id":         trip.TravelerID,
		"destination_country": trip.DestinationCountry,
		"destination_city":    trip.DestinationCity,
		"start_date":          trip.StartDate,
		"end_date":            trip.EndDate,
		"purpose":             trip.Purpose,
		"accommodation":       trip.Accommodation,
		"transport_mode":      trip.TransportMode,
	}
}

// Cache keys of role-scoped trip lists
func tripsAllKey() string { return "trips:all" }

func tripsUserKey(userID string) string { return "trips:user:" + userID }

func tripsListKey(p access.Principal) string {
	if access.CanManageAll(p.Role) {
		return tripsAllKey()
	}
	return tripsUserKey(p.UserID)
}

func invalidateTrips(ctx context.Context, cache *utils.Cache, ownerIDs ...string) {
	keys := []string{tripsAllKey()}
	for _, id := range ownerIDs {
		keys = append(keys, tripsUserKey(id))
	}
	cache.Delete(ctx, keys...)
}

// loadTrip fetches a trip visible to p, with its traveler
func loadTrip(c *gin.Context, db *gorm.DB, p access.Principal) (*domain.Trip, error) {
	id, err := parseID(c)
	if err != nil {
		return nil, err
	}
	var trip domain.Trip
	q := access.ScopeTrips(db.WithContext(c.Request.Context()).Model(&domain.Trip{}), p)
	if err := q.Preload("Traveler").First(&trip, "trips.id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Not found.")
		}
		return nil, err
	}
	return &trip, nil
}

// resolveTraveler finds the traveler named by id for an HR or admin caller
func resolveTraveler(ctx context.Context, db *gorm.DB, id uint) (*domain.Traveler, error) {
	var tr domain.Traveler
	if err := db.WithContext(ctx).First(&tr, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Traveler not found.")
		}
		return nil, err
	}
	return &tr, nil
}

// ListTripsHandler returns the trips the caller may see
func ListTripsHandler(db *gorm.DB, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, _ := middleware.CurrentPrincipal(c)
		ctx := c.Request.Context()
		cacheKey := tripsListKey(p)
		trips := []domain.Trip{}
		// Try the cache first
		if cache.Get(ctx, cacheKey, &trips) {
			c.JSON(http.StatusOK, trips)
			return
		}
		q := access.ScopeTrips(db.WithContext(ctx).Model(&domain.Trip{}), p)
		if err := q.Order("trips.id").Find(&trips).Error; err != nil {
			writeError(c, err)
			return
		}
		cache.Set(ctx, cacheKey, trips)
		c.JSON(http.StatusOK, trips)
	}
}

// GetTripHandler returns one trip
func GetTripHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, _ := middleware.CurrentPrincipal(c)
		trip, err := loadTrip(c, db, p)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, trip)
	}
}

// CreateTripHandler creates a trip. Travelers always book for their own profile;
// HR and admin must name the traveler.
func CreateTripHandler(db *gorm.DB, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, _ := middleware.CurrentPrincipal(c)
		ctx := c.Request.Context()
		var in TripInput
		b, err := readJSON(c, &in)
		if err != nil {
			writeError(c, err)
			return
		}
		var traveler *domain.Traveler
		if access.CanManageAll(p.Role) {
			if in.Traveler == nil {
				writeError(c, apperr.Validation("traveler", "This field is required."))
				return
			}
			if traveler, err = resolveTraveler(ctx, db, *in.Traveler); err != nil {
				writeError(c, err)
				return
			}
		} else {
			// Bind to the caller's own profile whatever the body says
			if traveler, err = access.OwnTraveler(db.WithContext(ctx), p); err != nil {
				writeError(c, err)
				return
			}
			if traveler == nil {
				writeError(c, apperr.Validation("traveler", "No traveler profile exists for the current user."))
				return
			}
		}
		if verr := in.checkRequired(b, false); !verr.Empty() {
			writeError(c, verr)
			return
		}
		trip := domain.Trip{TravelerID: traveler.ID}
		in.apply(&trip, b, false)
		if err := checkDates(&trip); err != nil {
			writeError(c, err)
			return
		}
		if err := db.WithContext(ctx).Create(&trip).Error; err != nil {
			writeError(c, err)
			return
		}
		invalidateTrips(ctx, cache, traveler.UserID)
		// Log trip creation
		logrus.WithFields(logrus.Fields{
			"actor_id":    p.UserID,                        // Acting user
			"traveler_id": traveler.ID,                     // Owning profile
			"trip_id":     trip.ID,                         // New trip
			"destination": trip.DestinationCountry,         // Destination
			"timestamp":   time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Trip created")
		c.JSON(http.StatusCreated, trip)
	}
}

// UpdateTripHandler serves PUT (partial=false) and PATCH (partial=true)
func UpdateTripHandler(db *gorm.DB, cache *utils.Cache, partial bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, _ := middleware.CurrentPrincipal(c)
		ctx := c.Request.Context()
		trip, err := loadTrip(c, db, p)
		if err != nil {
			writeError(c, err)
			return
		}
		var in TripInput
		b, err := readJSON(c, &in)
		if err != nil {
			writeError(c, err)
			return
		}
		if verr := in.checkRequired(b, partial); !verr.Empty() {
			writeError(c, verr)
			return
		}
		owners := []string{trip.Traveler.UserID}
		// Only HR and admin may move a trip to another traveler
		if b.has("traveler") && access.CanManageAll(p.Role) {
			if in.Traveler == nil {
				writeError(c, apperr.Validation("traveler", "This field may not be null."))
				return
			}
			if *in.Traveler != trip.TravelerID {
				target, err := resolveTraveler(ctx, db, *in.Traveler)
				if err != nil {
					writeError(c, err)
					return
				}
				trip.TravelerID = target.ID
				trip.Traveler = target
				owners = append(owners, target.UserID)
			}
		}
		in.apply(trip, b, partial)
		if err := checkDates(trip); err != nil {
			writeError(c, err)
			return
		}
		if err := db.WithContext(ctx).Model(trip).Updates(tripColumns(trip)).Error; err != nil {
			writeError(c, err)
			return
		}
		invalidateTrips(ctx, cache, owners...)
		logrus.WithFields(logrus.Fields{
			"actor_id": p.UserID, // Acting user
			"trip_id":  trip.ID,  // Updated trip
			"partial":  partial,  // PATCH or PUT
		}).Info("Trip updated")
		c.JSON(http.StatusOK, trip)
	}
}

// DeleteTripHandler removes a trip
func DeleteTripHandler(db *gorm.DB, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, _ := middleware.CurrentPrincipal(c)
		ctx := c.Request.Context()
		trip, err := loadTrip(c, db, p)
		if err != nil {
			writeError(c, err)
			return
		}
		if err := db.WithContext(ctx).Delete(&domain.Trip{}, trip.ID).Error; err != nil {
			writeError(c, err)
			return
		}
		invalidateTrips(ctx, cache, trip.Traveler.UserID)
		logrus.WithFields(logrus.Fields{
			"actor_id": p.UserID, // Acting user
			"trip_id":  trip.ID,  // Deleted trip
		}).Info("Trip deleted")
		c.Status(http.StatusNoContent)
	}
}

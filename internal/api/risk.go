package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes

	"travel_risk/internal/access"     // Role matrix
	"travel_risk/internal/apperr"     // Error taxonomy
	"travel_risk/internal/domain"     // Domain models
	"travel_risk/internal/middleware" // Principal helpers
	"travel_risk/internal/risk"       // Risk provider

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
	"gorm.io/gorm"               // GORM ORM library
)

// AnalyzeRiskHandler forwards a trip and its traveler to the risk provider.
// Travelers asking about someone else's trip get 403, not 404.
func AnalyzeRiskHandler(db *gorm.DB, provider risk.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, _ := middleware.CurrentPrincipal(c)
		ctx := c.Request.Context()
		id, err := parseID(c)
		if err != nil {
			writeError(c, err)
			return
		}
		var trip domain.Trip // Resolve trip with traveler and user
		if err := db.WithContext(ctx).Preload("Traveler.User").First(&trip, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				writeError(c, apperr.NotFound("Not found."))
				return
			}
			writeError(c, err)
			return
		}
		if trip.Traveler == nil {
			writeError(c, apperr.NotFound("Traveler not found."))
			return
		}
		if err := access.AuthorizeTrip(p, &trip); err != nil {
			logrus.WithFields(logrus.Fields{
				"actor_id": p.UserID, // Acting user
				"trip_id":  trip.ID,  // Requested trip
			}).Warn("Risk analysis denied")
			writeError(c, err)
			return
		}
		req := risk.BuildRequest(&trip, trip.Traveler, trip.Traveler.User)
		report, err := provider.Assess(ctx, req)
		if err != nil {
			writeError(c, apperr.Upstream(err))
			return
		}
		report.TripID = trip.ID
		logrus.WithFields(logrus.Fields{
			"actor_id":   p.UserID,                // Acting user
			"trip_id":    trip.ID,                 // Analysed trip
			"risk_level": report.RiskLevel,        // Outcome
			"score":      report.OverallRiskScore, // Score
		}).Info("Risk analysis completed")
		c.JSON(http.StatusOK, report)
	}
}

package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strconv"  // ID parsing

	"travel_risk/internal/apperr" // Error taxonomy

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
	"gorm.io/gorm"               // GORM errors
)

// writeError maps an error onto the response envelope:
// 400 carries the field map, every other status a {"detail": ...} object
func writeError(c *gin.Context, err error) {
	var (
		ve  *apperr.ValidationError
		ane *apperr.AuthenticationError
		aze *apperr.AuthorizationError
		nfe *apperr.NotFoundError
		ue  *apperr.UpstreamError
	)
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, ve.Fields)
	case errors.As(err, &ane):
		c.JSON(http.StatusUnauthorized, gin.H{"detail": ane.Detail})
	case errors.As(err, &aze):
		c.JSON(http.StatusForbidden, gin.H{"detail": aze.Detail})
	case errors.As(err, &nfe):
		c.JSON(http.StatusNotFound, gin.H{"detail": nfe.Detail})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
	case errors.As(err, &ue):
		// Log the upstream error with context, the client only sees a generic message
		logrus.WithFields(logrus.Fields{
			"path":  c.Request.URL.Path, // Request path
			"error": ue.Err.Error(),     // Underlying error
		}).Error("Risk provider failed")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
	default:
		logrus.WithFields(logrus.Fields{
			"path":  c.Request.URL.Path,
			"error": err.Error(),
		}).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
	}
}

// parseID reads the :id path parameter; a malformed id is treated as unknown
func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.NotFound("Not found.")
	}
	return uint(id), nil
}

// Package access holds the role matrix applied to every traveler, trip and
// risk analysis operation.
//
//	role        travelers / trips         analyze-risk
//	traveler    own records only          own trips only
//	hr_manager  all records               any trip
//	admin       all records               any trip
package access

import (
	"errors"

	"travel_risk/internal/apperr"
	"travel_risk/internal/domain"

	"gorm.io/gorm"
)

// Principal is the authenticated caller
type Principal struct {
	UserID string
	Role   string
}

// PrincipalOf builds a Principal from a loaded user
func PrincipalOf(u *domain.User) Principal {
	return Principal{UserID: u.ID, Role: u.Role}
}

// CanManageAll reports whether the role sees and mutates every traveler and trip
func CanManageAll(role string) bool {
	return role == domain.RoleHRManager || role == domain.RoleAdmin
}

// ScopeTravelers restricts a traveler query to the profiles p may see
func ScopeTravelers(db *gorm.DB, p Principal) *gorm.DB {
	if CanManageAll(p.Role) {
		return db
	}
	return db.Where("travelers.user_id = ?", p.UserID)
}

// ScopeTrips restricts a trip query to the trips p may see
func ScopeTrips(db *gorm.DB, p Principal) *gorm.DB {
	if CanManageAll(p.Role) {
		return db
	}
	own := db.Session(&gorm.Session{NewDB: true}).
		Model(&domain.Traveler{}).
		Select("id").
		Where("user_id = ?", p.UserID)
	return db.Where("trips.traveler_id IN (?)", own)
}

// OwnTraveler returns the caller's own traveler profile
func OwnTraveler(db *gorm.DB, p Principal) (*domain.Traveler, error) {
	var tr domain.Traveler
	err := db.Where("user_id = ?", p.UserID).First(&tr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tr, nil
}

// AuthorizeTrip checks that p may act on trip, whose traveler must be loaded
func AuthorizeTrip(p Principal, trip *domain.Trip) error {
	if CanManageAll(p.Role) {
		return nil
	}
	if trip.Traveler == nil || trip.Traveler.UserID != p.UserID {
		return apperr.Forbidden("You do not have permission to perform this action.")
	}
	return nil
}

// AllowRole reports whether role is one of allowed
func AllowRole(role string, allowed ...string) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

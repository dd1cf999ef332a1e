// Package risk talks to the external assessment backend and maps its answer
// onto domain.RiskReport.
package risk

import (
	"context"

	"travel_risk/internal/domain"
)

// TravelerContext is what the provider learns about the person travelling
type TravelerContext struct {
	Nationality      *string `json:"nationality"`
	Gender           *string `json:"gender"`
	HealthConditions *string `json:"health_conditions"`
	FrequentTraveler bool    `json:"frequent_traveler"`
}

// TripContext is what the provider learns about the journey
type TripContext struct {
	DestinationCountry string  `json:"destination_country"`
	DestinationCity    *string `json:"destination_city"`
	StartDate          string  `json:"start_date"`
	EndDate            string  `json:"end_date"`
	Purpose            string  `json:"purpose"`
	TransportMode      *string `json:"transport_mode"`
	Accommodation      *string `json:"accommodation"`
	DurationDays       int     `json:"duration_days"`
}

// Request is the payload sent to the provider
type Request struct {
	Traveler TravelerContext `json:"traveler"`
	Trip     TripContext     `json:"trip"`
}

// Provider assesses a trip. Implementations return *apperr.UpstreamError on failure.
type Provider interface {
	Assess(ctx context.Context, req Request) (*domain.RiskReport, error)
}

// BuildRequest assembles the provider payload from a trip and its owner
func BuildRequest(trip *domain.Trip, traveler *domain.Traveler, user *domain.User) Request {
	req := Request{
		Trip: TripContext{
			DestinationCountry: trip.DestinationCountry,
			DestinationCity:    trip.DestinationCity,
			StartDate:          trip.StartDate.String(),
			EndDate:            trip.EndDate.String(),
			Purpose:            trip.Purpose,
			TransportMode:      trip.TransportMode,
			Accommodation:      trip.Accommodation,
			DurationDays:       trip.DurationDays(),
		},
		Traveler: TravelerContext{
			HealthConditions: traveler.HealthConditions,
			FrequentTraveler: traveler.FrequentTraveler,
		},
	}
	if user != nil {
		req.Traveler.Nationality = user.Nationality
		req.Traveler.Gender = user.Gender
	}
	return req
}

package domain

import "time"

// Trip Model
type Trip struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	TravelerID         uint      `gorm:"index;not null" json:"traveler"` // Owning traveler profile
	Traveler           *Traveler `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	DestinationCountry string    `gorm:"size:100;not null" json:"destination_country"`
	DestinationCity    *string   `gorm:"size:100" json:"destination_city"`
	StartDate          Date      `gorm:"type:date;not null" json:"start_date"`
	EndDate            Date      `gorm:"type:date;not null" json:"end_date"`
	Purpose            string    `gorm:"size:255;not null" json:"purpose"`
	Accommodation      *string   `gorm:"size:255" json:"accommodation"`
	TransportMode      *string   `gorm:"size:100" json:"transport_mode"`
	CreatedAt          time.Time `json:"created_at"`
}

// DurationDays is the number of days between start and end date
func (t *Trip) DurationDays() int {
	return int(t.EndDate.Sub(t.StartDate.Time).Hours() / 24)
}

package domain

import "time"

// Traveler Model
type Traveler struct {
	ID                     uint      `gorm:"primaryKey" json:"id"`
	UserID                 string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"user"` // One profile per user
	User                   *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	PassportNumber         *string   `gorm:"size:50" json:"passport_number"`
	PassportIssuingCountry *string   `gorm:"size:100" json:"passport_issuing_country"`
	PassportExpiryDate     *Date     `gorm:"type:date" json:"passport_expiry_date"`
	HealthConditions       *string   `gorm:"type:text" json:"health_conditions"`
	FrequentTraveler       bool      `gorm:"not null;default:false" json:"frequent_traveler"`
	CreatedAt              time.Time `json:"created_at"`
}

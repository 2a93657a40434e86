package model

import "time"

type Household struct {
	ID             int64        `json:"id"`
	Name           string       `json:"name"`
	SharingEnabled bool         `json:"sharing_enabled"`
	DefaultPolicy  AccessPolicy `json:"default_access_policy"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

type Home struct {
	ID          int64     `json:"id"`
	HouseholdID int64     `json:"household_id"`
	Name        string    `json:"name"`
	IsPrivate   bool      `json:"is_private"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

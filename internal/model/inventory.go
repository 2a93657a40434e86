package model

import "time"

// InventoryLabel is household-scoped catalog metadata, independent of any
// home. Label visibility is gated only by membership status, never by
// home-level access.
type InventoryLabel struct {
	ID          int64     `json:"id"`
	HouseholdID int64     `json:"household_id"`
	Name        string    `json:"name"`
	Emoji       string    `json:"emoji"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type InventoryItem struct {
	ID        int64     `json:"id"`
	HomeID    int64     `json:"home_id"`
	LabelID   *int64    `json:"label_id,omitempty"`
	Title     string    `json:"title"`
	Notes     string    `json:"notes"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

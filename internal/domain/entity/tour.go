package entity

import "time"

// Tour is a bookable trip offered through the catalog.
type Tour struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Duration     int       `json:"duration"` // days
	MaxGroupSize int       `json:"max_group_size"`
	Difficulty   string    `json:"difficulty"` // easy, medium, difficult
	Price        float64   `json:"price"`
	Summary      string    `json:"summary"`
	Description  string    `json:"description,omitempty"`
	ImageCover   string    `json:"image_cover,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

package models

import "time"

// Destination is a row of the destinations table.
// Rating, TicketPrice and the coordinates are nullable in the store.
type Destination struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	CityID      int64    `json:"city_id"`
	CategoryID  int64    `json:"category_id"`
	Rating      *float64 `json:"rating"`
	TicketPrice *float64 `json:"ticket_price"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

type City struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// User is a dashboard end user. HomeCity is free text and not a reference to City.
type User struct {
	ID       int64  `json:"id"`
	Age      *int   `json:"age"`
	HomeCity string `json:"home_city"`
}

type Review struct {
	ID            int64 `json:"id"`
	DestinationID int64 `json:"destination_id"`
	UserID        int64 `json:"user_id"`
	Rating        int   `json:"rating"`
}

// Tables is an immutable snapshot of the five source tables for one session.
type Tables struct {
	Destinations []Destination `json:"destinations"`
	Users        []User        `json:"users"`
	Reviews      []Review      `json:"reviews"`
	Cities       []City        `json:"cities"`
	Categories   []Category    `json:"categories"`

	Version  string    `json:"version"`
	LoadedAt time.Time `json:"loaded_at"`
}

// RatingScale bounds the integer review scores.
type RatingScale struct {
	Min int
	Max int
}

// DefaultRatingScale is the 1..5 star scale used by reviews.
var DefaultRatingScale = RatingScale{Min: 1, Max: 5}

// Contains reports whether score is a valid point on the scale.
func (s RatingScale) Contains(score int) bool {
	return score >= s.Min && score <= s.Max
}

// MaxDestinationRating is the upper bound of a destination's average rating.
const MaxDestinationRating = 5.0

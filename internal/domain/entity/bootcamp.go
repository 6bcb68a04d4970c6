package entity

import "time"

// Careers a bootcamp may advertise.
var Careers = []string{
	"Web Development",
	"Mobile Development",
	"UI/UX",
	"Data Science",
	"Business",
	"Other",
}

// DefaultPhoto is the photo name of a bootcamp that never had one uploaded.
const DefaultPhoto = "no-photo.jpg"

// Location is a GeoJSON point enriched with the geocoder's address breakdown.
// Coordinates are stored as [longitude, latitude].
type Location struct {
	Type             string    `json:"type"`
	Coordinates      []float64 `json:"coordinates"`
	FormattedAddress string    `json:"formattedAddress,omitempty"`
	Street           string    `json:"street,omitempty"`
	City             string    `json:"city,omitempty"`
	State            string    `json:"state,omitempty"`
	Zipcode          string    `json:"zipcode,omitempty"`
	Country          string    `json:"country,omitempty"`
}

// Bootcamp is the aggregate root of the directory.
// Address is only an input: it is geocoded into Location and never stored.
type Bootcamp struct {
	ID            string    `json:"id"`
	User          string    `json:"user"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description"`
	Website       string    `json:"website,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	Address       string    `json:"-"`
	Location      *Location `json:"location,omitempty"`
	Careers       []string  `json:"careers"`
	AverageRating *float64  `json:"averageRating,omitempty"`
	AverageCost   *float64  `json:"averageCost,omitempty"`
	Photo         string    `json:"photo"`
	Housing       bool      `json:"housing"`
	JobAssistance bool      `json:"jobAssistance"`
	JobGuarantee  bool      `json:"jobGuarantee"`
	AcceptGi      bool      `json:"acceptGi"`
	CreatedAt     time.Time `json:"createdAt"`
}

// OwnedBy reports whether the bootcamp was published by userID.
func (b *Bootcamp) OwnedBy(userID string) bool {
	return b.User == userID
}

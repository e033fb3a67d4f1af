package api

import (
	"context"

	"github.com/huynhanx03/tripwise-api/pkg/geo"
)

// Verification actions expected per form kind. The provider reports the
// action a token was issued for; a mismatch is rejected.
const (
	ActionBooking    = "booking"
	ActionNewsletter = "newsletter"
)

// GeoService abstracts the geocoding/places client for handler tests.
type GeoService interface {
	Geocode(ctx context.Context, text string) (geo.Coordinate, error)
	SearchPlaces(ctx context.Context, q geo.PlacesQuery) ([]geo.Place, error)
}

// BookingRequest is the submit-form payload for a booking inquiry.
type BookingRequest struct {
	FullName    string `json:"fullName" validate:"required,max=100"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"max=30"`
	Destination string `json:"destination" validate:"required,max=120"`
	TravelDate  string `json:"travelDate" validate:"required,datetime=2006-01-02"`
	Guests      int    `json:"guests" validate:"required,min=1,max=20"`
	Notes       string `json:"notes" validate:"max=1000"`
	Token       string `json:"verifyToken"`
}

func (r BookingRequest) VerificationToken() string { return r.Token }

// BookingResponse acknowledges a persisted inquiry.
type BookingResponse struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

// NewsletterRequest is the submit-form payload for a newsletter signup.
type NewsletterRequest struct {
	Email string `json:"email" validate:"required,email"`
	Token string `json:"verifyToken"`
}

func (r NewsletterRequest) VerificationToken() string { return r.Token }

// NewsletterResponse acknowledges a signup. Duplicate signups succeed with
// the flag set instead of erroring, so resubmitting a form is harmless.
type NewsletterResponse struct {
	Subscribed bool `json:"subscribed"`
	Duplicate  bool `json:"duplicate"`
}

// GeocodeRequest is the lookup query for free-form location text.
type GeocodeRequest struct {
	Text string `form:"q" json:"q" validate:"required,max=200"`
}

// PlacesRequest is the lookup query for places around a point. Coordinates
// are pointers so that an omitted parameter is distinguishable from 0.
type PlacesRequest struct {
	Lat        *float64 `form:"lat" json:"lat" validate:"required,latitude"`
	Lon        *float64 `form:"lon" json:"lon" validate:"required,longitude"`
	Radius     int      `form:"radius" json:"radius" validate:"omitempty,gte=100,lte=50000"`
	Categories string   `form:"categories" json:"categories" validate:"required,max=200"`
}

// PlacesResponse wraps the normalized place list.
type PlacesResponse struct {
	Places []geo.Place `json:"places"`
}

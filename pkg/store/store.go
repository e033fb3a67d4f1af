package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking is a submitted booking inquiry.
type Booking struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	FullName    string             `bson:"full_name"`
	Email       string             `bson:"email"`
	Phone       string             `bson:"phone,omitempty"`
	Destination string             `bson:"destination"`
	TravelDate  string             `bson:"travel_date"`
	Guests      int                `bson:"guests"`
	Notes       string             `bson:"notes,omitempty"`
	CreatedAt   time.Time          `bson:"created_at"`
}

// Subscription is one newsletter signup. Email is unique.
type Subscription struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Email     string             `bson:"email"`
	CreatedAt time.Time          `bson:"created_at"`
}

// Store is the backing-store collaborator the request pipeline delegates
// writes to. Failures are terminal for the triggering request; the pipeline
// never retries them.
type Store interface {
	// SaveBooking persists a booking inquiry.
	SaveBooking(ctx context.Context, booking *Booking) error

	// SaveSubscription persists a newsletter signup. A duplicate email is
	// an idempotent no-op reported as created=false with a nil error.
	SaveSubscription(ctx context.Context, sub *Subscription) (created bool, err error)

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
}

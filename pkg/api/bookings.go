package api

import (
	"context"

	"go.uber.org/zap"

	"github.com/huynhanx03/tripwise-api/pkg/store"
)

// bookingAction persists a validated, human-verified booking inquiry. Store
// failures surface as-is: the pipeline never retries a write.
func bookingAction(st store.Store, log *zap.Logger) func(context.Context, *BookingRequest) (BookingResponse, error) {
	return func(ctx context.Context, req *BookingRequest) (BookingResponse, error) {
		booking := &store.Booking{
			FullName:    req.FullName,
			Email:       req.Email,
			Phone:       req.Phone,
			Destination: req.Destination,
			TravelDate:  req.TravelDate,
			Guests:      req.Guests,
			Notes:       req.Notes,
		}

		if err := st.SaveBooking(ctx, booking); err != nil {
			log.Error("booking save failed", zap.Error(err))
			return BookingResponse{}, err
		}

		log.Info("booking received",
			zap.String("destination", booking.Destination),
			zap.String("id", booking.ID.Hex()),
		)

		return BookingResponse{Status: "received", ID: booking.ID.Hex()}, nil
	}
}

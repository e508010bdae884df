package event

import (
	"context"

	"go.uber.org/zap"
)

// AuditHandler writes every booking event to the log.
func AuditHandler(log *zap.Logger) Handler {
	log = log.With(zap.String("component", "booking-audit"))
	return func(_ context.Context, e BookingEvent) error {
		log.Info("Booking event",
			zap.String("type", string(e.Type)),
			zap.String("booking_id", e.BookingID.String()),
			zap.String("flight_id", e.FlightID.String()),
			zap.String("user_id", e.UserID.String()),
			zap.Strings("seats", e.Seats),
			zap.Float64("total_price", e.TotalPrice),
			zap.Time("occurred_at", e.OccurredAt),
		)
		return nil
	}
}

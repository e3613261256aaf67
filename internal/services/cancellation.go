package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	ManagementFee = 3.0

	// Cancellations strictly more than this far ahead are refunded.
	refundWindow = 2 * time.Hour

	bookingInstantLayout = "2006-01-02 15:04"
)

type CancellationOutcome struct {
	RefundAmount      float64 `json:"refund_amount"`
	Description       string  `json:"description"`
	HoursUntilBooking float64 `json:"hours_until_booking"`
}

// ParseBookingInstant combines a YYYY-MM-DD date and an HH:MM time into a UTC instant.
func ParseBookingInstant(date, clock string) (time.Time, error) {
	instant, err := time.ParseInLocation(
		bookingInstantLayout,
		strings.TrimSpace(date)+" "+strings.TrimSpace(clock),
		time.UTC,
	)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q %q", ErrInvalidDateTime, date, clock)
	}
	return instant, nil
}

// ComputeCancellation is pure: the caller supplies now.
func ComputeCancellation(date, clock string, amount float64, now time.Time) (CancellationOutcome, error) {
	instant, err := ParseBookingInstant(date, clock)
	if err != nil {
		return CancellationOutcome{}, err
	}

	until := instant.Sub(now.UTC())
	outcome := CancellationOutcome{HoursUntilBooking: until.Hours()}

	if until > refundWindow {
		outcome.RefundAmount = roundCents(math.Max(0, amount-ManagementFee))
		outcome.Description = fmt.Sprintf(
			"Reembolso de %s€ (total %s€ - %s€ gastos de gestión)",
			formatAmount(outcome.RefundAmount),
			formatAmount(amount),
			formatAmount(ManagementFee),
		)
		return outcome, nil
	}

	outcome.Description = fmt.Sprintf(
		"Sin reembolso. Cancelación con menos de 2 horas de antelación. Se cobra el importe completo (%s€).",
		formatAmount(amount),
	)
	return outcome, nil
}

func roundCents(value float64) float64 {
	return math.Round(value*100) / 100
}

// formatAmount renders 19 as "19.0" and 19.5 as "19.5".
func formatAmount(value float64) string {
	formatted := strconv.FormatFloat(value, 'f', -1, 64)
	if !strings.Contains(formatted, ".") {
		formatted += ".0"
	}
	return formatted
}

package domain

import (
	"errors"
	"testing"
)

func TestBookingResult_Failure(t *testing.T) {
	t.Run("should be nil on success", func(t *testing.T) {
		result := &BookingResult{Success: true, Message: "trips booked successfully"}
		if err := result.Failure(); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
	})

	t.Run("should report a business failure with the server message", func(t *testing.T) {
		result := &BookingResult{Success: false, Message: "Sold out"}
		err := result.Failure()
		if !errors.Is(err, ErrBusiness) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", ErrBusiness, err)
		}
		if errors.Is(err, ErrTransport) {
			t.Fatalf("\nwanted:\nnot a transport error\ngot:\n%v", err)
		}
		if err.Error() != "Sold out" {
			t.Fatalf("\nwanted:\nSold out\ngot:\n%s", err.Error())
		}
	})

	t.Run("should report a business failure without a message", func(t *testing.T) {
		var domainErr *Error
		if err := (&BookingResult{}).Failure(); !errors.As(err, &domainErr) || domainErr.Kind != KindBusiness || domainErr.Message != "" {
			t.Fatalf("\nwanted:\nbare business error\ngot:\n%v", err)
		}
	})
}

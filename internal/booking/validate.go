package booking

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// PublishRequest is the administrative payload for publishing a day's
// bookable slots. It is validated locally before it goes on the wire.
type PublishRequest struct {
	Date      string     `json:"date" validate:"required,datekey"`
	TimeSlots []SlotSpan `json:"timeSlots" validate:"required,min=1,dive"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("datekey", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(DateLayout, fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("clocktime", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(ClockLayout, fl.Field().String())
		return err == nil
	})
	return v
}

// ValidatePublish checks field formats plus slot ordering. Zero-padded
// HH:MM strings compare correctly as strings.
func ValidatePublish(req PublishRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}
	for i, s := range req.TimeSlots {
		if s.EndTime <= s.StartTime {
			return fmt.Errorf("timeSlots[%d]: end %q must be after start %q", i, s.EndTime, s.StartTime)
		}
	}
	return nil
}

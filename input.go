package main

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	ErrTimeFormat = errors.New("select a valid time (HH:MM)")
	ErrTimeOrder  = errors.New("start time must be before end time")
)

var hhmmPattern = regexp.MustCompile(`^\d{2}:\d{2}$`)

var validate *validator.Validate

func init() {
	validate = validator.New()
	if err := validate.RegisterValidation("hhmm", validateHHMM); err != nil {
		panic(fmt.Sprintf("registering hhmm validation: %v", err))
	}
	validate.RegisterStructValidation(validateSlotOrder, Slot{})
}

func IsHHMM(t string) bool {
	return hhmmPattern.MatchString(t)
}

func validateHHMM(fl validator.FieldLevel) bool {
	return IsHHMM(fl.Field().String())
}

// zero-padded HH:MM sorts the same way as the time it names
func validateSlotOrder(sl validator.StructLevel) {
	s := sl.Current().Interface().(Slot)
	if !IsHHMM(s.StartTime) || !IsHHMM(s.EndTime) {
		return
	}
	if s.StartTime >= s.EndTime {
		sl.ReportError(s.EndTime, "EndTime", "endTime", "gtstart", "")
	}
}

// ValidateSlot checks the full slot invariant: day in 0..6, both times
// HH:MM and start strictly before end.
func ValidateSlot(s Slot) error {
	return validate.Struct(s)
}

// AddFunc receives either a candidate slot or the reason it was rejected.
type AddFunc func(day int, start, end string, err error)

// SlotInput collects one candidate slot at a time. Day survives a
// successful submit, the times do not.
type SlotInput struct {
	Day   int
	Start string
	End   string
}

func (in *SlotInput) Submit(emit AddFunc) {
	if !IsHHMM(in.Start) || !IsHHMM(in.End) {
		emit(0, "", "", ErrTimeFormat)
		return
	}
	if in.Start >= in.End {
		emit(0, "", "", ErrTimeOrder)
		return
	}

	emit(in.Day, in.Start, in.End, nil)
	in.Start = ""
	in.End = ""
}

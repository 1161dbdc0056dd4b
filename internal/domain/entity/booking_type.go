package entity

import (
	"database/sql/driver"
	"fmt"
)

// BookingType classifies how a reservation was made.
// Persisted as enum codes whose descending string order doubles as the
// waiting-queue priority order (WALK_IN, EMERGENCY before ADVANCE).
type BookingType string

const (
	BookingTypeAdvance   BookingType = "advance"
	BookingTypeWalkIn    BookingType = "walk-in"
	BookingTypeEmergency BookingType = "emergency"
)

var bookingTypeCodes = map[BookingType]string{
	BookingTypeAdvance:   "ADVANCE",
	BookingTypeWalkIn:    "WALK_IN",
	BookingTypeEmergency: "EMERGENCY",
}

var bookingTypeFromCode map[string]BookingType

func init() {
	bookingTypeFromCode = make(map[string]BookingType, len(bookingTypeCodes))
	for value, code := range bookingTypeCodes {
		bookingTypeFromCode[code] = value
	}
	if len(bookingTypeFromCode) != len(bookingTypeCodes) {
		panic("entity: booking type code mapping is not bijective")
	}
}

// ParseBookingType validates a display value coming from a request payload.
func ParseBookingType(value string) (BookingType, error) {
	bt := BookingType(value)
	if _, ok := bookingTypeCodes[bt]; !ok {
		return "", fmt.Errorf("invalid booking type %q", value)
	}
	return bt, nil
}

// RequiresArrival reports whether a reservation of this type starts with the
// patient already at the clinic.
func (b BookingType) RequiresArrival() bool {
	return b != BookingTypeAdvance
}

// Value implements driver.Valuer, storing the enum code.
func (b BookingType) Value() (driver.Value, error) {
	code, ok := bookingTypeCodes[b]
	if !ok {
		return nil, fmt.Errorf("invalid booking type %q", string(b))
	}
	return code, nil
}

// Scan implements sql.Scanner.
func (b *BookingType) Scan(value interface{}) error {
	var code string
	switch v := value.(type) {
	case []byte:
		code = string(v)
	case string:
		code = v
	default:
		return fmt.Errorf("failed to scan booking type value: %v", value)
	}

	mapped, ok := bookingTypeFromCode[code]
	if !ok {
		return fmt.Errorf("unknown booking type code %q", code)
	}
	*b = mapped
	return nil
}

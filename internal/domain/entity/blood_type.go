package entity

import (
	"database/sql/driver"
	"fmt"
)

// BloodType is the display value used across the API ("A+", "O-", ...).
// It is persisted as an enum code ("A_POS", "O_NEG", ...) via Value/Scan.
type BloodType string

const (
	BloodTypeAPos  BloodType = "A+"
	BloodTypeANeg  BloodType = "A-"
	BloodTypeBPos  BloodType = "B+"
	BloodTypeBNeg  BloodType = "B-"
	BloodTypeABPos BloodType = "AB+"
	BloodTypeABNeg BloodType = "AB-"
	BloodTypeOPos  BloodType = "O+"
	BloodTypeONeg  BloodType = "O-"
)

var bloodTypeCodes = map[BloodType]string{
	BloodTypeAPos:  "A_POS",
	BloodTypeANeg:  "A_NEG",
	BloodTypeBPos:  "B_POS",
	BloodTypeBNeg:  "B_NEG",
	BloodTypeABPos: "AB_POS",
	BloodTypeABNeg: "AB_NEG",
	BloodTypeOPos:  "O_POS",
	BloodTypeONeg:  "O_NEG",
}

var bloodTypeFromCode map[string]BloodType

func init() {
	bloodTypeFromCode = make(map[string]BloodType, len(bloodTypeCodes))
	for value, code := range bloodTypeCodes {
		bloodTypeFromCode[code] = value
	}
	if len(bloodTypeFromCode) != len(bloodTypeCodes) {
		panic("entity: blood type code mapping is not bijective")
	}
}

// ParseBloodType validates a display value coming from a request payload.
func ParseBloodType(value string) (BloodType, error) {
	bt := BloodType(value)
	if _, ok := bloodTypeCodes[bt]; !ok {
		return "", fmt.Errorf("invalid blood type %q", value)
	}
	return bt, nil
}

// Value implements driver.Valuer, storing the enum code.
func (b BloodType) Value() (driver.Value, error) {
	code, ok := bloodTypeCodes[b]
	if !ok {
		return nil, fmt.Errorf("invalid blood type %q", string(b))
	}
	return code, nil
}

// Scan implements sql.Scanner, mapping the enum code back to the display value.
func (b *BloodType) Scan(value interface{}) error {
	var code string
	switch v := value.(type) {
	case []byte:
		code = string(v)
	case string:
		code = v
	default:
		return fmt.Errorf("failed to scan blood type value: %v", value)
	}

	mapped, ok := bloodTypeFromCode[code]
	if !ok {
		return fmt.Errorf("unknown blood type code %q", code)
	}
	*b = mapped
	return nil
}

package services

import (
	"math"

	"github.com/sophia-wwww/accountd/types"
)

// Recognized optional profile fields. Keys outside this set are ignored by
// the validator rather than rejected.
const (
	fieldHeight = "height"
	fieldWeight = "weight"
	fieldAge    = "age"
	fieldGender = "gender"
)

// ValidateProfileFields coerces a raw JSON object into a typed partial
// update of the profile columns. A present key with a null value is an
// explicit clear. Any value that fails to coerce aborts the whole request;
// no partial result is returned.
func ValidateProfileFields(raw map[string]any) (types.ProfileUpdate, error) {
	var update types.ProfileUpdate

	if value, ok := raw[fieldHeight]; ok {
		field, err := floatField(fieldHeight, value)
		if err != nil {
			return types.ProfileUpdate{}, err
		}
		update.Height = field
	}
	if value, ok := raw[fieldWeight]; ok {
		field, err := floatField(fieldWeight, value)
		if err != nil {
			return types.ProfileUpdate{}, err
		}
		update.Weight = field
	}
	if value, ok := raw[fieldAge]; ok {
		field, err := intField(fieldAge, value)
		if err != nil {
			return types.ProfileUpdate{}, err
		}
		update.Age = field
	}
	if value, ok := raw[fieldGender]; ok {
		field, err := stringField(fieldGender, value)
		if err != nil {
			return types.ProfileUpdate{}, err
		}
		update.Gender = field
	}

	return update, nil
}

func floatField(name string, value any) (types.NullableFloat, error) {
	if value == nil {
		return types.FloatNull(), nil
	}
	// encoding/json decodes every JSON number as float64.
	number, ok := value.(float64)
	if !ok {
		return types.NullableFloat{}, &InvalidFieldError{Field: name}
	}
	return types.FloatValue(number), nil
}

func intField(name string, value any) (types.NullableInt, error) {
	if value == nil {
		return types.IntNull(), nil
	}
	number, ok := value.(float64)
	if !ok || number != math.Trunc(number) || number < math.MinInt32 || number > math.MaxInt32 {
		return types.NullableInt{}, &InvalidFieldError{Field: name}
	}
	return types.IntValue(int(number)), nil
}

func stringField(name string, value any) (types.NullableString, error) {
	if value == nil {
		return types.StringNull(), nil
	}
	text, ok := value.(string)
	if !ok {
		return types.NullableString{}, &InvalidFieldError{Field: name}
	}
	return types.StringValue(text), nil
}

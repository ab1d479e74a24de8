package types

// ProfileUpdate is a validated partial update of the optional profile
// fields. Each field is tri-state: not Set (leave the column untouched),
// Set with Valid=false (clear the column to NULL), or Set with a value.
type ProfileUpdate struct {
	Height NullableFloat
	Weight NullableFloat
	Age    NullableInt
	Gender NullableString
}

// Empty reports whether the update carries no field changes at all.
func (p ProfileUpdate) Empty() bool {
	return !p.Height.Set && !p.Weight.Set && !p.Age.Set && !p.Gender.Set
}

// NullableFloat is an optional float64 column value.
type NullableFloat struct {
	Set   bool
	Valid bool
	Value float64
}

// NullableInt is an optional integer column value.
type NullableInt struct {
	Set   bool
	Valid bool
	Value int
}

// NullableString is an optional string column value.
type NullableString struct {
	Set   bool
	Valid bool
	Value string
}

// FloatValue builds a set, non-null float field.
func FloatValue(v float64) NullableFloat { return NullableFloat{Set: true, Valid: true, Value: v} }

// IntValue builds a set, non-null integer field.
func IntValue(v int) NullableInt { return NullableInt{Set: true, Valid: true, Value: v} }

// StringValue builds a set, non-null string field.
func StringValue(v string) NullableString { return NullableString{Set: true, Valid: true, Value: v} }

// FloatNull builds an explicit clear of a float field.
func FloatNull() NullableFloat { return NullableFloat{Set: true} }

// IntNull builds an explicit clear of an integer field.
func IntNull() NullableInt { return NullableInt{Set: true} }

// StringNull builds an explicit clear of a string field.
func StringNull() NullableString { return NullableString{Set: true} }

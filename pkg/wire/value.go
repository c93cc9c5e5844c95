package wire

import (
	"strconv"
)

// Kind identifies how a value is rendered on the wire.
// The kind is decided when the owning registry entry is created and never
// changes afterwards.
type Kind uint8

const (
	// KindInt is a plain 32-bit integer, signed or unsigned.
	KindInt Kind = iota

	// KindDecimal is a fixed-point decimal: a raw integer divided by a
	// scale factor, rendered with a fixed number of fractional digits.
	KindDecimal

	// KindString is a text value, rendered quoted.
	KindString

	// KindMapped is an enumerated value rendered through a display-string
	// table, with numeric fallback for unmapped values.
	KindMapped
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "INT"
	case KindDecimal:
		return "DECIMAL"
	case KindString:
		return "STRING"
	case KindMapped:
		return "MAPPED"
	default:
		return "UNKNOWN"
	}
}

// Value is a typed telemetry value ready for rendering.
type Value struct {
	// Kind selects the rendering rule.
	Kind Kind

	// Raw is the integer payload for KindInt, KindDecimal and KindMapped.
	Raw int32

	// Signed selects signed integer rendering; unsigned values are
	// reinterpreted as uint32 before formatting.
	Signed bool

	// Scale is the fixed-point divisor for KindDecimal. Must be non-zero.
	Scale uint16

	// Decimals is the number of fractional digits for KindDecimal.
	Decimals uint8

	// Str is the text payload for KindString.
	Str string

	// Map is the display-string table for KindMapped, indexed by Raw.
	// An empty entry means the value is unmapped at that index.
	Map []string
}

// Int returns a plain integer Value.
func Int(raw int32, signed bool) Value {
	return Value{Kind: KindInt, Raw: raw, Signed: signed}
}

// Decimal returns a fixed-point decimal Value.
func Decimal(raw int32, scale uint16, decimals uint8) Value {
	return Value{Kind: KindDecimal, Raw: raw, Scale: scale, Decimals: decimals}
}

// String returns a text Value.
func String(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// Mapped returns an enumerated Value. Values outside the map fall back to
// the numeric rendering described by the remaining parameters; values
// mapped to an empty entry render as a plain integer.
func Mapped(raw int32, signed bool, scale uint16, decimals uint8, valueMap []string) Value {
	return Value{Kind: KindMapped, Raw: raw, Signed: signed, Scale: scale, Decimals: decimals, Map: valueMap}
}

// Render returns the wire representation of the value. String and mapped
// renderings include their surrounding quotes; numeric renderings do not.
func (v Value) Render() string {
	switch v.Kind {
	case KindString:
		return strconv.Quote(v.Str)
	case KindMapped:
		if int64(v.Raw) >= 0 && int64(v.Raw) < int64(len(v.Map)) {
			if entry := v.Map[v.Raw]; entry != "" {
				return strconv.Quote(entry)
			}
			// An unmapped entry inside the table renders as a plain
			// integer, ignoring the scale.
			return v.renderInt()
		}
		return v.renderNumeric()
	case KindDecimal:
		return v.renderNumeric()
	default:
		return v.renderInt()
	}
}

// renderNumeric formats the raw integer through the scale factor,
// degenerating to a plain integer for scales of 0 or 1.
func (v Value) renderNumeric() string {
	if v.Scale > 1 {
		return strconv.FormatFloat(float64(v.Raw)/float64(v.Scale), 'f', int(v.Decimals), 64)
	}
	return v.renderInt()
}

// renderInt formats the raw integer, honouring the sign flag.
func (v Value) renderInt() string {
	if v.Signed {
		return strconv.FormatInt(int64(v.Raw), 10)
	}
	return strconv.FormatUint(uint64(uint32(v.Raw)), 10)
}

package ast

import (
	"math"
	"regexp"
	"strconv"
)

// PrimitiveKind discriminates the narrow, persisted value shape.
type PrimitiveKind int

const (
	PrimNumber PrimitiveKind = iota
	PrimInteger
	PrimString
)

// PrimitiveValue is the narrow storage type for every variable and list
// cell: Number, Integer, or String. See spec §3.
type PrimitiveValue struct {
	Kind PrimitiveKind
	Num  float64
	Int  int64
	Str  string
}

func PVNumber(f float64) PrimitiveValue  { return PrimitiveValue{Kind: PrimNumber, Num: f} }
func PVInteger(i int64) PrimitiveValue   { return PrimitiveValue{Kind: PrimInteger, Int: i} }
func PVString(s string) PrimitiveValue   { return PrimitiveValue{Kind: PrimString, Str: s} }

// String renders a PrimitiveValue as text. Total: never fails.
// NaN/Infinity/-Infinity are the reverse-path forms of the corresponding
// floats, matching the original source's `From<PrimitiveValue> for String`.
func (p PrimitiveValue) String() string {
	switch p.Kind {
	case PrimString:
		return p.Str
	case PrimInteger:
		return strconv.FormatInt(p.Int, 10)
	case PrimNumber:
		if math.IsNaN(p.Num) {
			return "NaN"
		}
		if math.IsInf(p.Num, 1) {
			return "Infinity"
		}
		if math.IsInf(p.Num, -1) {
			return "-Infinity"
		}
		return strconv.FormatFloat(p.Num, 'g', -1, 64)
	}
	return ""
}

// Float64 attempts the PrimitiveValue -> f64 conversion. ok is false when a
// String fails to parse; callers surface that as a TypeError.
func (p PrimitiveValue) Float64() (float64, bool) {
	switch p.Kind {
	case PrimInteger:
		return float64(p.Int), true
	case PrimNumber:
		return p.Num, true
	case PrimString:
		f, err := strconv.ParseFloat(p.Str, 64)
		return f, err == nil
	}
	return 0, false
}

// Bool attempts the PrimitiveValue -> bool conversion. Only the strings
// "true"/"false" succeed; everything else (including numbers) fails.
func (p PrimitiveValue) Bool() (bool, bool) {
	if p.Kind != PrimString {
		return false, false
	}
	switch p.Str {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// colorPattern is the exact widening rule from spec §3: a String becomes
// Color iff it is "#" followed by exactly six hex digits.
var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ToRich widens a PrimitiveValue into a RichValue.
func (p PrimitiveValue) ToRich() RichValue {
	switch p.Kind {
	case PrimNumber:
		return RVNumber(p.Num)
	case PrimInteger:
		return RVInteger(p.Int)
	case PrimString:
		if colorPattern.MatchString(p.Str) {
			return RVColor(p.Str)
		}
		return RVString(p.Str)
	}
	return RVString("")
}

// RichKind discriminates the wide, transient evaluation type.
type RichKind int

const (
	RKBoolean RichKind = iota
	RKNumber
	RKPositiveNumber
	RKInteger
	RKPositiveInteger
	RKAngle
	RKColor
	RKBroadcast
	RKString
)

// RichValue is the wide evaluation type every reporter produces. Only
// Boolean, Number, PositiveNumber, Integer, PositiveInteger, Angle, Color,
// Broadcast, and String variants exist; see spec §3.
type RichValue struct {
	Kind RichKind
	B    bool
	Num  float64
	Int  int64
	Str  string
}

func RVBoolean(b bool) RichValue         { return RichValue{Kind: RKBoolean, B: b} }
func RVNumber(f float64) RichValue       { return RichValue{Kind: RKNumber, Num: f} }
func RVPositiveNumber(f float64) RichValue { return RichValue{Kind: RKPositiveNumber, Num: f} }
func RVInteger(i int64) RichValue        { return RichValue{Kind: RKInteger, Int: i} }
func RVPositiveInteger(i int64) RichValue { return RichValue{Kind: RKPositiveInteger, Int: i} }
func RVAngle(f float64) RichValue        { return RichValue{Kind: RKAngle, Num: f} }
func RVColor(s string) RichValue         { return RichValue{Kind: RKColor, Str: s} }
func RVBroadcast(s string) RichValue     { return RichValue{Kind: RKBroadcast, Str: s} }
func RVString(s string) RichValue        { return RichValue{Kind: RKString, Str: s} }

// RVSuccess is the canonical "statement executed fine" value returned by
// every stack-shaped (effectful) block.
func RVSuccess() RichValue { return RVBoolean(true) }

// ArrayRepresentationNumber is the documented tag (4..11) this variant
// would serialize back to a Scratch project array as. Kept bug-for-bug
// faithful to the original implementation: Boolean and String share the
// value 10.
func (r RichValue) ArrayRepresentationNumber() int {
	switch r.Kind {
	case RKNumber:
		return 4
	case RKPositiveNumber:
		return 5
	case RKPositiveInteger:
		return 6
	case RKInteger:
		return 7
	case RKAngle:
		return 8
	case RKColor:
		return 9
	case RKBoolean, RKString:
		return 10
	case RKBroadcast:
		return 11
	}
	return 0
}

// ToPrimitive narrows a RichValue into a PrimitiveValue. Total: Boolean
// becomes the string "true"/"false"; Broadcast and Color become String.
func (r RichValue) ToPrimitive() PrimitiveValue {
	switch r.Kind {
	case RKAngle, RKNumber, RKPositiveNumber:
		return PVNumber(r.Num)
	case RKInteger, RKPositiveInteger:
		return PVInteger(r.Int)
	case RKBoolean:
		if r.B {
			return PVString("true")
		}
		return PVString("false")
	case RKString, RKColor, RKBroadcast:
		return PVString(r.Str)
	}
	return PVString("")
}

// Equal implements RichValue equality the way data_itemnumoflist /
// data_listcontainsitem need it: compare through the narrow
// representation, so Integer(3) and Number(3.0) (and their string forms)
// compare equal the same way Scratch's dynamic equality does.
func (r RichValue) Equal(other RichValue) bool {
	a, b := r.ToPrimitive(), other.ToPrimitive()
	if a.Kind == PrimString || b.Kind == PrimString {
		return a.String() == b.String()
	}
	af, _ := a.Float64()
	bf, _ := b.Float64()
	return af == bf
}

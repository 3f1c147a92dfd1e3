package ast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimitiveValueString(t *testing.T) {
	assert.Equal(t, "3", PVInteger(3).String())
	assert.Equal(t, "hello", PVString("hello").String())
	assert.Equal(t, "3.5", PVNumber(3.5).String())
	assert.Equal(t, "NaN", PVNumber(math.NaN()).String())
	assert.Equal(t, "Infinity", PVNumber(math.Inf(1)).String())
	assert.Equal(t, "-Infinity", PVNumber(math.Inf(-1)).String())
}

func TestPrimitiveValueFloat64(t *testing.T) {
	f, ok := PVInteger(4).Float64()
	require.True(t, ok)
	assert.Equal(t, 4.0, f)

	f, ok = PVString("2.5").Float64()
	require.True(t, ok)
	assert.Equal(t, 2.5, f)

	_, ok = PVString("not a number").Float64()
	assert.False(t, ok)
}

func TestPrimitiveValueBool(t *testing.T) {
	b, ok := PVString("true").Bool()
	require.True(t, ok)
	assert.True(t, b)

	b, ok = PVString("false").Bool()
	require.True(t, ok)
	assert.False(t, b)

	_, ok = PVString("yes").Bool()
	assert.False(t, ok)

	_, ok = PVInteger(1).Bool()
	assert.False(t, ok)
}

func TestPrimitiveValueToRich(t *testing.T) {
	assert.Equal(t, RVNumber(1.5), PVNumber(1.5).ToRich())
	assert.Equal(t, RVInteger(7), PVInteger(7).ToRich())
	assert.Equal(t, RVString("hello"), PVString("hello").ToRich())
	assert.Equal(t, RVColor("#1a2b3c"), PVString("#1a2b3c").ToRich())
	assert.Equal(t, RVString("#1a2b3"), PVString("#1a2b3").ToRich()) // 5 hex digits, not a color
}

func TestRichValueArrayRepresentationNumber(t *testing.T) {
	assert.Equal(t, 4, RVNumber(1).ArrayRepresentationNumber())
	assert.Equal(t, 5, RVPositiveNumber(1).ArrayRepresentationNumber())
	assert.Equal(t, 6, RVPositiveInteger(1).ArrayRepresentationNumber())
	assert.Equal(t, 7, RVInteger(1).ArrayRepresentationNumber())
	assert.Equal(t, 8, RVAngle(1).ArrayRepresentationNumber())
	assert.Equal(t, 9, RVColor("#000000").ArrayRepresentationNumber())
	assert.Equal(t, 10, RVBoolean(true).ArrayRepresentationNumber())
	assert.Equal(t, 10, RVString("x").ArrayRepresentationNumber())
	assert.Equal(t, 11, RVBroadcast("go").ArrayRepresentationNumber())
}

func TestRichValueToPrimitive(t *testing.T) {
	assert.Equal(t, PVString("true"), RVBoolean(true).ToPrimitive())
	assert.Equal(t, PVString("false"), RVBoolean(false).ToPrimitive())
	assert.Equal(t, PVNumber(2.5), RVAngle(2.5).ToPrimitive())
	assert.Equal(t, PVInteger(3), RVPositiveInteger(3).ToPrimitive())
	assert.Equal(t, PVString("#ff0000"), RVColor("#ff0000").ToPrimitive())
	assert.Equal(t, PVString("go"), RVBroadcast("go").ToPrimitive())
}

func TestRichValueEqual(t *testing.T) {
	assert.True(t, RVInteger(3).Equal(RVNumber(3.0)))
	assert.True(t, RVString("3").Equal(RVNumber(3.0)))
	assert.False(t, RVString("3.0").Equal(RVString("3")))
}

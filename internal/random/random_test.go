package random

import (
	"math"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInt_InclusiveBounds(t *testing.T) {
	r := New(1)
	seen := map[int64]bool{}
	for i := 0; i < 1000; i++ {
		v := r.Int(-2, 2)
		require.GreaterOrEqual(t, v, int64(-2))
		require.LessOrEqual(t, v, int64(2))
		seen[v] = true
	}
	assert.Len(t, seen, 5, "every value in [-2, 2] should appear")
}

func TestInt_SwappedAndFullRange(t *testing.T) {
	r := New(2)
	for i := 0; i < 100; i++ {
		v := r.Int(10, 5)
		require.True(t, v >= 5 && v <= 10)
	}
	for i := 0; i < 100; i++ {
		_ = r.Int(math.MinInt64, math.MaxInt64)
	}
	assert.Equal(t, int64(7), r.Int(7, 7))
}

func TestFloat_Range(t *testing.T) {
	r := New(3)
	for i := 0; i < 1000; i++ {
		v := r.Float(1.5, 2.5)
		require.True(t, v >= 1.5 && v <= 2.5, "got %v", v)
	}
}

func TestBits(t *testing.T) {
	r := New(4)
	for i := 0; i < 1000; i++ {
		require.Less(t, r.Bits(3), uint64(8))
	}
	assert.Equal(t, uint64(0), r.Bits(0))
}

func TestStringBetween(t *testing.T) {
	r := New(5)
	for i := 0; i < 500; i++ {
		s := r.StringBetween(2, 6)
		require.True(t, len(s) >= 2 && len(s) <= 6, "length %d", len(s))
	}
	assert.Equal(t, "", r.String(0))
}

func TestDate_Range(t *testing.T) {
	r := New(6)
	min := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	max := time.Date(2000, 12, 31, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 500; i++ {
		d := r.Date(min, max)
		require.False(t, d.Before(min) || d.After(max), "date %v out of range", d)
	}

	min = time.Date(2024, 1, 1, 0, 0, 0, 900_000_000, time.UTC)
	max = min.Add(2 * time.Second)
	for i := 0; i < 1000; i++ {
		d := r.Date(min, max)
		require.False(t, d.Before(min) || d.After(max), "date %v out of range", d)
	}

	max = min.Add(50 * time.Millisecond)
	assert.True(t, r.Date(min, max).Equal(min))
}

func TestTime_Format(t *testing.T) {
	r := New(7)
	re := regexp.MustCompile(`^-?\d{1,3}:[0-5]\d:[0-5]\d$`)
	for i := 0; i < 500; i++ {
		require.Regexp(t, re, r.Time(-838, 838))
	}
}

func TestBitString(t *testing.T) {
	r := New(9)
	re := regexp.MustCompile(`^[01]{12}$`)
	for i := 0; i < 100; i++ {
		require.Regexp(t, re, r.BitString(12))
	}
	assert.Equal(t, New(3).BitString(40), New(3).BitString(40))
}

func TestUUID_Version4(t *testing.T) {
	r := New(8)
	for i := 0; i < 100; i++ {
		u, err := uuid.Parse(r.UUID())
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(4), u.Version())
		assert.Equal(t, uuid.RFC4122, u.Variant())
	}
}

func TestSeedIsDeterministic(t *testing.T) {
	a, b := New(42), New(42)
	for i := 0; i < 50; i++ {
		require.Equal(t, a.Int(0, 1_000_000), b.Int(0, 1_000_000))
		require.Equal(t, a.String(8), b.String(8))
	}
}

// Package random produces uniformly distributed primitive values from a
// seeded source. A Randomizer is not safe for concurrent use.
package random

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type Randomizer struct {
	rng *rand.Rand
}

func New(seed int64) *Randomizer {
	return &Randomizer{rng: rand.New(rand.NewSource(seed))}
}

// Int returns a uniform integer in [min, max], both ends inclusive.
func (r *Randomizer) Int(min, max int64) int64 {
	if max < min {
		min, max = max, min
	}
	span := uint64(max) - uint64(min)
	if span < math.MaxInt64 {
		return min + r.rng.Int63n(int64(span)+1)
	}
	for {
		v := r.rng.Uint64()
		if v <= span {
			return int64(uint64(min) + v)
		}
	}
}

// Intn returns a uniform integer in [0, n).
func (r *Randomizer) Intn(n int) int {
	return r.rng.Intn(n)
}

// Float returns a uniform real in [min, max].
func (r *Randomizer) Float(min, max float64) float64 {
	if max < min {
		min, max = max, min
	}
	return min + r.rng.Float64()*(max-min)
}

// Bits returns a random pattern of n bits.
func (r *Randomizer) Bits(n int) uint64 {
	switch {
	case n <= 0:
		return 0
	case n >= 64:
		return r.rng.Uint64()
	}
	return r.rng.Uint64() & (uint64(1)<<uint(n) - 1)
}

// Chance reports true with probability p.
func (r *Randomizer) Chance(p float64) bool {
	return r.rng.Float64() < p
}

// String returns a random alphanumeric string of exactly length characters.
func (r *Randomizer) String(length int) string {
	if length <= 0 {
		return ""
	}
	b := make([]byte, length)
	for i := range b {
		b[i] = alphabet[r.rng.Intn(len(alphabet))]
	}
	return string(b)
}

// StringBetween returns a random string whose length is uniform in [min, max].
func (r *Randomizer) StringBetween(min, max int) string {
	return r.String(int(r.Int(int64(min), int64(max))))
}

// Date returns a uniform instant in [min, max] at second precision. A
// fractional min is rounded up to the next whole second; when no whole
// second fits in the range min itself is returned.
func (r *Randomizer) Date(min, max time.Time) time.Time {
	lo, hi := min.Unix(), max.Unix()
	if min.Nanosecond() > 0 {
		lo++
	}
	if lo > hi {
		return min.UTC()
	}
	return time.Unix(r.Int(lo, hi), 0).UTC()
}

// Time returns a TIME literal with hours in [minHour, maxHour] and minutes
// and seconds in [0, 59].
func (r *Randomizer) Time(minHour, maxHour int64) string {
	h := r.Int(minHour, maxHour)
	m := r.Int(0, 59)
	s := r.Int(0, 59)
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}

// BitString returns n random binary digits.
func (r *Randomizer) BitString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = '0' + byte(r.rng.Intn(2))
	}
	return string(b)
}

// Seed draws a non-negative seed for a dependent source.
func (r *Randomizer) Seed() int64 {
	return r.rng.Int63()
}

// UUID returns a version 4 UUID drawn from the seeded source.
func (r *Randomizer) UUID() string {
	b := make([]byte, 16)
	r.rng.Read(b)
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	u, err := uuid.FromBytes(b)
	if err != nil {
		return uuid.NewString()
	}
	return u.String()
}

// Pick returns a uniformly chosen element of pool.
func (r *Randomizer) Pick(pool []interface{}) interface{} {
	return pool[r.rng.Intn(len(pool))]
}

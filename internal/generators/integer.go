package generators

import (
	"math"

	"github.com/mmrzaf/dbfill/internal/domain"
	"github.com/mmrzaf/dbfill/internal/random"
)

// IntegerGenerator draws a uniform integer in [min, max]. The defaults apply
// when the column does not set its own bounds.
type IntegerGenerator struct {
	DefaultMin int64
	DefaultMax int64
}

var (
	TinyIntGenerator   = &IntegerGenerator{DefaultMin: math.MinInt8, DefaultMax: math.MaxInt8}
	SmallIntGenerator  = &IntegerGenerator{DefaultMin: math.MinInt16, DefaultMax: math.MaxInt16}
	MediumIntGenerator = &IntegerGenerator{DefaultMin: -1 << 23, DefaultMax: 1<<23 - 1}
	IntGenerator       = &IntegerGenerator{DefaultMin: math.MinInt32, DefaultMax: math.MaxInt32}
	BigIntGenerator    = &IntegerGenerator{DefaultMin: math.MinInt64, DefaultMax: math.MaxInt64}
	YearGenerator      = &IntegerGenerator{DefaultMin: 1901, DefaultMax: 2155}
)

func (g *IntegerGenerator) Generate(rng *random.Randomizer, col *domain.Column, ctx GeneratorContext) (interface{}, error) {
	min, max, err := intBounds(col, g.DefaultMin, g.DefaultMax)
	if err != nil {
		return nil, err
	}
	return rng.Int(min, max), nil
}

func (g *IntegerGenerator) Validate(col *domain.Column) error {
	_, _, err := intBounds(col, g.DefaultMin, g.DefaultMax)
	return err
}

type BoolGenerator struct{}

func (g *BoolGenerator) Generate(rng *random.Randomizer, col *domain.Column, ctx GeneratorContext) (interface{}, error) {
	return rng.Int(0, 1), nil
}

func (g *BoolGenerator) Validate(col *domain.Column) error {
	return nil
}

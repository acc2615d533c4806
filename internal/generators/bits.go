package generators

import (
	"fmt"

	"github.com/mmrzaf/dbfill/internal/domain"
	"github.com/mmrzaf/dbfill/internal/random"
)

// maxBitString caps the width of a bitString column.
const maxBitString = 1 << 16

// BitsGenerator fills bit and set columns with a random pattern of max bits.
// Integer patterns are capped at 63 bits so they fit a signed driver value;
// with options.bitString the pattern is sent as binary digits instead.
type BitsGenerator struct{}

func (g *BitsGenerator) Generate(rng *random.Randomizer, col *domain.Column, ctx GeneratorContext) (interface{}, error) {
	n, err := bitCount(col)
	if err != nil {
		return nil, err
	}
	if col.Options.BitString {
		return rng.BitString(n), nil
	}
	return int64(rng.Bits(n)), nil
}

func (g *BitsGenerator) Validate(col *domain.Column) error {
	_, err := bitCount(col)
	return err
}

func bitCount(col *domain.Column) (int, error) {
	if col.Options.Max == nil {
		return 1, nil
	}
	n, err := col.Options.Max.Int()
	if err != nil {
		return 0, fmt.Errorf("invalid max: %w", err)
	}
	limit := int64(64)
	if col.Options.BitString {
		limit = maxBitString
	}
	if n < 1 || n > limit {
		return 0, fmt.Errorf("bit count must be in [1, %d], got %d", limit, n)
	}
	if n > 63 && !col.Options.BitString {
		n = 63
	}
	return int(n), nil
}

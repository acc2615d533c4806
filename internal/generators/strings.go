package generators

import (
	"fmt"

	"github.com/mmrzaf/dbfill/internal/domain"
	"github.com/mmrzaf/dbfill/internal/random"
)

// uuidLength is the textual length of a UUID; unique columns at least this
// wide receive UUIDs instead of random strings.
const uuidLength = 36

// StringGenerator covers varchar, char, binary and varbinary columns.
type StringGenerator struct{}

const (
	defaultStringMin = 0
	defaultStringMax = 255
)

func (g *StringGenerator) Generate(rng *random.Randomizer, col *domain.Column, ctx GeneratorContext) (interface{}, error) {
	min, max, err := intBounds(col, defaultStringMin, defaultStringMax)
	if err != nil {
		return nil, err
	}
	upper := capLength(max, ctx.maxCharLength())
	lower := int(min)
	if lower > upper {
		lower = upper
	}
	// An explicit faker kind wins over the UUID rule.
	if col.Options.Faker != "" {
		return fakeString(rng, col.Options.Faker, lower, upper)
	}
	if max >= uuidLength && col.Options.Unique {
		return rng.UUID(), nil
	}
	return rng.StringBetween(lower, upper), nil
}

func (g *StringGenerator) Validate(col *domain.Column) error {
	min, _, err := intBounds(col, defaultStringMin, defaultStringMax)
	if err != nil {
		return err
	}
	if min < 0 {
		return fmt.Errorf("min length must not be negative, got %d", min)
	}
	return validateFaker(col.Options.Faker)
}

// TextGenerator covers text and blob columns: length is uniform in
// [0, min(maxCharLength, max)].
type TextGenerator struct{}

const defaultTextMax = 65535

func (g *TextGenerator) Generate(rng *random.Randomizer, col *domain.Column, ctx GeneratorContext) (interface{}, error) {
	_, max, err := intBounds(col, 0, defaultTextMax)
	if err != nil {
		return nil, err
	}
	upper := capLength(max, ctx.maxCharLength())
	if col.Options.Faker != "" {
		return fakeString(rng, col.Options.Faker, 0, upper)
	}
	return rng.StringBetween(0, upper), nil
}

func (g *TextGenerator) Validate(col *domain.Column) error {
	if _, _, err := intBounds(col, 0, defaultTextMax); err != nil {
		return err
	}
	return validateFaker(col.Options.Faker)
}

type TinyBlobGenerator struct{}

const tinyBlobMax = 10

func (g *TinyBlobGenerator) Generate(rng *random.Randomizer, col *domain.Column, ctx GeneratorContext) (interface{}, error) {
	return rng.StringBetween(0, tinyBlobMax), nil
}

func (g *TinyBlobGenerator) Validate(col *domain.Column) error {
	return nil
}

func capLength(max int64, ceiling int) int {
	if max < 0 {
		return 0
	}
	if max > int64(ceiling) {
		return ceiling
	}
	return int(max)
}

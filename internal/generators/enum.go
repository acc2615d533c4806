package generators

import (
	"errors"

	"github.com/mmrzaf/dbfill/internal/domain"
	"github.com/mmrzaf/dbfill/internal/random"
)

// EnumGenerator picks a member index. Index 0 is the empty value MySQL
// stores for invalid members, so it is only drawn for nullable columns.
type EnumGenerator struct{}

func (g *EnumGenerator) Generate(rng *random.Randomizer, col *domain.Column, ctx GeneratorContext) (interface{}, error) {
	max, err := enumMax(col)
	if err != nil {
		return nil, err
	}
	if col.Options.Nullable {
		return rng.Int(0, max), nil
	}
	return rng.Int(1, max), nil
}

func (g *EnumGenerator) Validate(col *domain.Column) error {
	_, err := enumMax(col)
	return err
}

func enumMax(col *domain.Column) (int64, error) {
	if col.Options.Max == nil {
		return 1, nil
	}
	max, err := col.Options.Max.Int()
	if err != nil {
		return 0, err
	}
	if max < 1 {
		return 0, errors.New("enum max must be at least 1")
	}
	return max, nil
}

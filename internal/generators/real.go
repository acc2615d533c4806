package generators

import (
	"github.com/mmrzaf/dbfill/internal/domain"
	"github.com/mmrzaf/dbfill/internal/random"
)

type RealGenerator struct{}

const (
	defaultRealMin = 0.0
	defaultRealMax = 1000.0
)

func (g *RealGenerator) Generate(rng *random.Randomizer, col *domain.Column, ctx GeneratorContext) (interface{}, error) {
	min, max, err := floatBounds(col, defaultRealMin, defaultRealMax)
	if err != nil {
		return nil, err
	}
	return rng.Float(min, max), nil
}

func (g *RealGenerator) Validate(col *domain.Column) error {
	_, _, err := floatBounds(col, defaultRealMin, defaultRealMax)
	return err
}

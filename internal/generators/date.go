package generators

import (
	"fmt"

	"github.com/mmrzaf/dbfill/internal/domain"
	"github.com/mmrzaf/dbfill/internal/random"
)

// DateGenerator draws an instant in [min, max], defaulting to the unix epoch
// and the current time.
type DateGenerator struct{}

func (g *DateGenerator) Generate(rng *random.Randomizer, col *domain.Column, ctx GeneratorContext) (interface{}, error) {
	min, max, err := timeBounds(col, ctx.now())
	if err != nil {
		return nil, err
	}
	return rng.Date(min, max), nil
}

func (g *DateGenerator) Validate(col *domain.Column) error {
	_, _, err := timeBounds(col, GeneratorContext{}.now())
	return err
}

// TimeGenerator emits TIME literals. min and max bound the hour and default
// to MySQL's [-838, 838]; a time-of-day column uses [0, 23].
type TimeGenerator struct{}

const (
	minTimeHour = -838
	maxTimeHour = 838
)

func (g *TimeGenerator) Generate(rng *random.Randomizer, col *domain.Column, ctx GeneratorContext) (interface{}, error) {
	min, max, err := hourBounds(col)
	if err != nil {
		return nil, err
	}
	return rng.Time(min, max), nil
}

func (g *TimeGenerator) Validate(col *domain.Column) error {
	_, _, err := hourBounds(col)
	return err
}

func hourBounds(col *domain.Column) (int64, int64, error) {
	min, max, err := intBounds(col, minTimeHour, maxTimeHour)
	if err != nil {
		return 0, 0, err
	}
	if min < minTimeHour || max > maxTimeHour {
		return 0, 0, fmt.Errorf("hours must lie in [%d, %d]", minTimeHour, maxTimeHour)
	}
	return min, max, nil
}

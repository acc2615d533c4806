package generators

import (
	"time"

	"github.com/mmrzaf/dbfill/internal/domain"
	"github.com/mmrzaf/dbfill/internal/random"
)

// Generator synthesizes one value for a column. Implementations are stateless;
// all randomness comes from the Randomizer handed in.
type Generator interface {
	Generate(rng *random.Randomizer, col *domain.Column, ctx GeneratorContext) (interface{}, error)
	Validate(col *domain.Column) error
}

type GeneratorContext struct {
	MaxCharLength int
	Now           time.Time
}

func (c GeneratorContext) now() time.Time {
	if c.Now.IsZero() {
		return time.Now()
	}
	return c.Now
}

func (c GeneratorContext) maxCharLength() int {
	if c.MaxCharLength > 0 {
		return c.MaxCharLength
	}
	return domain.DefaultMaxCharLength
}

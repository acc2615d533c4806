package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mmrzaf/dbfill/internal/domain"
	"github.com/mmrzaf/dbfill/internal/generators"
)

type GeneratorRegistry struct {
	mu         sync.RWMutex
	generators map[domain.GeneratorTag]generators.Generator
}

func NewGeneratorRegistry() *GeneratorRegistry {
	return &GeneratorRegistry{
		generators: make(map[domain.GeneratorTag]generators.Generator),
	}
}

func (r *GeneratorRegistry) Register(tag domain.GeneratorTag, gen generators.Generator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generators[tag] = gen
}

func (r *GeneratorRegistry) Get(tag domain.GeneratorTag) (generators.Generator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	gen, ok := r.generators[tag]
	if !ok {
		return nil, fmt.Errorf("generator not found: %s", tag)
	}
	return gen, nil
}

func (r *GeneratorRegistry) List() []domain.GeneratorTag {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]domain.GeneratorTag, 0, len(r.generators))
	for tag := range r.generators {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// DefaultGeneratorRegistry maps every domain.GeneratorTag to its synthesis rule.
func DefaultGeneratorRegistry() *GeneratorRegistry {
	r := NewGeneratorRegistry()

	bits := &generators.BitsGenerator{}
	r.Register(domain.GeneratorBit, bits)
	r.Register(domain.GeneratorSet, bits)

	r.Register(domain.GeneratorTinyInt, generators.TinyIntGenerator)
	r.Register(domain.GeneratorSmallInt, generators.SmallIntGenerator)
	r.Register(domain.GeneratorMediumInt, generators.MediumIntGenerator)
	r.Register(domain.GeneratorInt, generators.IntGenerator)
	r.Register(domain.GeneratorInteger, generators.IntGenerator)
	r.Register(domain.GeneratorBigInt, generators.BigIntGenerator)
	r.Register(domain.GeneratorYear, generators.YearGenerator)

	boolean := &generators.BoolGenerator{}
	r.Register(domain.GeneratorBool, boolean)
	r.Register(domain.GeneratorBoolean, boolean)

	reals := &generators.RealGenerator{}
	r.Register(domain.GeneratorDecimal, reals)
	r.Register(domain.GeneratorDec, reals)
	r.Register(domain.GeneratorFloat, reals)
	r.Register(domain.GeneratorDouble, reals)

	date := &generators.DateGenerator{}
	r.Register(domain.GeneratorDate, date)
	r.Register(domain.GeneratorDateTime, date)
	r.Register(domain.GeneratorTimestamp, date)
	r.Register(domain.GeneratorTime, &generators.TimeGenerator{})

	str := &generators.StringGenerator{}
	r.Register(domain.GeneratorVarchar, str)
	r.Register(domain.GeneratorChar, str)
	r.Register(domain.GeneratorBinary, str)
	r.Register(domain.GeneratorVarbinary, str)

	r.Register(domain.GeneratorTinyBlob, &generators.TinyBlobGenerator{})

	text := &generators.TextGenerator{}
	r.Register(domain.GeneratorText, text)
	r.Register(domain.GeneratorMediumText, text)
	r.Register(domain.GeneratorLongText, text)
	r.Register(domain.GeneratorBlob, text)
	r.Register(domain.GeneratorMediumBlob, text)
	r.Register(domain.GeneratorLongBlob, text)

	r.Register(domain.GeneratorEnum, &generators.EnumGenerator{})
	return r
}

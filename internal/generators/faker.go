package generators

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/go-faker/faker/v4"
	"github.com/mmrzaf/dbfill/internal/random"
)

// Faker kinds draw from faker's package source, which SeedFaker resets.
// faker.Name is avoided: its title set is fixed once per process.
var fakers = map[string]func(rng *random.Randomizer) string{
	"name":       func(*random.Randomizer) string { return faker.FirstName() + " " + faker.LastName() },
	"first_name": func(*random.Randomizer) string { return faker.FirstName() },
	"last_name":  func(*random.Randomizer) string { return faker.LastName() },
	"email":      func(*random.Randomizer) string { return faker.Email() },
	"username":   func(*random.Randomizer) string { return faker.Username() },
	"url":        func(*random.Randomizer) string { return faker.URL() },
	"word":       func(*random.Randomizer) string { return faker.Word() },
	"sentence":   func(*random.Randomizer) string { return faker.Sentence() },
	"paragraph":  func(*random.Randomizer) string { return faker.Paragraph() },
	"phone":      func(*random.Randomizer) string { return faker.Phonenumber() },
	"uuid":       func(rng *random.Randomizer) string { return rng.UUID() },
}

// SeedFaker makes faker output a function of seed. faker keeps one source per
// process, so tables must not be filled concurrently.
func SeedFaker(seed int64) {
	faker.SetRandomSource(faker.NewSafeSource(rand.NewSource(seed)))
}

// FakerKinds lists the supported values of the faker column option.
func FakerKinds() []string {
	kinds := make([]string, 0, len(fakers))
	for k := range fakers {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

func validateFaker(kind string) error {
	if kind == "" {
		return nil
	}
	if _, ok := fakers[kind]; !ok {
		return fmt.Errorf("unknown faker kind: %s", kind)
	}
	return nil
}

// fakeString returns a faker value trimmed to the column length. Values shorter
// than min are padded with random characters.
func fakeString(rng *random.Randomizer, kind string, min, max int) (string, error) {
	fn, ok := fakers[kind]
	if !ok {
		return "", fmt.Errorf("unknown faker kind: %s", kind)
	}
	s := fn(rng)
	if len(s) > max {
		s = s[:max]
	}
	if len(s) < min {
		s += rng.String(min - len(s))
	}
	return s, nil
}

package generators

import (
	"fmt"
	"time"

	"github.com/mmrzaf/dbfill/internal/domain"
)

func intBounds(col *domain.Column, defMin, defMax int64) (int64, int64, error) {
	min, max := defMin, defMax
	if b := col.Options.Min; b != nil {
		v, err := b.Int()
		if err != nil {
			return 0, 0, fmt.Errorf("invalid min: %w", err)
		}
		min = v
	}
	if b := col.Options.Max; b != nil {
		v, err := b.Int()
		if err != nil {
			return 0, 0, fmt.Errorf("invalid max: %w", err)
		}
		max = v
	}
	if max < min {
		return 0, 0, fmt.Errorf("max (%d) must not be lower than min (%d)", max, min)
	}
	return min, max, nil
}

func floatBounds(col *domain.Column, defMin, defMax float64) (float64, float64, error) {
	min, max := defMin, defMax
	if b := col.Options.Min; b != nil {
		v, err := b.Float()
		if err != nil {
			return 0, 0, fmt.Errorf("invalid min: %w", err)
		}
		min = v
	}
	if b := col.Options.Max; b != nil {
		v, err := b.Float()
		if err != nil {
			return 0, 0, fmt.Errorf("invalid max: %w", err)
		}
		max = v
	}
	if max < min {
		return 0, 0, fmt.Errorf("max (%v) must not be lower than min (%v)", max, min)
	}
	return min, max, nil
}

var epoch = time.Unix(0, 0).UTC()

func timeBounds(col *domain.Column, now time.Time) (time.Time, time.Time, error) {
	min, max := epoch, now
	if b := col.Options.Min; b != nil {
		v, err := b.Time(now)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid min: %w", err)
		}
		min = v
	}
	if b := col.Options.Max; b != nil {
		v, err := b.Time(now)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid max: %w", err)
		}
		max = v
	}
	if max.Before(min) {
		return time.Time{}, time.Time{}, fmt.Errorf("max (%s) must not be before min (%s)", max, min)
	}
	return min, max, nil
}

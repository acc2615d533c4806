package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/mmrzaf/dbfill/internal/timeutil"
	"gopkg.in/yaml.v3"
)

// Bound is a column min/max option. It holds either a number or a date
// expression; the text is kept verbatim so large integers keep their precision.
type Bound struct {
	text     string
	isNumber bool
}

func NumberBound(v float64) *Bound {
	return &Bound{text: strconv.FormatFloat(v, 'f', -1, 64), isNumber: true}
}

func IntBound(v int64) *Bound {
	return &Bound{text: strconv.FormatInt(v, 10), isNumber: true}
}

func DateBound(s string) *Bound {
	return &Bound{text: s}
}

func (b *Bound) IsNumber() bool { return b.isNumber }

func (b *Bound) String() string { return b.text }

func (b *Bound) Float() (float64, error) {
	if !b.isNumber {
		return 0, fmt.Errorf("bound %q is not a number", b.text)
	}
	return strconv.ParseFloat(b.text, 64)
}

// Int returns the bound as an integer, clamping values outside the int64 range.
func (b *Bound) Int() (int64, error) {
	if !b.isNumber {
		return 0, fmt.Errorf("bound %q is not a number", b.text)
	}
	if n, err := strconv.ParseInt(b.text, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(b.text, 64)
	if err != nil {
		return 0, err
	}
	switch {
	case f >= math.MaxInt64:
		return math.MaxInt64, nil
	case f <= math.MinInt64:
		return math.MinInt64, nil
	}
	return int64(math.Round(f)), nil
}

// Time interprets the bound as an instant. Numbers are unix seconds.
func (b *Bound) Time(now time.Time) (time.Time, error) {
	if b.isNumber {
		f, err := b.Float()
		if err != nil {
			return time.Time{}, err
		}
		return time.Unix(int64(f), 0).UTC(), nil
	}
	return timeutil.ParseTime(b.text, now)
}

func (b *Bound) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return errors.New("empty bound")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*b = Bound{text: s}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("bound must be a number or a date string: %w", err)
	}
	*b = Bound{text: n.String(), isNumber: true}
	return nil
}

func (b Bound) MarshalJSON() ([]byte, error) {
	if b.isNumber {
		return []byte(b.text), nil
	}
	return json.Marshal(b.text)
}

func (b *Bound) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errors.New("bound must be a scalar")
	}
	switch node.ShortTag() {
	case "!!int", "!!float":
		*b = Bound{text: node.Value, isNumber: true}
	default:
		*b = Bound{text: node.Value}
	}
	return nil
}

func (b Bound) MarshalYAML() (interface{}, error) {
	if b.isNumber {
		tag := "!!float"
		if _, err := strconv.ParseInt(b.text, 10, 64); err == nil {
			tag = "!!int"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: b.text}, nil
	}
	return b.text, nil
}

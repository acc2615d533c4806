package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"

	"gopkg.in/yaml.v3"
)

type ValuesKind int

const (
	ValuesLiteral ValuesKind = iota + 1
	ValuesNamedPool
	ValuesWeighted
)

func (k ValuesKind) String() string {
	switch k {
	case ValuesLiteral:
		return "literal"
	case ValuesNamedPool:
		return "named_pool"
	case ValuesWeighted:
		return "weighted"
	default:
		return "unknown"
	}
}

// Values overrides generator based synthesis for a column. In documents it is
// an array of literals, the name of a schema level pool, or an object mapping
// a literal to its integer weight.
type Values struct {
	Kind    ValuesKind
	Literal []interface{}
	Pool    string
	Weights []WeightedValue
}

type WeightedValue struct {
	Value  string
	Weight int
}

func LiteralValues(values ...interface{}) *Values {
	return &Values{Kind: ValuesLiteral, Literal: values}
}

func NamedPoolValues(name string) *Values {
	return &Values{Kind: ValuesNamedPool, Pool: name}
}

func WeightedValues(weights map[string]int) *Values {
	return &Values{Kind: ValuesWeighted, Weights: sortedWeights(weights)}
}

// Expand resolves the override into the flat pool a row picks from uniformly.
// Weighted entries appear weight times, so each value is drawn with
// probability weight / totalWeight.
func (v *Values) Expand(pools map[string][]interface{}) ([]interface{}, error) {
	switch v.Kind {
	case ValuesLiteral:
		if len(v.Literal) == 0 {
			return nil, errors.New("values list is empty")
		}
		return normalizeNumbers(v.Literal), nil
	case ValuesNamedPool:
		pool, ok := pools[v.Pool]
		if !ok {
			return nil, fmt.Errorf("values pool not found: %s", v.Pool)
		}
		if len(pool) == 0 {
			return nil, fmt.Errorf("values pool is empty: %s", v.Pool)
		}
		return normalizeNumbers(pool), nil
	case ValuesWeighted:
		out := make([]interface{}, 0)
		for _, w := range v.Weights {
			if w.Weight < 0 {
				return nil, fmt.Errorf("negative weight for %q: %d", w.Value, w.Weight)
			}
			for i := 0; i < w.Weight; i++ {
				out = append(out, w.Value)
			}
		}
		if len(out) == 0 {
			return nil, errors.New("total weight is zero")
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown values kind: %d", v.Kind)
	}
}

func (v *Values) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	return v.fromRaw(raw)
}

func (v Values) MarshalJSON() ([]byte, error) {
	raw, err := v.toRaw()
	if err != nil {
		return nil, err
	}
	return json.Marshal(raw)
}

func (v *Values) UnmarshalYAML(node *yaml.Node) error {
	var raw interface{}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	return v.fromRaw(raw)
}

func (v Values) MarshalYAML() (interface{}, error) {
	return v.toRaw()
}

func (v *Values) fromRaw(raw interface{}) error {
	switch val := raw.(type) {
	case []interface{}:
		*v = Values{Kind: ValuesLiteral, Literal: val}
	case string:
		*v = Values{Kind: ValuesNamedPool, Pool: val}
	case map[string]interface{}:
		weights := make(map[string]int, len(val))
		for k, w := range val {
			n, ok := toWeight(w)
			if !ok {
				return fmt.Errorf("weight for %q must be an integer, got %v", k, w)
			}
			weights[k] = n
		}
		*v = Values{Kind: ValuesWeighted, Weights: sortedWeights(weights)}
	default:
		return fmt.Errorf("values must be a list, a pool name or a weight map, got %T", raw)
	}
	return nil
}

func (v Values) toRaw() (interface{}, error) {
	switch v.Kind {
	case ValuesLiteral:
		return v.Literal, nil
	case ValuesNamedPool:
		return v.Pool, nil
	case ValuesWeighted:
		m := make(map[string]int, len(v.Weights))
		for _, w := range v.Weights {
			m[w.Value] = w.Weight
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown values kind: %d", v.Kind)
	}
}

func sortedWeights(weights map[string]int) []WeightedValue {
	keys := make([]string, 0, len(weights))
	for k := range weights {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]WeightedValue, 0, len(keys))
	for _, k := range keys {
		out = append(out, WeightedValue{Value: k, Weight: weights[k]})
	}
	return out
}

func toWeight(v interface{}) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case float64:
		if val != float64(int(val)) {
			return 0, false
		}
		return int(val), true
	default:
		return 0, false
	}
}

// normalizeNumbers turns integral float64 values, as decoded from JSON, back
// into int64 so they bind as integers.
func normalizeNumbers(values []interface{}) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		if f, ok := v.(float64); ok && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			out[i] = int64(f)
			continue
		}
		out[i] = v
	}
	return out
}

package inference

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Skufu/genepredict/internal/schema"
)

// Input holds the raw request fields, keyed by schema.Feature.Key. Absent
// fields take their defaults; a present but unparsable field fails the
// whole request.
type Input map[string]string

// InputError is returned when request values cannot be read as numbers or
// the classifier rejects the assembled vector. No prediction accompanies it.
type InputError struct {
	Field string
	Value string
	Err   error
}

func (e *InputError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("input could not be interpreted as numeric: %v", e.Err)
	}
	return fmt.Sprintf("input could not be interpreted as numeric: %s=%q", e.Field, e.Value)
}

func (e *InputError) Unwrap() error { return e.Err }

// ErrNonFinite rejects NaN and infinities, which strconv accepts as numbers.
var ErrNonFinite = errors.New("value is not finite")

// fieldDefault is the value used when a field is absent. Gender defaults to
// male.
func fieldDefault(f schema.Feature) float64 {
	if f == schema.Gender {
		return 1
	}
	return 0
}

// parse reads every field as its declared numeric kind: gender, family
// history and p53 mutation are integers, everything else a float.
func (in Input) parse() (schema.Vector, error) {
	var raw schema.Vector
	for _, f := range schema.Features() {
		s, ok := in[f.Key()]
		if !ok {
			raw[f] = fieldDefault(f)
			continue
		}
		v, err := parseField(f, strings.TrimSpace(s))
		if err != nil {
			return raw, &InputError{Field: f.Key(), Value: s, Err: err}
		}
		raw[f] = v
	}
	return raw, nil
}

func parseField(f schema.Feature, s string) (float64, error) {
	switch f {
	case schema.Gender, schema.FamilyHistory, schema.P53Mutation:
		n, err := strconv.Atoi(s)
		return float64(n), err
	default:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, err
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, ErrNonFinite
		}
		return v, nil
	}
}

package inference

import (
	"fmt"
	"math"

	"github.com/Skufu/genepredict/internal/schema"
)

// Normalization selects how raw values become classifier features. Training
// and inference must use the same mode; the model artifact records it.
type Normalization string

const (
	// NormalizeClamp divides age by 100 and caps each marker at 1.0 with no
	// lower bound and no rescaling. Raw-scale markers saturate.
	NormalizeClamp Normalization = "clamp"
	// NormalizeScale divides each marker by its clinical maximum and clamps
	// to [0,1].
	NormalizeScale Normalization = "scale"
)

// clinicalMax is the upper end of each marker's plausible raw range.
var clinicalMax = map[schema.Feature]float64{
	schema.Hemoglobin:        20,
	schema.FetalHemoglobin:   40,
	schema.RDWCV:             30,
	schema.SerumFerritin:     300,
	schema.BRCA1Expression:   1.5,
	schema.SweatChloride:     120,
	schema.SickledRBCPercent: 60,
	schema.IL6Level:          40,
}

// ParseNormalization validates a mode name. Empty selects clamp.
func ParseNormalization(s string) (Normalization, error) {
	switch Normalization(s) {
	case "", NormalizeClamp:
		return NormalizeClamp, nil
	case NormalizeScale:
		return NormalizeScale, nil
	default:
		return "", fmt.Errorf("unknown normalization %q (want %s or %s)", s, NormalizeClamp, NormalizeScale)
	}
}

// Apply maps a raw vector to classifier features.
func (n Normalization) Apply(raw schema.Vector) schema.Vector {
	out := raw
	out[schema.Age] = raw[schema.Age] / 100
	for f, limit := range clinicalMax {
		switch n {
		case NormalizeScale:
			out[f] = math.Max(0, math.Min(raw[f]/limit, 1.0))
		default:
			out[f] = math.Min(raw[f], 1.0)
		}
	}
	return out
}

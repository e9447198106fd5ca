package inference

import (
	"fmt"
	"slices"

	"github.com/Skufu/genepredict/internal/schema"
)

// Decision is the classifier's answer as it moves through constraint stages.
type Decision struct {
	Class         schema.Disease
	Confidence    float64
	Probabilities []float64
	// Constraint names the last stage that changed the decision.
	Constraint string
}

// Constraint is a post-hoc domain rule over a decision. raw holds the
// request values before normalization. Apply returns the possibly changed
// decision and whether it fired.
type Constraint interface {
	Name() string
	Apply(raw schema.Vector, d Decision) (Decision, bool)
}

// SexSpecificExclusion forbids Class for patients whose gender field equals
// Gender.
type SexSpecificExclusion struct {
	Class  schema.Disease
	Gender int
}

// MaleBreastCancer is the exclusion applied by default: a male patient is
// never labelled with breast cancer.
var MaleBreastCancer = SexSpecificExclusion{Class: schema.BreastCancer, Gender: 1}

// DefaultConstraints returns the stages every engine runs unless told
// otherwise.
func DefaultConstraints() []Constraint {
	return []Constraint{MaleBreastCancer}
}

func (c SexSpecificExclusion) Name() string {
	return fmt.Sprintf("exclude-class-%d-gender-%d", c.Class, c.Gender)
}

func (c SexSpecificExclusion) Apply(raw schema.Vector, d Decision) (Decision, bool) {
	if d.Class != c.Class || raw[schema.Gender] != float64(c.Gender) {
		return d, false
	}
	probs, best, conf := SuppressClassArgmax(d.Probabilities, int(c.Class))
	if best < 0 {
		return d, false
	}
	return Decision{
		Class:         schema.Disease(best),
		Confidence:    conf,
		Probabilities: probs,
		Constraint:    c.Name(),
	}, true
}

// SuppressClassArgmax zeroes class in a copy of dist and returns the copy,
// the argmax of the remaining classes and that class's probability. The
// remaining probabilities are not renormalized, so the confidence is the
// classifier's own value for the new class. best is -1 when no other class
// exists.
func SuppressClassArgmax(dist []float64, class int) (probs []float64, best int, conf float64) {
	probs = slices.Clone(dist)
	if class >= 0 && class < len(probs) {
		probs[class] = 0
	}
	best = -1
	for i, p := range probs {
		if i == class {
			continue
		}
		if best < 0 || p > probs[best] {
			best = i
		}
	}
	if best < 0 {
		return probs, -1, 0
	}
	return probs, best, probs[best]
}

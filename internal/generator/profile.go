package generator

import (
	"math"
	"math/rand"

	"github.com/Skufu/genepredict/internal/schema"
)

// Distribution samples one marker value.
type Distribution interface {
	Sample(rng *rand.Rand) float64
	Mean() float64
}

// Normal is a Gaussian rounded to two decimals.
type Normal struct {
	Mu, Sigma float64
}

func (n Normal) Sample(rng *rand.Rand) float64 {
	return round2(rng.NormFloat64()*n.Sigma + n.Mu)
}

func (n Normal) Mean() float64 { return n.Mu }

// Bernoulli yields 1 with probability P, else 0.
type Bernoulli struct {
	P float64
}

func (b Bernoulli) Sample(rng *rand.Rand) float64 {
	if rng.Float64() < b.P {
		return 1
	}
	return 0
}

func (b Bernoulli) Mean() float64 { return b.P }

// Constant always yields V and consumes no randomness.
type Constant struct {
	V float64
}

func (c Constant) Sample(*rand.Rand) float64 { return c.V }

func (c Constant) Mean() float64 { return c.V }

// Marker binds a distribution to a feature.
type Marker struct {
	Feature schema.Feature
	Dist    Distribution
}

// Profile holds the baseline markers every class starts from and the
// per-class overrides that give each disease its signature. Markers are
// sampled in slice order, which fixes the random stream for a seed.
type Profile struct {
	Baseline  []Marker
	Overrides map[schema.Disease][]Marker
}

// DefaultProfile is the reference clinical profile. Markers a class does not
// override keep the baseline, so classes overlap on purpose.
func DefaultProfile() Profile {
	return Profile{
		Baseline: []Marker{
			{schema.Hemoglobin, Normal{13.5, 1.2}},
			{schema.FetalHemoglobin, Normal{1.0, 0.5}},
			{schema.RDWCV, Normal{13.5, 1.0}},
			{schema.SerumFerritin, Normal{100, 30}},
			{schema.BRCA1Expression, Normal{0.2, 0.1}},
			{schema.P53Mutation, Constant{0}},
			{schema.SweatChloride, Normal{40, 7}},
			{schema.SickledRBCPercent, Normal{1.0, 0.8}},
			{schema.IL6Level, Normal{5.0, 2.0}},
		},
		Overrides: map[schema.Disease][]Marker{
			schema.Thalassemia: {
				{schema.Hemoglobin, Normal{8.0, 1.2}},
				{schema.FetalHemoglobin, Normal{15, 4}},
				{schema.SerumFerritin, Normal{50, 15}},
				{schema.RDWCV, Normal{17.5, 2.0}},
			},
			schema.Hemophilia: {
				{schema.Hemoglobin, Normal{10.5, 1.2}},
				{schema.SerumFerritin, Normal{120, 20}},
				// overlaps with thalassemia
				{schema.FetalHemoglobin, Normal{5, 3}},
				{schema.RDWCV, Normal{14.0, 1.0}},
			},
			schema.BreastCancer: {
				{schema.BRCA1Expression, Normal{0.75, 0.15}},
				{schema.P53Mutation, Bernoulli{0.7}},
				{schema.IL6Level, Normal{20, 5}},
			},
			schema.SickleCellAnemia: {
				{schema.Hemoglobin, Normal{7.0, 1.0}},
				{schema.FetalHemoglobin, Normal{18, 4}},
				{schema.SickledRBCPercent, Normal{30, 6}},
				{schema.RDWCV, Normal{18, 2.0}},
			},
			schema.CysticFibrosis: {
				{schema.SweatChloride, Normal{70, 6}},
				{schema.IL6Level, Normal{18, 4}},
				{schema.SerumFerritin, Normal{130, 25}},
			},
		},
	}
}

// Expected returns the configured mean of f for class d.
func (p Profile) Expected(d schema.Disease, f schema.Feature) (float64, bool) {
	for _, m := range p.Overrides[d] {
		if m.Feature == f {
			return m.Dist.Mean(), true
		}
	}
	for _, m := range p.Baseline {
		if m.Feature == f {
			return m.Dist.Mean(), true
		}
	}
	return 0, false
}

func round2(v float64) float64 {
	r := math.Round(v*100) / 100
	if r == 0 {
		return 0 // drop negative zero
	}
	return r
}

// Package generator samples labeled synthetic patient records, one disease
// class at a time, with controlled label noise.
package generator

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/Skufu/genepredict/internal/schema"
)

// Reference configuration.
const (
	DefaultSamplesPerClass = 200
	DefaultLabelNoise      = 0.05
	DefaultSeed            = 42

	familyHistoryRate = 0.4
	minAge, maxAge    = 10, 70
)

// Config controls the size and noise of a generation run.
type Config struct {
	SamplesPerClass int
	LabelNoise      float64
	Seed            int64
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		SamplesPerClass: DefaultSamplesPerClass,
		LabelNoise:      DefaultLabelNoise,
		Seed:            DefaultSeed,
	}
}

func (c Config) Validate() error {
	if c.SamplesPerClass <= 0 {
		return fmt.Errorf("samples per class must be positive, got %d", c.SamplesPerClass)
	}
	if c.LabelNoise < 0 || c.LabelNoise >= 1 {
		return fmt.Errorf("label noise must be in [0,1), got %v", c.LabelNoise)
	}
	return nil
}

// Row is one sampled patient. Class is the disease the row was drawn for;
// Label is the recorded label after noise.
type Row struct {
	Class    schema.Disease
	Label    schema.Disease
	Features schema.Vector
}

// Noisy reports whether label noise changed the row's label.
func (r Row) Noisy() bool { return r.Class != r.Label }

// Generator draws rows from a Profile using a caller-owned random source.
// It is not safe for concurrent use.
type Generator struct {
	cfg     Config
	labels  *schema.LabelTable
	profile Profile
	rng     *rand.Rand
	log     logrus.FieldLogger
}

// Option customises a Generator.
type Option func(*Generator)

// WithProfile replaces the default clinical profile.
func WithProfile(p Profile) Option { return func(g *Generator) { g.profile = p } }

// WithLogger routes progress logs to l.
func WithLogger(l logrus.FieldLogger) Option { return func(g *Generator) { g.log = l } }

// New creates a generator. rng is the only source of randomness, so a
// fixed seed gives identical output.
func New(cfg Config, labels *schema.LabelTable, rng *rand.Rand, opts ...Option) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if labels.Len() < 2 && cfg.LabelNoise > 0 {
		return nil, fmt.Errorf("label noise needs at least two classes")
	}
	g := &Generator{
		cfg:     cfg,
		labels:  labels,
		profile: DefaultProfile(),
		rng:     rng,
		log:     logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(g)
	}
	return g, nil
}

// NewSeeded creates a generator with a fresh source seeded from cfg.Seed.
func NewSeeded(cfg Config, labels *schema.LabelTable, opts ...Option) (*Generator, error) {
	return New(cfg, labels, rand.New(rand.NewSource(cfg.Seed)), opts...)
}

// Generate produces SamplesPerClass rows for every class, grouped by class
// in ascending code order.
func (g *Generator) Generate() []Row {
	rows := make([]Row, 0, g.cfg.SamplesPerClass*g.labels.Len())
	for _, d := range g.labels.Diseases() {
		rows = append(rows, g.GenerateClass(d)...)
	}
	return rows
}

// GenerateClass produces SamplesPerClass rows drawn for class d.
func (g *Generator) GenerateClass(d schema.Disease) []Row {
	rows := make([]Row, g.cfg.SamplesPerClass)
	noisy := 0
	for i := range rows {
		rows[i] = g.sample(d)
		if rows[i].Noisy() {
			noisy++
		}
	}
	name, _ := g.labels.Name(d)
	g.log.WithFields(logrus.Fields{
		"disease": name,
		"rows":    len(rows),
		"noisy":   noisy,
	}).Debug("generated class")
	return rows
}

func (g *Generator) sample(d schema.Disease) Row {
	var v schema.Vector
	v[schema.Age] = float64(minAge + g.rng.Intn(maxAge-minAge))
	v[schema.Gender] = float64(g.rng.Intn(2))
	v[schema.FamilyHistory] = Bernoulli{familyHistoryRate}.Sample(g.rng)

	for _, m := range g.profile.Baseline {
		v[m.Feature] = m.Dist.Sample(g.rng)
	}
	for _, m := range g.profile.Overrides[d] {
		v[m.Feature] = m.Dist.Sample(g.rng)
	}

	return Row{Class: d, Label: g.noisyLabel(d), Features: v}
}

// noisyLabel keeps d except with probability LabelNoise, when it picks one
// of the other classes uniformly.
func (g *Generator) noisyLabel(d schema.Disease) schema.Disease {
	if g.rng.Float64() >= g.cfg.LabelNoise {
		return d
	}
	other := schema.Disease(g.rng.Intn(g.labels.Len() - 1))
	if other >= d {
		other++
	}
	return other
}

// GenerationError reports that a generated dataset could not be persisted.
// Generation itself cannot fail; only the output can.
type GenerationError struct {
	Path string
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("write dataset %s: %v", e.Path, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Package inference turns raw request fields into a feature vector, queries
// a classifier and applies domain constraints before a label is emitted.
package inference

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Skufu/genepredict/internal/classifier"
	"github.com/Skufu/genepredict/internal/schema"
)

// Prediction is the engine's final answer for one request.
type Prediction struct {
	Disease       schema.Disease
	Label         string
	Confidence    float64
	Probabilities []float64
	// Constraint is empty when the classifier's answer passed through.
	Constraint string
	// Features is the normalized vector the classifier saw.
	Features schema.Vector
}

// Engine is stateless between calls and safe for concurrent use as long as
// its classifier is.
type Engine struct {
	clf         classifier.Classifier
	labels      *schema.LabelTable
	norm        Normalization
	constraints []Constraint
	log         logrus.FieldLogger
}

// Option customises an Engine.
type Option func(*Engine)

// WithNormalization selects the feature normalization. It must match the
// mode the classifier was trained with.
func WithNormalization(n Normalization) Option { return func(e *Engine) { e.norm = n } }

// WithConstraints replaces the default constraint stages.
func WithConstraints(cs ...Constraint) Option { return func(e *Engine) { e.constraints = cs } }

// WithLogger routes engine logs to l.
func WithLogger(l logrus.FieldLogger) Option { return func(e *Engine) { e.log = l } }

// NewEngine wires a classifier to the shared label table.
func NewEngine(clf classifier.Classifier, labels *schema.LabelTable, opts ...Option) *Engine {
	e := &Engine{
		clf:         clf,
		labels:      labels,
		norm:        NormalizeClamp,
		constraints: DefaultConstraints(),
		log:         logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Features parses and normalizes in without querying the classifier.
func (e *Engine) Features(in Input) (raw, features schema.Vector, err error) {
	raw, err = in.parse()
	if err != nil {
		return raw, features, err
	}
	return raw, e.norm.Apply(raw), nil
}

// Predict runs one request through parsing, the classifier and every
// constraint. Any failure is an *InputError and no prediction is returned.
func (e *Engine) Predict(in Input) (*Prediction, error) {
	raw, features, err := e.Features(in)
	if err != nil {
		return nil, err
	}

	d, err := e.classify(features)
	if err != nil {
		return nil, &InputError{Err: err}
	}

	for _, c := range e.constraints {
		next, fired := c.Apply(raw, d)
		if !fired {
			continue
		}
		e.log.WithFields(logrus.Fields{
			"constraint": c.Name(),
			"from":       int(d.Class),
			"to":         int(next.Class),
		}).Debug("constraint overrode prediction")
		d = next
	}

	name, ok := e.labels.Name(d.Class)
	if !ok {
		return nil, &InputError{Err: fmt.Errorf("classifier returned unknown class %d", d.Class)}
	}
	return &Prediction{
		Disease:       d.Class,
		Label:         name,
		Confidence:    d.Confidence,
		Probabilities: d.Probabilities,
		Constraint:    d.Constraint,
		Features:      features,
	}, nil
}

func (e *Engine) classify(features schema.Vector) (Decision, error) {
	X := [][]float64{features.Slice()}

	proba, err := e.clf.PredictProba(X)
	if err != nil {
		return Decision{}, err
	}
	// KNN.Predict is the argmax of its vote shares; asking it separately
	// would scan the training set a second time.
	var pred []int
	if _, ok := e.clf.(*classifier.KNN); ok && len(proba) == 1 {
		pred = []int{classifier.Argmax(proba[0])}
	} else if pred, err = e.clf.Predict(X); err != nil {
		return Decision{}, err
	}
	if len(pred) != 1 || len(proba) != 1 {
		return Decision{}, fmt.Errorf("classifier returned %d predictions for one row", len(pred))
	}
	if len(proba[0]) != e.labels.Len() {
		return Decision{}, fmt.Errorf("classifier returned %d probabilities, want %d", len(proba[0]), e.labels.Len())
	}

	class := schema.Disease(pred[0])
	if !e.labels.Valid(class) {
		return Decision{}, fmt.Errorf("classifier returned unknown class %d", pred[0])
	}
	return Decision{
		Class:         class,
		Confidence:    proba[0][class],
		Probabilities: proba[0],
	}, nil
}

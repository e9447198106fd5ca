// Package schema defines the positional feature layout shared by dataset
// generation, training and inference.
package schema

// Feature identifies one column of the feature vector. Its value is the
// column's position.
type Feature int

const (
	Age Feature = iota
	Gender
	FamilyHistory
	Hemoglobin
	FetalHemoglobin
	RDWCV
	SerumFerritin
	BRCA1Expression
	P53Mutation
	SweatChloride
	SickledRBCPercent
	IL6Level

	// NumFeatures is the width of every feature vector.
	NumFeatures = int(IL6Level) + 1
)

// Vector is one feature row in schema order.
type Vector [NumFeatures]float64

type featureDef struct {
	key     string
	column  string
	integer bool
}

var defs = [NumFeatures]featureDef{
	Age:               {key: "age", column: "Age", integer: true},
	Gender:            {key: "gender", column: "Gender", integer: true},
	FamilyHistory:     {key: "family_history", column: "Family_History", integer: true},
	Hemoglobin:        {key: "hemoglobin", column: "Hemoglobin"},
	FetalHemoglobin:   {key: "fetal_hemoglobin", column: "Fetal_Hemoglobin"},
	RDWCV:             {key: "rdw_cv", column: "RDW_CV"},
	SerumFerritin:     {key: "serum_ferritin", column: "Serum_Ferritin"},
	BRCA1Expression:   {key: "brca1_expression", column: "BRCA1_Expression"},
	P53Mutation:       {key: "p53_mutation", column: "p53_Mutation", integer: true},
	SweatChloride:     {key: "sweat_chloride", column: "Sweat_Chloride"},
	SickledRBCPercent: {key: "sickled_rbc_percent", column: "Sickled_RBC_Percent"},
	IL6Level:          {key: "il6_level", column: "IL6_Level"},
}

// LabelColumn is the dataset column holding the disease code.
const LabelColumn = "Disease"

// Features lists every feature in vector order.
func Features() []Feature {
	out := make([]Feature, NumFeatures)
	for i := range out {
		out[i] = Feature(i)
	}
	return out
}

// Key is the request field name for the feature.
func (f Feature) Key() string { return defs[f].key }

// Column is the dataset header name for the feature.
func (f Feature) Column() string { return defs[f].column }

// Integer reports whether the feature is stored as a whole number.
func (f Feature) Integer() bool { return defs[f].integer }

func (f Feature) String() string { return f.Key() }

// Columns returns the full dataset header: feature columns then the label.
func Columns() []string {
	cols := make([]string, 0, NumFeatures+1)
	for _, f := range Features() {
		cols = append(cols, f.Column())
	}
	return append(cols, LabelColumn)
}

// FeatureColumns returns only the feature part of the header.
func FeatureColumns() []string {
	return Columns()[:NumFeatures]
}

// Slice copies v into a fresh slice, the row form classifiers consume.
func (v Vector) Slice() []float64 {
	out := make([]float64, NumFeatures)
	copy(out, v[:])
	return out
}

// VectorFromSlice converts a classifier row back into a Vector. ok is false
// when the width does not match the schema.
func VectorFromSlice(row []float64) (v Vector, ok bool) {
	if len(row) != NumFeatures {
		return v, false
	}
	copy(v[:], row)
	return v, true
}

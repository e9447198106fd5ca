// Package catalog holds reference information shown next to predictions.
package catalog

import "github.com/Skufu/genepredict/internal/schema"

type Disease struct {
	ID                 schema.Disease `json:"id"`
	Name               string         `json:"name"`
	Description        string         `json:"description"`
	InheritancePattern string         `json:"inheritancePattern"`
	GeneInvolved       string         `json:"geneInvolved"`
	Prevalence         string         `json:"prevalence"`
	Symptoms           []string       `json:"symptoms"`
	RiskFactors        []string       `json:"riskFactors"`
}

var entries = map[schema.Disease]Disease{
	schema.Thalassemia: {
		Description:        "A blood disorder involving less than normal amounts of an oxygen-carrying protein.",
		InheritancePattern: "Autosomal recessive",
		GeneInvolved:       "HBB, HBA1, HBA2",
		Prevalence:         "Common in Mediterranean, South Asian populations",
		Symptoms:           []string{"Fatigue", "Pale skin", "Shortness of breath"},
		RiskFactors:        []string{"Family history", "Certain ethnic backgrounds"},
	},
	schema.Hemophilia: {
		Description:        "A disorder in which blood doesn't clot normally.",
		InheritancePattern: "X-linked recessive",
		GeneInvolved:       "F8, F9",
		Prevalence:         "Rare, mostly males",
		Symptoms:           []string{"Excessive bleeding", "Easy bruising", "Joint pain"},
		RiskFactors:        []string{"Family history", "Male gender"},
	},
	schema.BreastCancer: {
		Description:        "A cancer that forms in the cells of the breasts.",
		InheritancePattern: "Multifactorial",
		GeneInvolved:       "BRCA1, BRCA2",
		Prevalence:         "Common worldwide",
		Symptoms:           []string{"Lump in breast", "Change in breast shape", "Skin changes"},
		RiskFactors:        []string{"Family history", "BRCA mutations", "Age"},
	},
	schema.SickleCellAnemia: {
		Description:        "A group of inherited red blood cell disorders.",
		InheritancePattern: "Autosomal recessive",
		GeneInvolved:       "HBB",
		Prevalence:         "Common in African, Mediterranean populations",
		Symptoms:           []string{"Pain episodes", "Anemia", "Swelling in hands/feet"},
		RiskFactors:        []string{"Family history", "Certain ethnic backgrounds"},
	},
	schema.CysticFibrosis: {
		Description:        "A disorder that causes severe damage to the lungs and digestive system.",
		InheritancePattern: "Autosomal recessive",
		GeneInvolved:       "CFTR",
		Prevalence:         "Rare, mostly Caucasians",
		Symptoms:           []string{"Persistent cough", "Frequent lung infections", "Poor growth"},
		RiskFactors:        []string{"Family history", "Northern European descent"},
	},
}

// Catalog resolves disease details through the shared label table so ids
// and names always agree with predictions.
type Catalog struct {
	labels *schema.LabelTable
}

func New(labels *schema.LabelTable) *Catalog {
	return &Catalog{labels: labels}
}

// List returns every known disease in code order.
func (c *Catalog) List() []Disease {
	out := make([]Disease, 0, c.labels.Len())
	for _, d := range c.labels.Diseases() {
		if info, ok := c.Get(d); ok {
			out = append(out, info)
		}
	}
	return out
}

// Get returns the entry for d.
func (c *Catalog) Get(d schema.Disease) (Disease, bool) {
	name, ok := c.labels.Name(d)
	if !ok {
		return Disease{}, false
	}
	info, ok := entries[d]
	if !ok {
		return Disease{}, false
	}
	info.ID = d
	info.Name = name
	return info, true
}

package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Skufu/genepredict/internal/classifier"
	"github.com/Skufu/genepredict/internal/inference"
	"github.com/Skufu/genepredict/internal/schema"
)

type predictOutput struct {
	Disease    int     `json:"disease"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Constraint string  `json:"constraint,omitempty"`
}

func newPredictCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Run one prediction against a trained model",
		Example: `  genectl predict --model model.json --set gender=1 --set brca1_expression=0.8`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := cmd.Flags().GetStringToString("set")
			if err != nil {
				return err
			}
			return runPredict(cmd, v, fields)
		},
	}

	cmd.Flags().String("model", "model.json", "Model artifact path")
	cmd.Flags().StringToString("set", nil, "Request field as key=value (repeatable)")

	v.BindPFlag("predict.model", cmd.Flags().Lookup("model"))
	return cmd
}

func runPredict(cmd *cobra.Command, v *viper.Viper, fields map[string]string) error {
	artifact, err := classifier.LoadArtifact(v.GetString("predict.model"))
	if err != nil {
		return err
	}
	norm, err := inference.ParseNormalization(artifact.Normalization)
	if err != nil {
		return err
	}
	model, err := artifact.Model(schema.FeatureColumns())
	if err != nil {
		return err
	}

	known := map[string]bool{}
	for _, f := range schema.Features() {
		known[f.Key()] = true
	}
	for k := range fields {
		if !known[k] {
			return fmt.Errorf("unknown field %q", k)
		}
	}

	engine := inference.NewEngine(model, schema.DefaultLabels(), inference.WithNormalization(norm))
	pred, err := engine.Predict(inference.Input(fields))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(predictOutput{
		Disease:    int(pred.Disease),
		Label:      pred.Label,
		Confidence: pred.Confidence,
		Constraint: pred.Constraint,
	})
}

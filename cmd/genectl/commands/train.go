package commands

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Skufu/genepredict/internal/classifier"
	"github.com/Skufu/genepredict/internal/dataset"
	"github.com/Skufu/genepredict/internal/inference"
	"github.com/Skufu/genepredict/internal/schema"
)

func newTrainCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the reference classifier from a dataset",
		Long: `Read a generated dataset, normalize every row exactly as the inference
engine normalizes requests, report held-out accuracy and save a model
artifact fitted on the full dataset.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrain(v)
		},
	}

	cmd.Flags().String("data", "genetic_disease_dataset.csv", "Dataset CSV path")
	cmd.Flags().StringP("output", "o", "model.json", "Model artifact path")
	cmd.Flags().Int("k", 7, "Neighbours consulted per prediction")
	cmd.Flags().String("normalization", string(inference.NormalizeClamp), "Feature normalization (clamp, scale)")
	cmd.Flags().Float64("test-ratio", 0.2, "Share of rows held out for evaluation")
	cmd.Flags().Int64("seed", 42, "Seed for the train/test shuffle")

	v.BindPFlag("train.data", cmd.Flags().Lookup("data"))
	v.BindPFlag("train.output", cmd.Flags().Lookup("output"))
	v.BindPFlag("train.k", cmd.Flags().Lookup("k"))
	v.BindPFlag("train.normalization", cmd.Flags().Lookup("normalization"))
	v.BindPFlag("train.test_ratio", cmd.Flags().Lookup("test-ratio"))
	v.BindPFlag("train.seed", cmd.Flags().Lookup("seed"))
	return cmd
}

func runTrain(v *viper.Viper) error {
	labels := schema.DefaultLabels()

	norm, err := inference.ParseNormalization(v.GetString("train.normalization"))
	if err != nil {
		return err
	}
	testRatio := v.GetFloat64("train.test_ratio")
	if testRatio < 0 || testRatio >= 1 {
		return fmt.Errorf("test ratio must be in [0,1), got %v", testRatio)
	}

	records, err := dataset.ReadFile(v.GetString("train.data"), labels)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	for i := range records {
		records[i].Features = norm.Apply(records[i].Features)
	}
	X, y := dataset.Matrix(records)

	k := v.GetInt("train.k")
	rng := rand.New(rand.NewSource(v.GetInt64("train.seed")))
	XTrain, XTest, yTrain, yTest := classifier.TrainTestSplit(X, y, testRatio, rng)

	fields := logrus.Fields{"rows": len(X), "k": k, "normalization": norm}
	if len(XTest) > 0 {
		eval := classifier.NewKNN(k, labels.Len())
		if err := eval.Fit(XTrain, yTrain); err != nil {
			return fmt.Errorf("fit: %w", err)
		}
		pred, err := eval.Predict(XTest)
		if err != nil {
			return fmt.Errorf("evaluate: %w", err)
		}
		fields["test_rows"] = len(XTest)
		fields["accuracy"] = fmt.Sprintf("%.3f", classifier.Accuracy(yTest, pred))
	}

	model := classifier.NewKNN(k, labels.Len())
	if err := model.Fit(X, y); err != nil {
		return fmt.Errorf("fit: %w", err)
	}
	artifact, err := classifier.NewArtifact(model, schema.FeatureColumns(), string(norm))
	if err != nil {
		return err
	}
	out := v.GetString("train.output")
	if err := artifact.Save(out); err != nil {
		return err
	}

	fields["path"] = out
	logrus.WithFields(fields).Info("model trained")
	return nil
}

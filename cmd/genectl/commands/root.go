// Package commands implements the genectl command tree: dataset generation,
// model training and one-off predictions.
package commands

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "GENEPREDICT"

// NewRootCommand builds the CLI. Flags are bound into a fresh viper
// instance, so values may also come from GENEPREDICT_* variables or a
// --config file.
func NewRootCommand() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:   "genectl",
		Short: "Generate synthetic genetic-disease datasets, train and query models",
		Long: `genectl produces the synthetic training set for the disease predictor,
trains the reference nearest-neighbour model from it, and runs single
predictions through the same constrained inference path the server uses.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(v); err != nil {
				return err
			}
			return setupLogging(v)
		},
	}

	root.PersistentFlags().String("config", "", "Configuration file path")
	root.PersistentFlags().String("log-level", "info", "Logging level (debug, info, warn, error)")
	root.PersistentFlags().Bool("json-logs", false, "Use JSON log format")

	v.BindPFlag("config", root.PersistentFlags().Lookup("config"))
	v.BindPFlag("log_level", root.PersistentFlags().Lookup("log-level"))
	v.BindPFlag("json_logs", root.PersistentFlags().Lookup("json-logs"))

	root.AddCommand(newGenerateCommand(v), newTrainCommand(v), newPredictCommand(v))
	return root
}

func loadConfig(v *viper.Viper) error {
	if configFile := v.GetString("config"); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return nil
}

func setupLogging(v *viper.Viper) error {
	level, err := logrus.ParseLevel(v.GetString("log_level"))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	logrus.SetLevel(level)
	if v.GetBool("json_logs") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}

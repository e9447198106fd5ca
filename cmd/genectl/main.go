package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/Skufu/genepredict/cmd/genectl/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

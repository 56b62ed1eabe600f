package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"vellum/pkg/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if logger := logging.L(); logger.Core().Enabled(zap.ErrorLevel) {
			logger.Error("Command failed", zap.Error(err))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

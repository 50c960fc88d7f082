package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/temirov/fstree/internal/cli"
	"github.com/temirov/fstree/internal/utils"
)

const (
	loggerInitializationFailedFormat  = "failed to initialize logger: %w"
	applicationExecutionFailedMessage = "application execution failed"
)

// main is the entry point for the fstree command.
func main() {
	loggerInstance, loggerInitializationError := utils.NewApplicationLogger()
	if loggerInitializationError != nil {
		panic(fmt.Errorf(loggerInitializationFailedFormat, loggerInitializationError))
	}
	defer func() { _ = loggerInstance.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if applicationExecutionError := cli.Execute(ctx); applicationExecutionError != nil {
		stop()
		loggerInstance.Fatal(applicationExecutionFailedMessage, zap.Error(applicationExecutionError))
	}
}

// Package cli provides the command line interface.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/fstree/internal/services/clipboard"
	"github.com/temirov/fstree/internal/utils"
)

const (
	verboseFlagName        = "verbose"
	verboseFlagDescription = "log debug details to stderr"
	versionTemplate        = "fstree version: {{.Version}}\n"
	rootUse                = "fstree"
	rootShortDescription   = "fstree command line interface"
	rootLongDescription    = `fstree builds an in-memory tree of a directory hierarchy and renders it.
Paths are pruned with glob exclude patterns, .ignore and .gitignore files.
Use --format to select raw, outline, debug, json, or xml output, and --version to print the application version.`
)

// environment carries the collaborators commands use, so tests can substitute them.
type environment struct {
	stdout           io.Writer
	stderr           io.Writer
	fileSystem       afero.Fs
	copier           clipboard.Copier
	workingDirectory string
	homeDirectory    string
	logger           *zap.Logger
}

func defaultEnvironment() *environment {
	return &environment{
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		fileSystem: afero.NewOsFs(),
		copier:     clipboard.NewService(),
	}
}

// Execute runs the fstree application with the process arguments.
func Execute(ctx context.Context) error {
	env := defaultEnvironment()
	rootCommand := createRootCommand(env)
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, os.Args[1:]))
	defer env.syncLogger()
	return rootCommand.ExecuteContext(ctx)
}

// createRootCommand builds the root Cobra command.
func createRootCommand(env *environment) *cobra.Command {
	var verbose bool

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		Version:       utils.GetApplicationVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return env.ensureLogger(verbose)
		},
	}
	rootCommand.SetVersionTemplate(versionTemplate)
	rootCommand.SetOut(env.stdout)
	rootCommand.SetErr(env.stderr)
	registerBooleanFlag(rootCommand.PersistentFlags(), &verbose, verboseFlagName, false, verboseFlagDescription)
	rootCommand.AddCommand(
		createTreeCommand(env),
		createInitCommand(env),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

func (env *environment) ensureLogger(verbose bool) error {
	if env.logger != nil {
		return nil
	}
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	logger, loggerError := utils.NewApplicationLoggerAtLevel(level)
	if loggerError != nil {
		return loggerError
	}
	env.logger = logger
	return nil
}

func (env *environment) syncLogger() {
	if env.logger != nil {
		_ = env.logger.Sync()
	}
}

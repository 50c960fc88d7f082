package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/fstree/internal/config"
	"github.com/temirov/fstree/internal/types"
)

const (
	initUse                    = types.CommandInit
	initShortDescription       = "write a default configuration file"
	initLongDescription        = `Write the default configuration to ./.fstree.yaml, or to ~/.fstree/config.yaml with --global.`
	globalFlagName             = "global"
	globalFlagDescription      = "write the global configuration file"
	forceFlagName              = "force"
	forceFlagDescription       = "overwrite an existing configuration file"
	initializedMessageTemplate = "configuration written to %s\n"
)

func createInitCommand(env *environment) *cobra.Command {
	var global bool
	var force bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			writtenPath, initError := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            force,
				WorkingDirectory: env.workingDirectory,
				HomeDirectory:    env.homeDirectory,
				Fs:               env.fileSystem,
			})
			if initError != nil {
				return initError
			}
			_, writeError := fmt.Fprintf(env.stdout, initializedMessageTemplate, writtenPath)
			return writeError
		},
	}
	registerBooleanFlag(initCommand.Flags(), &global, globalFlagName, false, globalFlagDescription)
	registerBooleanFlag(initCommand.Flags(), &force, forceFlagName, false, forceFlagDescription)
	return initCommand
}

package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/fstree/internal/commands"
	"github.com/temirov/fstree/internal/config"
	"github.com/temirov/fstree/internal/output"
	"github.com/temirov/fstree/internal/types"
)

const (
	exclusionFlagName     = "e"
	noGitignoreFlagName   = "no-gitignore"
	noIgnoreFlagName      = "no-ignore"
	includeGitFlagName    = "git"
	formatFlagName        = "format"
	summaryFlagName       = "summary"
	sortByDepthFlagName   = "sort-by-depth"
	copyFlagName          = "copy"
	configFlagName        = "config"
	defaultPath           = "."
	defaultOutputFormat   = types.FormatRaw
	defaultSummaryEnabled = true

	treeUse              = "tree [paths...]"
	treeAlias            = "t"
	treeShortDescription = "display directory tree (" + treeAlias + ")"
	// treeLongDescription provides detailed help for the tree command.
	treeLongDescription = `Build and render the directory tree of one or more paths.
Flags override values from the configuration files.`
	// treeUsageExample demonstrates tree command usage.
	treeUsageExample = `  # Render the tree in JSON format
  fstree tree --format json ./cmd

  # Exclude vendor directories at any depth and a nested build directory
  fstree tree -e vendor -e web/build .`

	exclusionFlagDescription        = "exclude path pattern"
	disableGitignoreFlagDescription = "do not use .gitignore"
	disableIgnoreFlagDescription    = "do not use .ignore"
	includeGitFlagDescription       = "include git directory"
	formatFlagDescription           = "output format: raw, outline, debug, json, or xml"
	summaryFlagDescription          = "include summary of resulting files"
	sortByDepthFlagDescription      = "buffer entries and insert them shallowest first"
	copyFlagDescription             = "copy the rendered output to the system clipboard"
	configFlagDescription           = "configuration file to use instead of ./.fstree.yaml"

	invalidFormatMessage        = "invalid format value '%s'"
	errorLoadConfigFormat       = "loading configuration: %w"
	errorAbsolutePathFormat     = "abs failed for '%s': %w"
	errorPathMissingFormat      = "path '%s' does not exist"
	errorStatFormat             = "stat failed for '%s': %w"
	errorIgnorePatternsFormat   = "loading ignore patterns for %s: %w"
	clipboardFailureMessage     = "copying output to clipboard failed"
	builtTreeMessage            = "built tree"
	treeRootLogField            = "root"
	treeIgnorePatternsLogField  = "ignore_patterns"
	treeRootCountLogField       = "roots"
	renderedOutputMessage       = "rendered output"
	renderedOutputFormatLogName = "format"
)

// treeOptions stores the flag values of the tree command.
type treeOptions struct {
	exclusionPatterns []string
	disableGitignore  bool
	disableIgnoreFile bool
	includeGit        bool
	format            string
	summary           bool
	sortByDepth       bool
	copyToClipboard   bool
	configPath        string
}

// treeSettings is the effective configuration after flags are applied over the files.
type treeSettings struct {
	exclusionPatterns []string
	useGitignore      bool
	useIgnoreFile     bool
	includeGit        bool
	format            string
	summary           bool
	sortByDepth       bool
	copyToClipboard   bool
}

// validatedPath is an absolute input path that already passed existence checks.
type validatedPath struct {
	absolutePath string
	isDir        bool
}

// isSupportedFormat reports whether the provided format is recognized.
func isSupportedFormat(format string) bool {
	switch format {
	case types.FormatRaw, types.FormatOutline, types.FormatDebug, types.FormatJSON, types.FormatXML:
		return true
	default:
		return false
	}
}

// createTreeCommand returns the tree subcommand.
func createTreeCommand(env *environment) *cobra.Command {
	var options treeOptions

	treeCommand := &cobra.Command{
		Use:     treeUse,
		Aliases: []string{treeAlias},
		Short:   treeShortDescription,
		Long:    treeLongDescription,
		Example: treeUsageExample,
		Args:    cobra.ArbitraryArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			if len(arguments) == 0 {
				arguments = []string{defaultPath}
			}
			return runTree(command, env, options, arguments)
		},
	}

	flags := treeCommand.Flags()
	flags.StringArrayVarP(&options.exclusionPatterns, exclusionFlagName, exclusionFlagName, nil, exclusionFlagDescription)
	registerBooleanFlag(flags, &options.disableGitignore, noGitignoreFlagName, false, disableGitignoreFlagDescription)
	registerBooleanFlag(flags, &options.disableIgnoreFile, noIgnoreFlagName, false, disableIgnoreFlagDescription)
	registerBooleanFlag(flags, &options.includeGit, includeGitFlagName, false, includeGitFlagDescription)
	flags.StringVar(&options.format, formatFlagName, defaultOutputFormat, formatFlagDescription)
	registerBooleanFlag(flags, &options.summary, summaryFlagName, defaultSummaryEnabled, summaryFlagDescription)
	registerBooleanFlag(flags, &options.sortByDepth, sortByDepthFlagName, false, sortByDepthFlagDescription)
	registerBooleanFlag(flags, &options.copyToClipboard, copyFlagName, false, copyFlagDescription)
	flags.StringVar(&options.configPath, configFlagName, "", configFlagDescription)
	return treeCommand
}

// resolveTreeSettings applies explicitly set flags over the configuration file values.
func resolveTreeSettings(flags *pflag.FlagSet, options treeOptions, configuration config.TreeConfiguration) treeSettings {
	settings := treeSettings{
		format:          configuration.Format,
		summary:         config.BoolOrDefault(configuration.Summary, defaultSummaryEnabled),
		sortByDepth:     config.BoolOrDefault(configuration.SortByDepth, false),
		copyToClipboard: config.BoolOrDefault(configuration.Clipboard, false),
		useGitignore:    config.BoolOrDefault(configuration.Paths.UseGitignore, true),
		useIgnoreFile:   config.BoolOrDefault(configuration.Paths.UseIgnoreFile, true),
		includeGit:      config.BoolOrDefault(configuration.Paths.IncludeGit, false),
	}
	settings.exclusionPatterns = append(append([]string{}, configuration.Paths.Exclude...), options.exclusionPatterns...)
	if flags.Changed(formatFlagName) || settings.format == "" {
		settings.format = options.format
	}
	settings.format = strings.ToLower(strings.TrimSpace(settings.format))
	if flags.Changed(summaryFlagName) {
		settings.summary = options.summary
	}
	if flags.Changed(sortByDepthFlagName) {
		settings.sortByDepth = options.sortByDepth
	}
	if flags.Changed(copyFlagName) {
		settings.copyToClipboard = options.copyToClipboard
	}
	if flags.Changed(noGitignoreFlagName) {
		settings.useGitignore = !options.disableGitignore
	}
	if flags.Changed(noIgnoreFlagName) {
		settings.useIgnoreFile = !options.disableIgnoreFile
	}
	if flags.Changed(includeGitFlagName) {
		settings.includeGit = options.includeGit
	}
	return settings
}

// runTree builds every root concurrently and renders them in argument order.
func runTree(command *cobra.Command, env *environment, options treeOptions, arguments []string) error {
	configuration, loadError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: env.workingDirectory,
		ExplicitFilePath: options.configPath,
		HomeDirectory:    env.homeDirectory,
		Fs:               env.fileSystem,
	})
	if loadError != nil {
		return fmt.Errorf(errorLoadConfigFormat, loadError)
	}
	settings := resolveTreeSettings(command.Flags(), options, configuration.Tree)
	if !isSupportedFormat(settings.format) {
		return fmt.Errorf(invalidFormatMessage, settings.format)
	}

	roots, pathError := resolveAndValidatePaths(env, arguments)
	if pathError != nil {
		return pathError
	}

	trees := make([]output.EntryTree, len(roots))
	group, groupContext := errgroup.WithContext(command.Context())
	for index, root := range roots {
		group.Go(func() error {
			if contextError := groupContext.Err(); contextError != nil {
				return contextError
			}
			built, buildError := buildRoot(env, settings, root)
			if buildError != nil {
				return buildError
			}
			trees[index] = built
			return nil
		})
	}
	if waitError := group.Wait(); waitError != nil {
		return waitError
	}

	var rendered bytes.Buffer
	if renderError := output.Render(&rendered, settings.format, trees, settings.summary); renderError != nil {
		return renderError
	}
	env.logger.Debug(renderedOutputMessage, zap.String(renderedOutputFormatLogName, settings.format), zap.Int(treeRootCountLogField, len(trees)))
	if _, writeError := env.stdout.Write(rendered.Bytes()); writeError != nil {
		return writeError
	}
	if settings.copyToClipboard {
		if copyError := env.copier.Copy(rendered.String()); copyError != nil {
			env.logger.Warn(clipboardFailureMessage, zap.Error(copyError))
		}
	}
	return nil
}

func buildRoot(env *environment, settings treeSettings, root validatedPath) (output.EntryTree, error) {
	ignorePatterns := settings.exclusionPatterns
	if root.isDir {
		patterns, patternError := config.LoadCombinedIgnorePatterns(env.fileSystem, root.absolutePath, settings.exclusionPatterns, config.IgnoreOptions{
			UseGitignore:  settings.useGitignore,
			UseIgnoreFile: settings.useIgnoreFile,
			IncludeGit:    settings.includeGit,
			Recursive:     true,
		})
		if patternError != nil {
			var emptyTree output.EntryTree
			return emptyTree, fmt.Errorf(errorIgnorePatternsFormat, root.absolutePath, patternError)
		}
		ignorePatterns = patterns
	}
	rootLogger := env.logger.With(zap.String(treeRootLogField, root.absolutePath))
	treeBuilder := &commands.TreeBuilder{
		IgnorePatterns: ignorePatterns,
		SortByDepth:    settings.sortByDepth,
		Fs:             env.fileSystem,
		Logger:         rootLogger,
	}
	built, buildError := treeBuilder.GetTreeData(root.absolutePath)
	if buildError == nil {
		rootLogger.Debug(builtTreeMessage, zap.Strings(treeIgnorePatternsLogField, ignorePatterns))
	}
	return built, buildError
}

// resolveAndValidatePaths converts input paths to absolute form, validates their
// existence and drops duplicates.
func resolveAndValidatePaths(env *environment, inputs []string) ([]validatedPath, error) {
	seen := make(map[string]struct{})
	var result []validatedPath
	for _, inputPath := range inputs {
		absolutePath := inputPath
		if !filepath.IsAbs(absolutePath) {
			if env.workingDirectory != "" {
				absolutePath = filepath.Join(env.workingDirectory, inputPath)
			} else {
				resolved, absolutePathError := filepath.Abs(inputPath)
				if absolutePathError != nil {
					return nil, fmt.Errorf(errorAbsolutePathFormat, inputPath, absolutePathError)
				}
				absolutePath = resolved
			}
		}
		cleanPath := filepath.Clean(absolutePath)
		if _, duplicate := seen[cleanPath]; duplicate {
			continue
		}
		info, fileStatusError := env.fileSystem.Stat(cleanPath)
		if fileStatusError != nil {
			if errors.Is(fileStatusError, os.ErrNotExist) {
				return nil, fmt.Errorf(errorPathMissingFormat, inputPath)
			}
			return nil, fmt.Errorf(errorStatFormat, inputPath, fileStatusError)
		}
		seen[cleanPath] = struct{}{}
		result = append(result, validatedPath{absolutePath: cleanPath, isDir: info.IsDir()})
	}
	return result, nil
}

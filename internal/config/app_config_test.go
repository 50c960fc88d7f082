package config

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const (
	testHomeDirectory    = "/home/tester"
	testWorkingDirectory = "/work"
)

func boolPointer(value bool) *bool {
	pointer := value
	return &pointer
}

// TestLoadApplicationConfigurationMergesSources verifies that local values override global ones key by key.
func TestLoadApplicationConfigurationMergesSources(testingInstance *testing.T) {
	testCases := []struct {
		testName          string
		globalContent     string
		localContent      string
		explicitPath      string
		explicitContent   string
		expectFormat      string
		expectSummary     *bool
		expectSortByDepth *bool
		expectClipboard   *bool
		expectExclude     []string
		expectGitignore   *bool
	}{
		{
			testName:          "local overrides global",
			globalContent:     "tree:\n  format: json\n  summary: false\n  clipboard: true\n  paths:\n    exclude: [dist]\n",
			localContent:      "tree:\n  format: outline\n  sort_by_depth: true\n  paths:\n    exclude: [build, build, tmp]\n    use_gitignore: false\n",
			expectFormat:      "outline",
			expectSummary:     boolPointer(false),
			expectSortByDepth: boolPointer(true),
			expectClipboard:   boolPointer(true),
			expectExclude:     []string{"build", "tmp"},
			expectGitignore:   boolPointer(false),
		},
		{
			testName:        "explicit path replaces local file",
			globalContent:   "tree:\n  format: json\n",
			localContent:    "tree:\n  format: xml\n",
			explicitPath:    "custom.yaml",
			explicitContent: "tree:\n  clipboard: false\n",
			expectFormat:    "json",
			expectClipboard: boolPointer(false),
		},
		{
			testName: "no files",
		},
	}
	for _, testCase := range testCases {
		testingInstance.Run(testCase.testName, func(t *testing.T) {
			fileSystem := afero.NewMemMapFs()
			if testCase.globalContent != "" {
				globalPath := GlobalConfigPath(testHomeDirectory)
				require.NoError(t, fileSystem.MkdirAll(filepath.Dir(globalPath), 0o755))
				require.NoError(t, afero.WriteFile(fileSystem, globalPath, []byte(testCase.globalContent), 0o644))
			}
			require.NoError(t, fileSystem.MkdirAll(testWorkingDirectory, 0o755))
			if testCase.localContent != "" {
				require.NoError(t, afero.WriteFile(fileSystem, filepath.Join(testWorkingDirectory, ".fstree.yaml"), []byte(testCase.localContent), 0o644))
			}
			if testCase.explicitPath != "" {
				require.NoError(t, afero.WriteFile(fileSystem, filepath.Join(testWorkingDirectory, testCase.explicitPath), []byte(testCase.explicitContent), 0o644))
			}

			configuration, loadError := LoadApplicationConfiguration(LoadOptions{
				WorkingDirectory: testWorkingDirectory,
				ExplicitFilePath: testCase.explicitPath,
				HomeDirectory:    testHomeDirectory,
				Fs:               fileSystem,
			})
			require.NoError(t, loadError)
			require.Equal(t, testCase.expectFormat, configuration.Tree.Format)
			require.Equal(t, testCase.expectSummary, configuration.Tree.Summary)
			require.Equal(t, testCase.expectSortByDepth, configuration.Tree.SortByDepth)
			require.Equal(t, testCase.expectClipboard, configuration.Tree.Clipboard)
			require.Equal(t, testCase.expectGitignore, configuration.Tree.Paths.UseGitignore)
			if testCase.expectExclude == nil {
				require.Empty(t, configuration.Tree.Paths.Exclude)
			} else {
				require.Equal(t, testCase.expectExclude, configuration.Tree.Paths.Exclude)
			}
		})
	}
}

// TestLoadApplicationConfigurationRejectsDirectory verifies that a directory in place of the config file is an error.
func TestLoadApplicationConfigurationRejectsDirectory(testingInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	require.NoError(testingInstance, fileSystem.MkdirAll(filepath.Join(testWorkingDirectory, ".fstree.yaml"), 0o755))
	_, loadError := LoadApplicationConfiguration(LoadOptions{
		WorkingDirectory: testWorkingDirectory,
		HomeDirectory:    testHomeDirectory,
		Fs:               fileSystem,
	})
	require.ErrorContains(testingInstance, loadError, "is a directory")
}

// TestBoolOrDefault verifies fallback for unset values.
func TestBoolOrDefault(testingInstance *testing.T) {
	require.True(testingInstance, BoolOrDefault(nil, true))
	require.False(testingInstance, BoolOrDefault(boolPointer(false), true))
}

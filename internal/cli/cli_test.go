package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testWorkingDirectory = "/work"
	testHomeDirectory    = "/home/tester"
	projectOutline       = "- project/\n  - .gitignore\n  - a.txt\n  - sub/\n    - b.txt\n"
)

type recordingCopier struct {
	copied []string
}

func (copier *recordingCopier) Copy(text string) error {
	copier.copied = append(copier.copied, text)
	return nil
}

func newTestEnvironment(testingInstance *testing.T) (*environment, *bytes.Buffer, *recordingCopier) {
	testingInstance.Helper()
	fileSystem := afero.NewMemMapFs()
	files := map[string]string{
		"project/.gitignore":   "*.log\n",
		"project/a.txt":        "alpha",
		"project/debug.log":    "noise",
		"project/sub/b.txt":    "beta",
		"project/vendor/x.go":  "package x",
		"project/vendor/y.txt": "y",
	}
	for relativePath, content := range files {
		absolutePath := filepath.Join(testWorkingDirectory, relativePath)
		require.NoError(testingInstance, fileSystem.MkdirAll(filepath.Dir(absolutePath), 0o755))
		require.NoError(testingInstance, afero.WriteFile(fileSystem, absolutePath, []byte(content), 0o644))
	}
	stdout := &bytes.Buffer{}
	copier := &recordingCopier{}
	return &environment{
		stdout:           stdout,
		stderr:           io.Discard,
		fileSystem:       fileSystem,
		copier:           copier,
		workingDirectory: testWorkingDirectory,
		homeDirectory:    testHomeDirectory,
		logger:           zap.NewNop(),
	}, stdout, copier
}

func executeCommand(env *environment, arguments ...string) error {
	rootCommand := createRootCommand(env)
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, arguments))
	return rootCommand.Execute()
}

// TestTreeCommandFormats verifies the text renderings of one project root.
func TestTreeCommandFormats(testingInstance *testing.T) {
	testCases := []struct {
		testName       string
		arguments      []string
		expectedOutput string
	}{
		{
			testName:       "outline",
			arguments:      []string{"tree", "project", "-e", "vendor", "--format", "outline"},
			expectedOutput: projectOutline,
		},
		{
			testName:       "debug",
			arguments:      []string{"tree", "project", "-e", "vendor", "--format", "debug"},
			expectedOutput: "(project/ .gitignore -> (.gitignore) a.txt -> (a.txt) sub -> (sub/ b.txt -> (b.txt)))\n",
		},
		{
			testName:       "gitignore disabled",
			arguments:      []string{"t", "project", "-e", "vendor", "-e", "sub", "--format", "outline", "--no-gitignore"},
			expectedOutput: "- project/\n  - .gitignore\n  - a.txt\n  - debug.log\n",
		},
		{
			testName:       "multiple roots keep argument order",
			arguments:      []string{"tree", "project/sub", "project/a.txt", "project/sub", "--format", "outline"},
			expectedOutput: "- sub/\n  - b.txt\n- a.txt\n",
		},
		{
			testName:       "raw without summary",
			arguments:      []string{"tree", "project/sub", "--summary", "false"},
			expectedOutput: "\n--- Directory Tree: /work/project/sub ---\n/work/project/sub\n└── [File] b.txt\n",
		},
	}
	for _, testCase := range testCases {
		testingInstance.Run(testCase.testName, func(t *testing.T) {
			env, stdout, copier := newTestEnvironment(t)
			require.NoError(t, executeCommand(env, testCase.arguments...))
			require.Equal(t, testCase.expectedOutput, stdout.String())
			require.Empty(t, copier.copied)
		})
	}
}

// TestTreeCommandUsesConfiguration verifies that configuration files supply defaults and flags override them.
func TestTreeCommandUsesConfiguration(testingInstance *testing.T) {
	env, stdout, _ := newTestEnvironment(testingInstance)
	localConfiguration := "tree:\n  format: outline\n  paths:\n    exclude: [vendor]\n"
	require.NoError(testingInstance, afero.WriteFile(env.fileSystem, filepath.Join(testWorkingDirectory, ".fstree.yaml"), []byte(localConfiguration), 0o644))

	require.NoError(testingInstance, executeCommand(env, "tree", "project"))
	require.Equal(testingInstance, projectOutline, stdout.String())

	stdout.Reset()
	require.NoError(testingInstance, executeCommand(env, "tree", "project", "--format", "json"))
	var decoded map[string]any
	require.NoError(testingInstance, json.Unmarshal(stdout.Bytes(), &decoded))
	require.Equal(testingInstance, "/work/project", decoded["path"])
	require.Equal(testingInstance, float64(3), decoded["totalFiles"])
}

// TestTreeCommandCopiesOutput verifies clipboard copying and its boolean literal forms.
func TestTreeCommandCopiesOutput(testingInstance *testing.T) {
	testCases := []struct {
		testName     string
		copyArgument []string
		expectCopy   bool
	}{
		{testName: "bare flag", copyArgument: []string{"--copy"}, expectCopy: true},
		{testName: "separate false literal", copyArgument: []string{"--copy", "no"}, expectCopy: false},
		{testName: "assigned true literal", copyArgument: []string{"--copy=yes"}, expectCopy: true},
	}
	for _, testCase := range testCases {
		testingInstance.Run(testCase.testName, func(t *testing.T) {
			env, stdout, copier := newTestEnvironment(t)
			arguments := append([]string{"tree", "project/sub", "--format", "outline"}, testCase.copyArgument...)
			require.NoError(t, executeCommand(env, arguments...))
			if testCase.expectCopy {
				require.Equal(t, []string{stdout.String()}, copier.copied)
			} else {
				require.Empty(t, copier.copied)
			}
		})
	}
}

// TestTreeCommandErrors verifies argument validation.
func TestTreeCommandErrors(testingInstance *testing.T) {
	testCases := []struct {
		testName        string
		arguments       []string
		expectedMessage string
	}{
		{testName: "missing path", arguments: []string{"tree", "absent"}, expectedMessage: "path 'absent' does not exist"},
		{testName: "invalid format", arguments: []string{"tree", "project", "--format", "yaml"}, expectedMessage: "invalid format value 'yaml'"},
		{testName: "invalid boolean", arguments: []string{"tree", "project", "--summary=maybe"}, expectedMessage: "invalid boolean value"},
	}
	for _, testCase := range testCases {
		testingInstance.Run(testCase.testName, func(t *testing.T) {
			env, stdout, _ := newTestEnvironment(t)
			executeError := executeCommand(env, testCase.arguments...)
			require.ErrorContains(t, executeError, testCase.expectedMessage)
			require.Empty(t, stdout.String())
		})
	}
}

// TestInitCommand verifies that init writes the local file once unless forced.
func TestInitCommand(testingInstance *testing.T) {
	env, stdout, _ := newTestEnvironment(testingInstance)
	require.NoError(testingInstance, executeCommand(env, "init"))
	localPath := filepath.Join(testWorkingDirectory, ".fstree.yaml")
	require.Equal(testingInstance, "configuration written to "+localPath+"\n", stdout.String())
	exists, existsError := afero.Exists(env.fileSystem, localPath)
	require.NoError(testingInstance, existsError)
	require.True(testingInstance, exists)

	require.ErrorContains(testingInstance, executeCommand(env, "init"), "already exists")
	require.NoError(testingInstance, executeCommand(env, "init", "--force"))
	require.NoError(testingInstance, executeCommand(env, "init", "--global"))
	globalExists, globalError := afero.Exists(env.fileSystem, filepath.Join(testHomeDirectory, ".fstree", "config.yaml"))
	require.NoError(testingInstance, globalError)
	require.True(testingInstance, globalExists)
}

// TestVersionFlag verifies the version template.
func TestVersionFlag(testingInstance *testing.T) {
	env, stdout, _ := newTestEnvironment(testingInstance)
	require.NoError(testingInstance, executeCommand(env, "--version"))
	require.Contains(testingInstance, stdout.String(), "fstree version: ")
}

package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	booleanFlagTypeName       = "bool"
	booleanFlagTrueLiteral    = "true"
	booleanFlagPrefix         = "--"
	booleanFlagAssignment     = "="
	booleanFlagAcceptedValues = "true, false, yes, no, on, off, 1, 0"
	errorInvalidBooleanFormat = "invalid boolean value %q for --%s; accepted values: %s"
)

var booleanLiterals = map[string]bool{
	"true":  true,
	"t":     true,
	"1":     true,
	"yes":   true,
	"y":     true,
	"on":    true,
	"false": false,
	"f":     false,
	"0":     false,
	"no":    false,
	"n":     false,
	"off":   false,
}

// parseBooleanLiteral interprets input case-insensitively. An empty input is true.
func parseBooleanLiteral(input string) (bool, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return true, true
	}
	value, known := booleanLiterals[normalized]
	return value, known
}

// booleanFlagValue is a pflag.Value accepting the literals above, so "--copy", "--copy=no"
// and, after normalizeBooleanFlagArguments, "--copy no" all work.
type booleanFlagValue struct {
	target *bool
	name   string
}

func (value *booleanFlagValue) Set(input string) error {
	parsed, known := parseBooleanLiteral(input)
	if !known {
		return fmt.Errorf(errorInvalidBooleanFormat, input, value.name, booleanFlagAcceptedValues)
	}
	*value.target = parsed
	return nil
}

func (value *booleanFlagValue) String() string {
	if value.target == nil {
		return strconv.FormatBool(false)
	}
	return strconv.FormatBool(*value.target)
}

func (value *booleanFlagValue) Type() string {
	return booleanFlagTypeName
}

func registerBooleanFlag(flagSet *pflag.FlagSet, target *bool, name string, defaultValue bool, usage string) {
	*target = defaultValue
	flagSet.Var(&booleanFlagValue{target: target, name: name}, name, usage)
	registered := flagSet.Lookup(name)
	registered.DefValue = strconv.FormatBool(defaultValue)
	registered.NoOptDefVal = booleanFlagTrueLiteral
}

// normalizeBooleanFlagArguments rewrites "--flag literal" as "--flag=literal" for every
// boolean flag of command and its subcommands. Arguments after "--" are left alone.
func normalizeBooleanFlagArguments(command *cobra.Command, arguments []string) []string {
	booleanFlags := make(map[string]struct{})
	collectBooleanFlagNames(command, booleanFlags)
	if len(booleanFlags) == 0 {
		return arguments
	}
	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		current := arguments[index]
		if current == booleanFlagPrefix {
			return append(normalized, arguments[index:]...)
		}
		flagName, isLongFlag := strings.CutPrefix(current, booleanFlagPrefix)
		_, isBoolean := booleanFlags[flagName]
		if isLongFlag && isBoolean && !strings.Contains(flagName, booleanFlagAssignment) && index+1 < len(arguments) {
			next := arguments[index+1]
			if _, known := parseBooleanLiteral(next); known && next != "" && !strings.HasPrefix(next, "-") {
				normalized = append(normalized, current+booleanFlagAssignment+next)
				index++
				continue
			}
		}
		normalized = append(normalized, current)
	}
	return normalized
}

func collectBooleanFlagNames(command *cobra.Command, names map[string]struct{}) {
	collect := func(flag *pflag.Flag) {
		if flag.Value.Type() == booleanFlagTypeName {
			names[flag.Name] = struct{}{}
		}
	}
	command.PersistentFlags().VisitAll(collect)
	command.Flags().VisitAll(collect)
	for _, child := range command.Commands() {
		collectBooleanFlagNames(child, names)
	}
}

package main

import (
	"fmt"
	"strings"

	"github.com/nikbrunner/bmparse/internal/netscape"
)

// cliArgs holds a subcommand's positional arguments and flags.
type cliArgs struct {
	positional []string
	json       bool
	db         string

	keepToolbar bool
	noTags      bool
	rawDates    bool
}

// parseArgs splits args into positional arguments and the known flags.
// "--" ends flag parsing.
func parseArgs(args []string) (cliArgs, error) {
	var a cliArgs
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			a.positional = append(a.positional, args[i+1:]...)
			break
		}
		if !strings.HasPrefix(arg, "--") {
			a.positional = append(a.positional, arg)
			continue
		}

		name, value, hasValue := strings.Cut(arg[2:], "=")
		switch name {
		case "json":
			a.json = true
		case "no-ignore-toolbar":
			a.keepToolbar = true
		case "no-tags":
			a.noTags = true
		case "raw-dates":
			a.rawDates = true
		case "db":
			if !hasValue {
				if i+1 >= len(args) {
					return a, fmt.Errorf("flag --db needs a path")
				}
				i++
				value = args[i]
			}
			a.db = value
		default:
			return a, fmt.Errorf("unknown flag %s", arg)
		}
	}
	return a, nil
}

// apply overrides config-derived parse options with command line flags.
func (a cliArgs) apply(opts netscape.Options) netscape.Options {
	if a.keepToolbar {
		opts.IgnorePersonalToolbarFolder = false
	}
	if a.noTags {
		opts.IncludeFolderTags = false
	}
	if a.rawDates {
		opts.UseDateObjects = false
	}
	return opts
}

// Package flagx contains helpers for splitting command-line flag parsing
// across components. Each component filters os.Args down to the flags it
// owns before handing them to its own flag.FlagSet, so unknown flags from
// other components do not trip parsing errors.
package flagx

import (
	"os"
	"strings"
)

// FilterArgs returns the subset of args containing only the allowed flags
// and their values.
//
// Two flag formats are recognized:
//  1. flag and value as separate arguments: -d /var/data
//  2. flag and value combined with '=':     --data-dir=/var/data
func FilterArgs(args []string, allowed []string) []string {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, f := range allowed {
		allowedSet[f] = struct{}{}
	}

	var out []string
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if _, ok := allowedSet[arg]; ok {
			out = append(out, arg)
			// Take the following argument as the value unless it looks
			// like another flag (covers boolean flags).
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				out = append(out, args[i+1])
				i++
			}
			continue
		}

		if eq := strings.Index(arg, "="); eq > 0 {
			if _, ok := allowedSet[arg[:eq]]; ok {
				out = append(out, arg)
			}
		}
	}
	return out
}

// JSONConfigFile resolves the path of the optional JSON config file from
// the -c/-config command-line flags. An empty string means no config file
// was requested.
func JSONConfigFile() string {
	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-c" || arg == "-config" || arg == "--config":
			if i+1 < len(args) {
				return args[i+1]
			}
		case strings.HasPrefix(arg, "-c="):
			return arg[len("-c="):]
		case strings.HasPrefix(arg, "-config="):
			return arg[len("-config="):]
		case strings.HasPrefix(arg, "--config="):
			return arg[len("--config="):]
		}
	}
	return ""
}

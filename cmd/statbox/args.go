package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/neox5/statbox/internal/client"
)

// nilArg stands in for an omitted positional argument, e.g. a default
// sample rate before tags.
const nilArg = "-"

// parseArgs converts command line arguments into client call arguments.
// Integers and floats become numbers, "k:v,k2:v2" becomes tags and
// anything else is passed as a string.
func parseArgs(raw []string) ([]any, error) {
	args := make([]any, 0, len(raw))
	for _, s := range raw {
		arg, err := parseArg(s)
		if err != nil {
			return nil, fmt.Errorf("invalid argument %q: %w", s, err)
		}
		args = append(args, arg)
	}
	return args, nil
}

func parseArg(s string) (any, error) {
	if s == nilArg {
		return nil, nil
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, nil
	}
	if strings.Contains(s, ":") {
		return client.ParseTags(s)
	}
	return s, nil
}

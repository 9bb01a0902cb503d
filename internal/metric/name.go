package metric

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Boundary passes are applied in order; the second one splits acronyms
// ("HTTPServer" -> "HTTP.Server") without touching existing dots.
var (
	lowerUpperBoundary   = regexp.MustCompile(`([a-z\d])([A-Z])`)
	acronymWordBoundary  = regexp.MustCompile(`([^.])([A-Z][a-z])`)
	errMissingMethodName = errors.New("method name is empty")
)

// Dotted converts a camel-case method name into a dot-separated, lower-cased
// metric name. Characters other than case boundaries are preserved verbatim,
// so "NetaxeptRegistration_failed" becomes "netaxept.registration_failed".
func Dotted(name string) string {
	dotted := lowerUpperBoundary.ReplaceAllString(name, "${1}.${2}")
	dotted = acronymWordBoundary.ReplaceAllString(dotted, "${1}.${2}")
	return strings.ToLower(dotted)
}

// FullName returns the fully qualified metric name for a declared method name.
func FullName(prefix, name string) string {
	return prefix + "." + Dotted(name)
}

// MethodID returns the identifier a declared method is invoked by.
func MethodID(kind Kind, name string) string {
	return kind.Tag() + name
}

// ParseMethodID splits a method identifier into its kind and declared name.
func ParseMethodID(id string) (Kind, string, error) {
	for _, k := range Kinds() {
		tag := k.Tag()
		if !strings.HasPrefix(id, tag) {
			continue
		}
		name := id[len(tag):]
		if name == "" {
			return 0, "", fmt.Errorf("method %q: %w", id, errMissingMethodName)
		}
		return k, name, nil
	}
	return 0, "", fmt.Errorf("method %q: unknown kind prefix", id)
}

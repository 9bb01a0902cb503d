package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/neox5/statbox/internal/metric"
	"go.yaml.in/yaml/v4"
)

// shortDeclaration matches "incName Description" as well as docblock lines
// such as "@method void timName(float $time) Description".
var shortDeclaration = regexp.MustCompile(`^(?:@method\s+void\s+)?([A-Za-z][A-Za-z0-9_.]*)(?:\([^)]*\))?(?:\s+(.*))?$`)

// ServiceConfig is the method catalog of one service.
type ServiceConfig []DeclarationConfig

// Declarations converts the catalog into metric declarations.
func (s ServiceConfig) Declarations() []metric.Declaration {
	decls := make([]metric.Declaration, len(s))
	for i, d := range s {
		decls[i] = metric.Declaration(d)
	}
	return decls
}

// DeclarationConfig supports a short string form ("incName Description")
// and a full object form (kind, name, description).
type DeclarationConfig metric.Declaration

// UnmarshalYAML handles both string and object forms for declarations.
func (d *DeclarationConfig) UnmarshalYAML(value *yaml.Node) error {
	// Try string form first (short form)
	var short string
	if err := value.Decode(&short); err == nil {
		decl, err := parseShortDeclaration(short)
		if err != nil {
			return err
		}
		*d = DeclarationConfig(decl)
		return nil
	}

	// Fall back to full form (object)
	type declarationConfig struct {
		Kind        string `yaml:"kind"`
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
	}
	var full declarationConfig
	if err := value.Decode(&full); err != nil {
		return err
	}

	kind, err := metric.ParseKind(full.Kind)
	if err != nil {
		return fmt.Errorf("declaration %q: %w", full.Name, err)
	}
	if full.Name == "" {
		return fmt.Errorf("declaration of kind %s: name cannot be empty", kind)
	}

	*d = DeclarationConfig{Kind: kind, Name: full.Name, Description: full.Description}
	return nil
}

func parseShortDeclaration(s string) (metric.Declaration, error) {
	m := shortDeclaration.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return metric.Declaration{}, fmt.Errorf("invalid declaration %q", s)
	}

	kind, name, err := metric.ParseMethodID(m[1])
	if err != nil {
		return metric.Declaration{}, err
	}

	return metric.Declaration{
		Kind:        kind,
		Name:        name,
		Description: strings.TrimSpace(m[2]),
	}, nil
}

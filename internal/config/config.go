// =============================================================================
// Tableau Workbook Fixer - Configuration Module
// =============================================================================
//
// This module defines the data-driven fix-rule set the repair passes run
// from, plus the optional YAML file that can override it.
//
// CONFIGURATION FILES:
//   The tool is fully functional without a configuration file: Default()
//   returns the compiled-in rules covering the known Tableau schema
//   violations. A YAML file given with --config replaces those rules.
//
// ARCHITECTURE:
//   The rule set is designed to be:
//   - Data-driven: new disallowed elements or attribute fixes are added
//     without code changes
//   - Validated: every rule is checked on load
//
// =============================================================================

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// FIX RULE STRUCTURES
// =============================================================================

// FixRules holds the complete rule set driving the repair passes.
type FixRules struct {
	// DisallowedElements lists tag names that are not permitted anywhere
	// in the workbook schema. Every occurrence (self-closing or paired,
	// including the paired form's content) is removed.
	// Default: ["mark-type"]
	DisallowedElements []string `yaml:"disallowed_elements"`

	// MisplacedContainers lists container elements that are only legal
	// inside one specific parent element. Occurrences outside that parent
	// are removed; occurrences inside it pass through unchanged.
	MisplacedContainers []ContainerRule `yaml:"misplaced_containers"`

	// AttributeFixes lists attribute enumeration values that must be
	// rewritten to an allowed substitute.
	AttributeFixes []AttributeFix `yaml:"attribute_fixes"`
}

// ContainerRule describes an element that is only legal inside one parent.
type ContainerRule struct {
	// Element is the container tag name (e.g. "parameters").
	Element string `yaml:"element"`

	// LegalParent is the only element the container may appear inside
	// (e.g. "datasource").
	LegalParent string `yaml:"legal_parent"`
}

// AttributeFix describes a disallowed attribute value and its substitute.
type AttributeFix struct {
	// Element is the tag the attribute belongs to (e.g. "format").
	Element string `yaml:"element"`

	// Attribute is the attribute name (e.g. "value").
	Attribute string `yaml:"attribute"`

	// From is the disallowed enumeration literal (e.g. "font-color").
	From string `yaml:"from"`

	// To is the allowed substitute literal (e.g. "bold").
	To string `yaml:"to"`
}

// =============================================================================
// DEFAULT RULES
// =============================================================================

// Default returns the compiled-in rule set. These are the schema violations
// Tableau Desktop is known to emit in exported workbooks:
//   - mark-type elements, which are not declared in the workbook schema
//   - parameters blocks hoisted to the workbook root instead of living
//     inside their datasource
//   - the 'font-color' format value, which is not a legal enumeration
//     member ('bold' is the closest allowed literal)
func Default() *FixRules {
	return &FixRules{
		DisallowedElements: []string{"mark-type"},
		MisplacedContainers: []ContainerRule{
			{Element: "parameters", LegalParent: "datasource"},
		},
		AttributeFixes: []AttributeFix{
			{Element: "format", Attribute: "value", From: "font-color", To: "bold"},
		},
	}
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads a fix-rules file from the given path. An empty path returns
// the compiled-in defaults.
//
// RETURNS:
//   - The validated rule set.
//   - An error if the file cannot be read, parsed, or fails validation.
func Load(path string) (*FixRules, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}

	rules := &FixRules{}
	if err := yaml.Unmarshal(data, rules); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}

	// Empty sections fall back to the defaults; a rules file that only
	// adds an attribute fix should not silently disable element removal.
	defaults := Default()
	if len(rules.DisallowedElements) == 0 {
		rules.DisallowedElements = defaults.DisallowedElements
	}
	if len(rules.MisplacedContainers) == 0 {
		rules.MisplacedContainers = defaults.MisplacedContainers
	}
	if len(rules.AttributeFixes) == 0 {
		rules.AttributeFixes = defaults.AttributeFixes
	}

	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules file %s: %w", path, err)
	}

	return rules, nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks that every rule carries the fields its pass needs.
func (r *FixRules) Validate() error {
	for i, el := range r.DisallowedElements {
		if el == "" {
			return fmt.Errorf("disallowed_elements[%d]: element name must not be empty", i)
		}
	}

	for i, c := range r.MisplacedContainers {
		if c.Element == "" {
			return fmt.Errorf("misplaced_containers[%d]: element must not be empty", i)
		}
		if c.LegalParent == "" {
			return fmt.Errorf("misplaced_containers[%d]: legal_parent must not be empty", i)
		}
	}

	for i, a := range r.AttributeFixes {
		if a.Element == "" || a.Attribute == "" {
			return fmt.Errorf("attribute_fixes[%d]: element and attribute must not be empty", i)
		}
		if a.From == "" || a.To == "" {
			return fmt.Errorf("attribute_fixes[%d]: from and to must not be empty", i)
		}
	}

	return nil
}

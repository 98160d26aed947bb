package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeRules(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault_CoversKnownSchemaViolations(t *testing.T) {
	rules := Default()

	require.Equal(t, []string{"mark-type"}, rules.DisallowedElements)

	require.Len(t, rules.MisplacedContainers, 1)
	require.Equal(t, "parameters", rules.MisplacedContainers[0].Element)
	require.Equal(t, "datasource", rules.MisplacedContainers[0].LegalParent)

	require.Len(t, rules.AttributeFixes, 1)
	require.Equal(t, "format", rules.AttributeFixes[0].Element)
	require.Equal(t, "value", rules.AttributeFixes[0].Attribute)
	require.Equal(t, "font-color", rules.AttributeFixes[0].From)
	require.Equal(t, "bold", rules.AttributeFixes[0].To)

	require.NoError(t, rules.Validate())
}

func TestLoad_EmptyPath_ReturnsDefaults(t *testing.T) {
	rules, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), rules)
}

func TestLoad_FullOverride_Parsed(t *testing.T) {
	path := writeRules(t, `
disallowed_elements: [mark-type, legacy-hint]
misplaced_containers:
  - element: parameters
    legal_parent: datasource
attribute_fixes:
  - element: format
    attribute: value
    from: font-color
    to: italic
`)

	rules, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"mark-type", "legacy-hint"}, rules.DisallowedElements)
	require.Equal(t, "italic", rules.AttributeFixes[0].To)
}

func TestLoad_PartialFile_FallsBackToDefaults(t *testing.T) {
	path := writeRules(t, `
disallowed_elements: [custom-tag]
`)

	rules, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"custom-tag"}, rules.DisallowedElements)
	require.Equal(t, Default().MisplacedContainers, rules.MisplacedContainers)
	require.Equal(t, Default().AttributeFixes, rules.AttributeFixes)
}

func TestLoad_MissingFile_ReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_MalformedYAML_ReturnsError(t *testing.T) {
	path := writeRules(t, "disallowed_elements: [unterminated")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_AttributeFixMissingSubstitute_ReturnsError(t *testing.T) {
	path := writeRules(t, `
attribute_fixes:
  - element: format
    attribute: value
    from: font-color
`)

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "attribute_fixes[0]")
}

func TestLoad_ContainerMissingParent_ReturnsError(t *testing.T) {
	path := writeRules(t, `
misplaced_containers:
  - element: parameters
`)

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "legal_parent")
}

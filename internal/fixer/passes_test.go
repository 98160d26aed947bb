package fixer

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tableau-tools/twbfix/internal/config"
)

// =============================================================================
// PASS 1: IDENTIFIER NORMALIZATION
// =============================================================================

// canonicalTokenRe finds canonical-form tokens anywhere in a document.
// The loose pattern cannot be used for this: its tail segments only match
// digits, and generated replacements carry hexadecimal letters.
var canonicalTokenRe = regexp.MustCompile(`\{[0-9A-Fa-f]{8}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{12}\}`)

func TestNormalizeUUIDs_RepeatedToken_GetsSameReplacementEverywhere(t *testing.T) {
	input := "<pane id='{PIE00001-0000-0000-0000-000000000001}'/>\n" +
		"<window id='{PIE00001-0000-0000-0000-000000000001}'/>\n"

	out, count := NormalizeUUIDs(input)
	require.Equal(t, 1, count)
	require.NotContains(t, out, "{PIE00001-0000-0000-0000-000000000001}")

	tokens := canonicalTokenRe.FindAllString(out, -1)
	require.Len(t, tokens, 2)
	require.Equal(t, tokens[0], tokens[1])
	require.True(t, IsCanonicalUUID(tokens[0]))
}

func TestNormalizeUUIDs_DistinctTokens_GetDistinctReplacements(t *testing.T) {
	input := "{PIE00001-0000-0000-0000-000000000001} {PIE00002-0000-0000-0000-000000000002}"

	out, count := NormalizeUUIDs(input)
	require.Equal(t, 2, count)

	tokens := canonicalTokenRe.FindAllString(out, -1)
	require.Len(t, tokens, 2)
	require.True(t, IsCanonicalUUID(tokens[0]))
	require.True(t, IsCanonicalUUID(tokens[1]))
	require.NotEqual(t, tokens[0], tokens[1])
}

func TestNormalizeUUIDs_CanonicalToken_IsByteForByteUnchanged(t *testing.T) {
	// An all-digit canonical token matches the loose pattern too; the
	// canonical check must still leave it alone.
	input := "<window id='{12345678-0000-0000-0000-000000000000}'/>"

	out, count := NormalizeUUIDs(input)
	require.Equal(t, 0, count)
	require.Equal(t, input, out)
}

func TestNormalizeUUIDs_CanonicalHexToken_IsByteForByteUnchanged(t *testing.T) {
	input := "<window id='{D5E10A2F-4C6B-4E1D-9E7A-1B2C3D4E5F60}'/>"

	out, count := NormalizeUUIDs(input)
	require.Equal(t, 0, count)
	require.Equal(t, input, out)
}

func TestNormalizeUUIDs_ReplacementHasCanonicalForm(t *testing.T) {
	out, count := NormalizeUUIDs("{BAD1-2-3-4-5}")
	require.Equal(t, 1, count)
	require.True(t, IsCanonicalUUID(out))
	require.Equal(t, strings.ToUpper(out), out)
}

func TestNewCanonicalUUID_MatchesCanonicalPattern(t *testing.T) {
	for i := 0; i < 100; i++ {
		require.True(t, IsCanonicalUUID(NewCanonicalUUID()))
	}
}

// =============================================================================
// PASS 2: DISALLOWED ELEMENT REMOVAL
// =============================================================================

func TestRemoveDisallowedElements_SelfClosing_Removed(t *testing.T) {
	input := "<worksheet>\n<mark-type type='pie'/>\n<pane/>\n</worksheet>"

	out, count := RemoveDisallowedElements(input, []string{"mark-type"})
	require.Equal(t, 1, count)
	require.NotContains(t, out, "mark-type")
	require.Contains(t, out, "<pane/>")
}

func TestRemoveDisallowedElements_Paired_RemovedWithFullBody(t *testing.T) {
	input := "<worksheet>\n<mark-type type='bar'>\n<option/>\n</mark-type>\n<pane/>\n</worksheet>"

	out, count := RemoveDisallowedElements(input, []string{"mark-type"})
	require.Equal(t, 1, count)
	require.NotContains(t, out, "mark-type")
	require.NotContains(t, out, "<option/>")
	require.Contains(t, out, "<pane/>")
}

func TestRemoveDisallowedElements_Idempotent(t *testing.T) {
	input := "<a>\n<mark-type/>\n<mark-type t='x'>body</mark-type>\n<b/>\n</a>"

	once, _ := RemoveDisallowedElements(input, []string{"mark-type"})
	twice, count := RemoveDisallowedElements(once, []string{"mark-type"})
	require.Equal(t, 0, count)
	require.Equal(t, once, twice)
}

func TestRemoveDisallowedElements_SimilarTagName_Untouched(t *testing.T) {
	input := "<mark-types/>\n<mark class='Automatic'/>"

	out, count := RemoveDisallowedElements(input, []string{"mark-type"})
	require.Equal(t, 0, count)
	require.Equal(t, input, out)
}

// =============================================================================
// PASS 3: MISPLACED CONTAINER REMOVAL
// =============================================================================

var parameterRules = []config.ContainerRule{
	{Element: "parameters", LegalParent: "datasource"},
}

func TestRemoveMisplacedContainers_InsideLegalParent_Kept(t *testing.T) {
	input := strings.Join([]string{
		"<workbook>",
		"<datasource name='ds1'>",
		"<parameters>",
		"<column caption='Top N'/>",
		"</parameters>",
		"</datasource>",
		"</workbook>",
	}, "\n")

	out, count := RemoveMisplacedContainers(input, parameterRules)
	require.Equal(t, 0, count)
	require.Equal(t, input, out)
}

func TestRemoveMisplacedContainers_OutsideParent_BlockDropped(t *testing.T) {
	input := strings.Join([]string{
		"<workbook>",
		"<datasource name='ds1'>",
		"</datasource>",
		"<parameters>",
		"<column caption='Stray'/>",
		"</parameters>",
		"<windows/>",
		"</workbook>",
	}, "\n")

	out, count := RemoveMisplacedContainers(input, parameterRules)
	require.Equal(t, 1, count)
	require.NotContains(t, out, "parameters")
	require.NotContains(t, out, "Stray")
	require.Contains(t, out, "<windows/>")
}

func TestRemoveMisplacedContainers_OutsideParent_SelfClosingDropped(t *testing.T) {
	input := "<workbook>\n<parameters/>\n<windows/>\n</workbook>"

	out, count := RemoveMisplacedContainers(input, parameterRules)
	require.Equal(t, 1, count)
	require.NotContains(t, out, "parameters")
	require.Contains(t, out, "<windows/>")
}

func TestRemoveMisplacedContainers_ParentOpenedFarAbove_StillKept(t *testing.T) {
	// The enclosing datasource opens well over 50 lines before the
	// container; depth tracking must not depend on any fixed window.
	lines := []string{"<workbook>", "<datasource name='ds1'>"}
	for i := 0; i < 80; i++ {
		lines = append(lines, "<column datatype='integer'/>")
	}
	lines = append(lines,
		"<parameters>",
		"<column caption='Top N'/>",
		"</parameters>",
		"</datasource>",
		"</workbook>",
	)
	input := strings.Join(lines, "\n")

	out, count := RemoveMisplacedContainers(input, parameterRules)
	require.Equal(t, 0, count)
	require.Equal(t, input, out)
}

func TestRemoveMisplacedContainers_SelfClosingParent_DoesNotOpenContext(t *testing.T) {
	input := strings.Join([]string{
		"<workbook>",
		"<datasource name='ds1'/>",
		"<parameters>",
		"<column caption='Stray'/>",
		"</parameters>",
		"</workbook>",
	}, "\n")

	out, count := RemoveMisplacedContainers(input, parameterRules)
	require.Equal(t, 1, count)
	require.NotContains(t, out, "parameters")
}

func TestRemoveMisplacedContainers_NestedParents_TrackedByDepth(t *testing.T) {
	// Two datasources; the container sits after the first closed but
	// inside the second. It is in legal context.
	input := strings.Join([]string{
		"<workbook>",
		"<datasource name='ds1'>",
		"</datasource>",
		"<datasource name='ds2'>",
		"<parameters>",
		"<column/>",
		"</parameters>",
		"</datasource>",
		"</workbook>",
	}, "\n")

	out, count := RemoveMisplacedContainers(input, parameterRules)
	require.Equal(t, 0, count)
	require.Equal(t, input, out)
}

func TestRemoveMisplacedContainers_OpenAndCloseOnOneLine_DropsJustThatLine(t *testing.T) {
	input := "<workbook>\n<parameters><column/></parameters>\n<windows/>\n</workbook>"

	out, count := RemoveMisplacedContainers(input, parameterRules)
	require.Equal(t, 1, count)
	require.Equal(t, "<workbook>\n<windows/>\n</workbook>", out)
}

// =============================================================================
// PASS 4: ATTRIBUTE VALUE CORRECTION
// =============================================================================

var formatRules = []config.AttributeFix{
	{Element: "format", Attribute: "value", From: "font-color", To: "bold"},
}

func TestFixAttributeValues_DoubleQuoted_Rewritten(t *testing.T) {
	input := `<format attr="title" value="font-color"/>`

	out, count := FixAttributeValues(input, formatRules)
	require.Equal(t, 1, count)
	require.Equal(t, `<format attr="title" value="bold"/>`, out)
}

func TestFixAttributeValues_SingleQuoted_Rewritten(t *testing.T) {
	input := `<format attr='title' value='font-color'/>`

	out, count := FixAttributeValues(input, formatRules)
	require.Equal(t, 1, count)
	require.Equal(t, `<format attr='title' value='bold'/>`, out)
}

func TestFixAttributeValues_SurroundingAttributesPreserved(t *testing.T) {
	input := `<style><format attr='title' field='[Sales]' value='font-color' scope='cols'/></style>`

	out, count := FixAttributeValues(input, formatRules)
	require.Equal(t, 1, count)
	require.Contains(t, out, `attr='title'`)
	require.Contains(t, out, `field='[Sales]'`)
	require.Contains(t, out, `scope='cols'`)
	require.Contains(t, out, `value='bold'`)
	require.Contains(t, out, "<style>")
}

func TestFixAttributeValues_AllowedValue_Untouched(t *testing.T) {
	input := `<format attr='title' value='italic'/>`

	out, count := FixAttributeValues(input, formatRules)
	require.Equal(t, 0, count)
	require.Equal(t, input, out)
}

func TestFixAttributeValues_SameValueOnOtherElement_Untouched(t *testing.T) {
	input := `<color value='font-color'/>`

	out, count := FixAttributeValues(input, formatRules)
	require.Equal(t, 0, count)
	require.Equal(t, input, out)
}

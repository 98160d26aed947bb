// =============================================================================
// Tableau Workbook Fixer - Fix Passes
// =============================================================================
//
// This module provides the four text-rewrite passes that repair the .twb
// document. The passes operate on the full document text as a single
// in-memory string, deliberately without parsing a DOM: the document may
// not currently be schema-valid, and a structural parser would reject the
// very inputs this tool exists to repair.
//
// PASS ORDER:
//   Passes run strictly in this order because later passes assume earlier
//   ones already ran:
//   1. Identifier normalization (malformed UUID tokens)
//   2. Disallowed element removal
//   3. Misplaced container removal
//   4. Attribute enumeration value correction
//   Identifier normalization runs first so that the canonical replacement
//   tokens it inserts are never mistaken for removal targets.
//
// CUSTOMIZATION:
//   Passes 2-4 are driven entirely by the rule structs in internal/config;
//   new disallowed elements or attribute substitutions need no code change.
//
// =============================================================================

package fixer

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/tableau-tools/twbfix/internal/config"
)

// =============================================================================
// PASS STATISTICS
// =============================================================================

// PassStats counts what each pass changed in one run.
type PassStats struct {
	// UUIDsNormalized is the number of distinct malformed identifier
	// tokens that were replaced (each may occur many times).
	UUIDsNormalized int

	// ElementsRemoved is the number of disallowed elements removed.
	ElementsRemoved int

	// ContainersRemoved is the number of misplaced containers removed.
	ContainersRemoved int

	// AttributesFixed is the number of attribute values rewritten.
	AttributesFixed int
}

// =============================================================================
// PASS 1: IDENTIFIER NORMALIZATION
// =============================================================================

var (
	// looseIdentifierRe matches bracketed, hyphen-segmented tokens that
	// look like workbook identifiers, e.g. {PIE00001-0000-0000-0000-000000000001}.
	// Canonical tokens with an all-digit tail also match; they are
	// filtered out with canonicalIdentifierRe below.
	looseIdentifierRe = regexp.MustCompile(`\{[A-Z0-9]+-[0-9]+-[0-9]+-[0-9]+-[0-9]+\}`)

	// canonicalIdentifierRe matches the strict 8-4-4-4-12 hexadecimal
	// grouping the workbook schema requires.
	canonicalIdentifierRe = regexp.MustCompile(`^\{[0-9A-Fa-f]{8}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{12}\}$`)
)

// IsCanonicalUUID reports whether a token already has the strict
// 8-4-4-4-12 bracketed hexadecimal form.
func IsCanonicalUUID(token string) bool {
	return canonicalIdentifierRe.MatchString(token)
}

// NewCanonicalUUID generates a fresh identifier token in canonical form:
// uppercase hexadecimal, bracket-delimited, 8-4-4-4-12 grouping.
func NewCanonicalUUID() string {
	return "{" + strings.ToUpper(uuid.New().String()) + "}"
}

// NormalizeUUIDs replaces every malformed identifier token in the document
// with a freshly generated canonical one. The remap table is local to one
// call: the same malformed token always maps to the same replacement within
// a run, so references between document sections stay consistent. Tokens
// already in canonical form are left byte-for-byte untouched.
//
// RETURNS:
//   - The rewritten document text.
//   - The number of distinct malformed tokens replaced.
func NormalizeUUIDs(content string) (string, int) {
	remap := make(map[string]string)

	out := looseIdentifierRe.ReplaceAllStringFunc(content, func(token string) string {
		if IsCanonicalUUID(token) {
			return token
		}
		replacement, seen := remap[token]
		if !seen {
			replacement = NewCanonicalUUID()
			remap[token] = replacement
		}
		return replacement
	})

	return out, len(remap)
}

// =============================================================================
// PASS 2: DISALLOWED ELEMENT REMOVAL
// =============================================================================

// RemoveDisallowedElements removes every occurrence of each disallowed tag
// name, in both its self-closing and paired forms, including the paired
// form's full content span plus any trailing whitespace. The pass is
// idempotent: a second run over its own output changes nothing.
//
// Self-closing forms are removed before paired forms so that the paired
// pattern's open-tag match can never start at a self-closing occurrence
// and swallow unrelated content up to a later close tag.
func RemoveDisallowedElements(content string, tags []string) (string, int) {
	removed := 0

	for _, tag := range tags {
		quoted := regexp.QuoteMeta(tag)
		selfClosing := regexp.MustCompile(`<` + quoted + `(?:\s[^>]*)?/>\s*`)
		paired := regexp.MustCompile(`(?s)<` + quoted + `(?:\s[^>]*)?>.*?</` + quoted + `>\s*`)

		removed += len(selfClosing.FindAllString(content, -1))
		content = selfClosing.ReplaceAllString(content, "")

		removed += len(paired.FindAllString(content, -1))
		content = paired.ReplaceAllString(content, "")
	}

	return content, removed
}

// =============================================================================
// PASS 3: MISPLACED CONTAINER REMOVAL
// =============================================================================

// RemoveMisplacedContainers removes container elements that appear outside
// their one legal parent context. Detection tracks the actual nesting depth
// of the legal parent element line by line (incremented on open tags,
// decremented on close tags; self-closing parent forms leave it unchanged),
// so a container is classified by real structure rather than by a fixed
// lookback window.
//
// A misplaced self-closing container is dropped outright; a misplaced
// open container drops all lines up to and including its matching close
// tag. Containers found inside the legal parent pass through unchanged.
func RemoveMisplacedContainers(content string, rules []config.ContainerRule) (string, int) {
	removed := 0
	for _, rule := range rules {
		var n int
		content, n = removeMisplacedContainer(content, rule)
		removed += n
	}
	return content, removed
}

// removeMisplacedContainer applies a single container rule.
func removeMisplacedContainer(content string, rule config.ContainerRule) (string, int) {
	openParentRe := regexp.MustCompile(`<` + regexp.QuoteMeta(rule.LegalParent) + `(?:\s[^>]*)?/?>`)
	closeParent := "</" + rule.LegalParent + ">"
	openContainerRe := regexp.MustCompile(`<` + regexp.QuoteMeta(rule.Element) + `(?:\s[^>]*)?/?>`)
	closeContainer := "</" + rule.Element + ">"

	lines := strings.Split(content, "\n")
	kept := make([]string, 0, len(lines))

	// depth is the current nesting depth of the legal parent element.
	depth := 0
	removed := 0
	skipping := false

	for _, line := range lines {
		// Inside a misplaced open container: drop lines through its close tag.
		if skipping {
			if strings.Contains(line, closeContainer) {
				skipping = false
			}
			continue
		}

		if open := openContainerRe.FindString(line); open != "" && depth == 0 {
			removed++
			// Self-closing, or opened and closed on the same line: the
			// line itself is the whole container.
			if !strings.HasSuffix(open, "/>") && !strings.Contains(line, closeContainer) {
				skipping = true
			}
			continue
		}

		// Track the legal parent's nesting depth on every kept line.
		for _, tag := range openParentRe.FindAllString(line, -1) {
			if !strings.HasSuffix(tag, "/>") {
				depth++
			}
		}
		depth -= strings.Count(line, closeParent)
		if depth < 0 {
			depth = 0
		}

		kept = append(kept, line)
	}

	return strings.Join(kept, "\n"), removed
}

// =============================================================================
// PASS 4: ATTRIBUTE VALUE CORRECTION
// =============================================================================

// FixAttributeValues rewrites disallowed attribute enumeration literals to
// their allowed substitutes. Only the exact attribute="value" (or single
// quoted) pair inside the rule's element is touched; all other attributes
// and the element structure are preserved.
func FixAttributeValues(content string, rules []config.AttributeFix) (string, int) {
	fixed := 0

	for _, rule := range rules {
		elementRe := regexp.MustCompile(`<` + regexp.QuoteMeta(rule.Element) + `\s[^>]*>`)

		singleFrom := rule.Attribute + `='` + rule.From + `'`
		singleTo := rule.Attribute + `='` + rule.To + `'`
		doubleFrom := rule.Attribute + `="` + rule.From + `"`
		doubleTo := rule.Attribute + `="` + rule.To + `"`

		content = elementRe.ReplaceAllStringFunc(content, func(element string) string {
			n := strings.Count(element, singleFrom) + strings.Count(element, doubleFrom)
			if n == 0 {
				return element
			}
			fixed += n
			element = strings.ReplaceAll(element, singleFrom, singleTo)
			return strings.ReplaceAll(element, doubleFrom, doubleTo)
		})
	}

	return content, fixed
}

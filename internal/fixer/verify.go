// =============================================================================
// Tableau Workbook Fixer - Verification Module
// =============================================================================
//
// Regex-driven rewriting over unparsed markup can, on pathological inputs,
// corrupt structure (nested comments, CDATA sections). This module offers
// an optional after-the-fact check: parse the repaired text and report
// whether it is well-formed XML. It never repairs anything itself.
//
// =============================================================================

package fixer

import (
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
)

// VerifyWellFormed parses the repaired document text and returns an error
// if it is not well-formed XML. Well-formedness is a weaker property than
// schema validity; the passes target the latter, this check only guards
// against the former being broken by the rewrite itself.
func VerifyWellFormed(content string) error {
	doc, err := xmlquery.Parse(strings.NewReader(content))
	if err != nil {
		return fmt.Errorf("fixed document is not well-formed XML: %w", err)
	}
	if doc.FirstChild == nil {
		return fmt.Errorf("fixed document is empty")
	}
	return nil
}

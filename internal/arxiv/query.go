package arxiv

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// earliestSubmission is the lower bound arXiv accepts for submittedDate
// ranges (the archive opened in August 1991).
const earliestSubmission = "19910801"

// BuildQuery composes a search_query expression from free text, category
// tags, and an inclusive date window. Parts join with AND; categories join
// with OR; an entirely empty query renders as the universal match.
func BuildQuery(freeText string, categories []string, from, to time.Time) string {
	var parts []string

	if s := strings.TrimSpace(freeText); s != "" {
		parts = append(parts, s)
	}

	if len(categories) > 0 {
		terms := make([]string, len(categories))
		for i, c := range categories {
			terms[i] = "cat:" + c
		}
		parts = append(parts, "("+strings.Join(terms, " OR ")+")")
	}

	if !from.IsZero() || !to.IsZero() {
		fromPart := earliestSubmission
		if !from.IsZero() {
			fromPart = from.Format("20060102")
		}
		toPart := time.Now().Format("20060102")
		if !to.IsZero() {
			toPart = to.Format("20060102")
		}
		parts = append(parts, fmt.Sprintf("submittedDate:[%s0000 TO %s2359]", fromPart, toPart))
	}

	if len(parts) == 0 {
		return "all:*"
	}
	return strings.Join(parts, " AND ")
}

// fieldCategories maps friendly research-field names to arXiv categories.
var fieldCategories = map[string][]string{
	"ai":       {"cs.AI", "cs.LG", "stat.ML"},
	"robotics": {"cs.RO"},
	"cv":       {"cs.CV", "eess.IV"},
	"nlp":      {"cs.CL"},
	"physics":  {"physics.comp-ph", "cond-mat", "quant-ph"},
	"math":     {"math.OC", "math.ST", "math.NA"},
	"stat":     {"stat.ML", "stat.ME", "stat.AP"},
	"eess":     {"eess.IV", "eess.SP", "eess.AS"},
	"q-bio":    {"q-bio.QM", "q-bio.GN", "q-bio.MN"},
	"all":      {"cs.AI", "cs.LG", "cs.RO", "cs.CV", "cs.CL", "cs.CR", "cs.DC", "cs.DS", "cs.HC", "cs.IR"},
}

// categoryPrefixes identify tokens that are already raw arXiv categories.
var categoryPrefixes = []string{"cs.", "stat.", "math.", "physics.", "eess.", "q-bio.", "quant-ph", "cond-mat"}

// ResolveFieldCategories expands a field expression into a category list.
// Expressions combine field names or raw categories with "+", "|", or
// "or"; all operators mean union. The intersection spellings "&" and
// "and" are accepted but demoted to union with a warning, since the
// upstream query grammar cannot express category intersection.
// Unrecognized tokens pass through as-is with a warning.
func ResolveFieldCategories(expr string, w io.Writer) []string {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil
	}

	lowered := strings.ToLower(expr)
	if strings.Contains(lowered, "&") || strings.Contains(lowered, " and ") {
		fmt.Fprintf(w, "warning: category intersection is not supported upstream; treating %q as a union\n", expr)
	}

	var categories []string
	seen := make(map[string]bool)
	add := func(cats ...string) {
		for _, c := range cats {
			if !seen[c] {
				seen[c] = true
				categories = append(categories, c)
			}
		}
	}

	for _, token := range splitFieldExpr(expr) {
		key := strings.ToLower(token)
		if cats, ok := fieldCategories[key]; ok {
			add(cats...)
			continue
		}
		if isRawCategory(token) {
			add(token)
			continue
		}
		fmt.Fprintf(w, "warning: unrecognized field %q used as a raw category\n", token)
		add(token)
	}
	return categories
}

// splitFieldExpr breaks a field expression on the union and intersection
// separators, returning the trimmed non-empty tokens.
func splitFieldExpr(expr string) []string {
	norm := expr
	for _, sep := range []string{" and ", " AND ", " or ", " OR "} {
		norm = strings.ReplaceAll(norm, sep, "+")
	}
	norm = strings.ReplaceAll(norm, "&", "+")
	norm = strings.ReplaceAll(norm, "|", "+")

	var tokens []string
	for _, t := range strings.Split(norm, "+") {
		if t = strings.TrimSpace(t); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

func isRawCategory(token string) bool {
	for _, p := range categoryPrefixes {
		if strings.HasPrefix(token, p) {
			return true
		}
	}
	return false
}

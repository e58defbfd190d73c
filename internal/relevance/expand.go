// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package relevance

import "strings"

// Expand returns the keywords together with their synonyms and
// abbreviation expansions. Expansion is bidirectional: a short form
// pulls in its long form and a long form pulls in its short form.
// Expansion is a single pass, not a closure; original tokens come
// first and duplicates are dropped.
func (d Dictionary) Expand(keywords []string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(term string) {
		if !seen[term] {
			seen[term] = true
			out = append(out, term)
		}
	}

	for _, kw := range keywords {
		add(kw)
	}
	for _, kw := range keywords {
		lower := strings.ToLower(kw)
		if full, ok := d.Abbreviations[lower]; ok {
			add(full)
		}
		for _, syn := range d.Synonyms[lower] {
			add(syn)
		}
		for abbr, full := range d.Abbreviations {
			if lower == full {
				add(abbr)
			}
		}
	}
	return out
}

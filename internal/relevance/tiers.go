package relevance

import "strings"

// ParseTiers scans a raw interest list for tier marker comments and
// returns the weight multiplier of every keyword that follows one.
// Comment lines start with "#"; a comment matching no marker leaves the
// current tier unchanged. Keys are the trimmed keyword lines.
func (d Dictionary) ParseTiers(rawInterest []string) map[string]float64 {
	weights := make(map[string]float64)
	current := tierDefault
	for _, line := range rawInterest {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if tier, ok := d.markerTier(line); ok {
				current = tier
			}
			continue
		}
		weights[line] = d.weightOf(current)
	}
	return weights
}

func (d Dictionary) markerTier(comment string) (string, bool) {
	for _, m := range d.TierMarkers {
		for _, token := range m.Tokens {
			if strings.Contains(comment, token) {
				return m.Tier, true
			}
		}
	}
	return "", false
}

func (d Dictionary) weightOf(tier string) float64 {
	if w, ok := d.TierWeights[tier]; ok {
		return w
	}
	return 1.0
}

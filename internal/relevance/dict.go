// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package relevance

// Dictionary is the immutable vocabulary shared by the expander, the
// required-keyword gate, and the scorer. Lookup keys are lowercase.
type Dictionary struct {
	// Synonyms maps a keyword to terms treated as equivalent.
	Synonyms map[string][]string
	// Abbreviations maps a short form to its long form. Expansion is
	// bidirectional.
	Abbreviations map[string]string
	// DomainWeights boosts papers whose categories sit in a tracked
	// research domain. Keys are raw category tags.
	DomainWeights map[string]float64
	// TierMarkers recognize the comment lines that open a weight tier
	// in a raw interest list.
	TierMarkers []TierMarker
	// TierWeights maps a tier name to its multiplier. The "default"
	// entry applies to unmarked keywords.
	TierWeights map[string]float64
}

// TierMarker promotes every keyword after a matching comment line to
// the named weight tier.
type TierMarker struct {
	Tier   string
	Tokens []string
}

const (
	tierCore     = "core"
	tierExtended = "extended"
	tierRelated  = "related"
	tierDefault  = "default"
)

// DefaultDictionary returns the built-in vocabulary.
func DefaultDictionary() Dictionary {
	return Dictionary{
		Synonyms: map[string][]string{
			"robot":       {"robotics", "robotic", "autonomous agent", "android", "humanoid"},
			"ai":          {"artificial intelligence", "machine intelligence", "intelligent system"},
			"ml":          {"machine learning", "statistical learning", "automated learning"},
			"dl":          {"deep learning", "neural network", "neural net", "deep neural network"},
			"cv":          {"computer vision", "visual perception", "image analysis", "visual recognition"},
			"nlp":         {"natural language processing", "language processing", "text processing"},
			"llm":         {"large language model", "language model", "generative model"},
			"vla":         {"vision language action", "vision-language-action", "multimodal action"},
			"slam":        {"simultaneous localization and mapping", "localization and mapping"},
			"rl":          {"reinforcement learning", "reward learning", "policy learning"},
			"transformer": {"attention mechanism", "self-attention", "multi-head attention"},
		},
		Abbreviations: map[string]string{
			"ai":   "artificial intelligence",
			"ml":   "machine learning",
			"dl":   "deep learning",
			"cv":   "computer vision",
			"nlp":  "natural language processing",
			"llm":  "large language model",
			"vla":  "vision language action",
			"slam": "simultaneous localization and mapping",
			"rl":   "reinforcement learning",
			"gnn":  "graph neural network",
			"cnn":  "convolutional neural network",
			"rnn":  "recurrent neural network",
			"lstm": "long short term memory",
			"bert": "bidirectional encoder representations from transformers",
			"gpt":  "generative pre-trained transformer",
		},
		DomainWeights: map[string]float64{
			"cs.AI": 1.5,
			"cs.LG": 1.4,
			"cs.RO": 1.3,
			"cs.CV": 1.2,
			"cs.CL": 1.2,
		},
		TierMarkers: []TierMarker{
			{Tier: tierCore, Tokens: []string{"🎯", "核心概念", "高权重"}},
			{Tier: tierExtended, Tokens: []string{"🔧", "扩展概念", "中权重"}},
			{Tier: tierRelated, Tokens: []string{"📝", "相关概念", "标准权重"}},
		},
		TierWeights: map[string]float64{
			tierCore:     2.5,
			tierExtended: 1.5,
			tierRelated:  1.0,
			tierDefault:  1.0,
		},
	}
}

// domainRelevance is the strongest domain weight among the paper's
// categories, with a floor of 1.0.
func (d Dictionary) domainRelevance(categories []string) float64 {
	weight := 1.0
	for _, c := range categories {
		if w, ok := d.DomainWeights[c]; ok && w > weight {
			weight = w
		}
	}
	return weight
}

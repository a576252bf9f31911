package normalize

import "strings"

// FallbackPolicy controls what an enum Table does with a non-empty value that
// matches no known synonym.
//
// The asymmetry across fields is deliberate and inherited from the source
// data contract: gender substitutes a generic "Other" so the column stays
// within its enum, while device/plan/content-type/sentiment pass the trimmed
// original through and let validation or the store decide. Keeping the policy
// explicit per table makes that a configuration fact instead of a surprise.
type FallbackPolicy int

const (
	// PassThrough returns the trimmed original value unchanged.
	PassThrough FallbackPolicy = iota
	// Substitute returns the table's fallback value.
	Substitute
)

// Table is a case-insensitive synonym table mapping raw labels to canonical
// enum values.
type Table struct {
	synonyms map[string]string
	policy   FallbackPolicy
	fallback string
}

// Normalize maps a raw label to its canonical form. Empty input stays empty;
// unknown input is resolved per the table's fallback policy.
func (t Table) Normalize(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return ""
	}
	if canon, ok := t.synonyms[strings.ToLower(trimmed)]; ok {
		return canon
	}
	if t.policy == Substitute {
		return t.fallback
	}
	return trimmed
}

// Values returns the canonical labels of the table, for membership checks.
func (t Table) Values() map[string]struct{} {
	out := make(map[string]struct{}, len(t.synonyms))
	for _, v := range t.synonyms {
		out[v] = struct{}{}
	}
	return out
}

// Gender maps common gender labels and abbreviations. Unrecognized non-empty
// values become "Other".
var Gender = Table{
	synonyms: map[string]string{
		"m": "Male", "male": "Male",
		"f": "Female", "female": "Female",
		"prefer not to say": "Prefer not to say", "pnts": "Prefer not to say",
		"other": "Other", "o": "Other",
	},
	policy:   Substitute,
	fallback: "Other",
}

// Device maps viewing-device labels to canonical enum values.
var Device = Table{
	synonyms: map[string]string{
		"mobile":         "Mobile",
		"desktop":        "Desktop",
		"tablet":         "Tablet",
		"tv":             "TV",
		"smart tv":       "Smart TV",
		"smart_tv":       "Smart TV",
		"gaming console": "Gaming Console",
		"gaming_console": "Gaming Console",
		"laptop":         "Laptop",
		"other":          "Other",
	},
	policy: PassThrough,
}

// SubscriptionPlan maps plan labels, folding the "Premium plus" spellings.
var SubscriptionPlan = Table{
	synonyms: map[string]string{
		"basic":        "Basic",
		"standard":     "Standard",
		"premium":      "Premium",
		"premium+":     "Premium+",
		"premium plus": "Premium+",
		"premium_plus": "Premium+",
	},
	policy: PassThrough,
}

// ContentType maps catalog content-type labels.
var ContentType = Table{
	synonyms: map[string]string{
		"movie":           "Movie",
		"tv series":       "TV Series",
		"tv_series":       "TV Series",
		"documentary":     "Documentary",
		"stand-up comedy": "Stand-up Comedy",
		"stand_up_comedy": "Stand-up Comedy",
		"standup comedy":  "Stand-up Comedy",
		"limited series":  "Limited Series",
		"limited_series":  "Limited Series",
	},
	policy: PassThrough,
}

// Sentiment maps review sentiment labels; canonical form is lowercase.
var Sentiment = Table{
	synonyms: map[string]string{
		"positive": "positive",
		"negative": "negative",
		"neutral":  "neutral",
	},
	policy: PassThrough,
}

// Package governance defines the data residency and classification labels
// carried by every tenant scoped record, and the rules that decide whether an
// authorization context may touch a labelled record
package governance

import (
	"strings"

	perr "orgcore/internal/platform/errors"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Residency is a data residency zone
type Residency string

// Residency zones
const (
	ResidencyUKOnly   Residency = "UK_ONLY"
	ResidencyUKAndEEA Residency = "UK_AND_EEA"
	ResidencyGlobal   Residency = "GLOBAL"
)

// Residencies lists every known zone
var Residencies = []Residency{ResidencyUKOnly, ResidencyUKAndEEA, ResidencyGlobal}

// Classification is a data sensitivity level
type Classification string

// Classification levels, lowest first
const (
	ClassificationOfficial          Classification = "OFFICIAL"
	ClassificationOfficialSensitive Classification = "OFFICIAL_SENSITIVE"
	ClassificationSecret            Classification = "SECRET"
	ClassificationTopSecret         Classification = "TOP_SECRET"
)

// Classifications lists every known level in ascending order
var Classifications = []Classification{
	ClassificationOfficial,
	ClassificationOfficialSensitive,
	ClassificationSecret,
	ClassificationTopSecret,
}

var classificationRank = map[Classification]int{
	ClassificationOfficial:          1,
	ClassificationOfficialSensitive: 2,
	ClassificationSecret:            3,
	ClassificationTopSecret:         4,
}

// Valid reports whether r is a known zone
func (r Residency) Valid() bool {
	for _, z := range Residencies {
		if r == z {
			return true
		}
	}
	return false
}

// Valid reports whether c is a known level
func (c Classification) Valid() bool { return classificationRank[c] > 0 }

// Rank is the position of c in the ordering; 0 for unknown levels
func (c Classification) Rank() int { return classificationRank[c] }

// Dominates reports whether a holder cleared at c may see data labelled other
// Unknown levels on either side never dominate
func (c Classification) Dominates(other Classification) bool {
	rc, ro := c.Rank(), other.Rank()
	return rc > 0 && ro > 0 && rc >= ro
}

// Tag is the governance label pair attached to records and contexts
type Tag struct {
	Residency      Residency      `json:"dataResidency"`
	Classification Classification `json:"dataClassification"`
}

// Validate rejects unknown zones or levels
func (t Tag) Validate() error {
	var issues []perr.FieldIssue
	if !t.Residency.Valid() {
		issues = append(issues, perr.FieldIssue{Field: "dataResidency", Message: "unknown data residency"})
	}
	if !t.Classification.Valid() {
		issues = append(issues, perr.FieldIssue{Field: "dataClassification", Message: "unknown data classification"})
	}
	if len(issues) > 0 {
		return perr.Invalid(issues...)
	}
	return nil
}

// Permits reports whether a holder labelled t may read data labelled rec:
// residency must match exactly and t must dominate rec's classification
func (t Tag) Permits(rec Tag) bool {
	return t.Residency.Valid() && t.Residency == rec.Residency && t.Classification.Dominates(rec.Classification)
}

var upper = cases.Upper(language.Und)

func canonical(s string) string {
	s = upper.String(strings.TrimSpace(s))
	return strings.NewReplacer("-", "_", " ", "_").Replace(s)
}

// ParseResidency accepts case and separator variants like "uk-only"
func ParseResidency(s string) (Residency, error) {
	r := Residency(canonical(s))
	if !r.Valid() {
		return "", perr.Validationf("dataResidency", "unknown data residency %q", s)
	}
	return r, nil
}

// ParseClassification accepts case and separator variants like "official sensitive"
func ParseClassification(s string) (Classification, error) {
	c := Classification(canonical(s))
	if !c.Valid() {
		return "", perr.Validationf("dataClassification", "unknown data classification %q", s)
	}
	return c, nil
}

// ParseTag parses both labels
func ParseTag(residency, classification string) (Tag, error) {
	r, err := ParseResidency(residency)
	if err != nil {
		return Tag{}, err
	}
	c, err := ParseClassification(classification)
	if err != nil {
		return Tag{}, err
	}
	return Tag{Residency: r, Classification: c}, nil
}

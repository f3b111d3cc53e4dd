package layout

import "strings"

// Reserved is a label that appears on the record stride without being a
// record, such as a section header. A Reserved with Whole set only matches
// a label that equals Token; otherwise any label containing Token matches.
// Both comparisons ignore case.
type Reserved struct {
	Token string `yaml:"token" json:"token"`
	Whole bool   `yaml:"whole,omitempty" json:"whole,omitempty"`
}

// DefaultReserved returns the reserved labels shipped with the built-in
// templates. Short tokens that could be part of a team name are whole-label
// matches.
func DefaultReserved() []Reserved {
	return []Reserved{
		{Token: "allocation"},
		{Token: "summary"},
		{Token: "subtotal"},
		{Token: "total", Whole: true},
		{Token: "be", Whole: true},
		{Token: "fe", Whole: true},
		{Token: "qa", Whole: true},
	}
}

// Matches reports whether label is excluded by r.
func (r Reserved) Matches(label string) bool {
	label = strings.ToLower(strings.TrimSpace(label))
	token := strings.ToLower(r.Token)
	if token == "" {
		return false
	}
	if r.Whole {
		return label == token
	}
	return strings.Contains(label, token)
}

// IsReserved reports whether label matches any of the template's reserved
// labels.
func (t Template) IsReserved(label string) bool {
	for _, r := range t.Reserved {
		if r.Matches(label) {
			return true
		}
	}
	return false
}

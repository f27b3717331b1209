package classifier

import "strings"

// MemberOverride assigns Member to any name containing Substring.
type MemberOverride struct {
	Substring string
	Member    string
}

// DefaultMemberOverrides returns the fixed household override list.
// Order matters: the first match wins.
func DefaultMemberOverrides() []MemberOverride {
	return []MemberOverride{
		{Substring: "猫", Member: "Money"},
		{Substring: "王敏", Member: "双人成行"},
	}
}

// Attributor picks the household member a row belongs to.
type Attributor struct {
	overrides []MemberOverride
}

// NewAttributor builds an Attributor that checks overrides in declaration
// order. Overrides with an empty substring are dropped.
func NewAttributor(overrides []MemberOverride) *Attributor {
	a := &Attributor{overrides: make([]MemberOverride, 0, len(overrides))}
	for _, o := range overrides {
		if o.Substring == "" {
			continue
		}
		a.overrides = append(a.overrides, o)
	}
	return a
}

// Attribute returns the member of the first override found in name, or
// defaultMember when none matches.
func (a *Attributor) Attribute(name, defaultMember string) string {
	for _, o := range a.overrides {
		if strings.Contains(name, o.Substring) {
			return o.Member
		}
	}
	return defaultMember
}

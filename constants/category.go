package constants

import (
	"strings"
)

// SkillCategory groups technical skills on a profile.
type SkillCategory string

const (
	Programming SkillCategory = "programming"
	Frameworks  SkillCategory = "frameworks"
	Databases   SkillCategory = "databases"
	Cloud       SkillCategory = "cloud"
	Tools       SkillCategory = "tools"
	OtherSkills SkillCategory = "other"
)

// allCategories is also the display order used by summaries and exports.
var allCategories = []SkillCategory{
	Programming,
	Frameworks,
	Databases,
	Cloud,
	Tools,
	OtherSkills,
}

func SkillCategories() []SkillCategory {
	out := make([]SkillCategory, len(allCategories))
	copy(out, allCategories)
	return out
}

func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// Canonicalize maps a category label (including a few common synonyms) to a SkillCategory.
func Canonicalize(input string) (SkillCategory, bool) {
	if input == "" {
		return OtherSkills, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	synonyms := map[string]SkillCategory{
		"languages":             Programming,
		"programming languages": Programming,
		"libraries":             Frameworks,
		"framework":             Frameworks,
		"database":              Databases,
		"db":                    Databases,
		"devops":                Cloud,
		"cloud/devops":          Cloud,
		"infrastructure":        Cloud,
		"tool":                  Tools,
		"tooling":               Tools,
		"misc":                  OtherSkills,
	}

	if cat, ok := synonyms[normalized]; ok {
		return cat, true
	}

	for _, cat := range allCategories {
		if normalized == string(cat) {
			return cat, true
		}
	}

	return OtherSkills, false
}

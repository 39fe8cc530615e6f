package lexicon

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/joseph-ayodele/career-profile/constants"
)

// MatchSkills returns the canonical skill names found in text, in table order.
func (t *Tables) MatchSkills(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var out []string
	for _, p := range t.skillPatterns {
		if p.re.MatchString(text) {
			out = append(out, p.canonical)
		}
	}
	return out
}

// CanonicalSkill lowercases, collapses whitespace and resolves aliases.
func (t *Tables) CanonicalSkill(skill string) string {
	s := normalizeSkill(skill)
	if c, ok := t.aliases[s]; ok {
		return c
	}
	return s
}

// IsKnownSkill reports whether skill (after alias resolution) is in the keyword table.
func (t *Tables) IsKnownSkill(skill string) bool {
	_, ok := t.categoryOf[t.CanonicalSkill(skill)]
	return ok
}

// CategoryOf assigns skill to a fixed category. Multi-word skills are categorized by their
// first known token ("django rest framework" -> frameworks); unknown skills go to other.
func (t *Tables) CategoryOf(skill string) constants.SkillCategory {
	s := t.CanonicalSkill(skill)
	if cat, ok := t.categoryOf[s]; ok {
		return cat
	}
	tokens := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '/' || r == ',' || r == '(' || r == ')'
	})
	for _, tok := range tokens {
		if cat, ok := t.categoryOf[t.CanonicalSkill(tok)]; ok {
			return cat
		}
	}
	return constants.OtherSkills
}

// SectionHeader reports whether line opens a section. rest is inline content after a
// "Header:" prefix, empty for a bare header line.
func (t *Tables) SectionHeader(line string) (name, rest string, ok bool) {
	l := strings.TrimSpace(line)
	if l == "" || len(l) > 80 {
		return "", "", false
	}
	for _, s := range t.sections {
		if s.standalone != nil && s.standalone.MatchString(l) {
			return s.name, "", true
		}
		if s.inline != nil {
			if m := s.inline.FindStringSubmatch(l); m != nil {
				return s.name, strings.TrimSpace(m[1]), true
			}
		}
	}
	return "", "", false
}

// ClassifyFilename derives a document type from keywords in the file name.
// Keywords match as a token prefix ("certs" -> cert); keywords of six or more letters also
// match anywhere in the name ("myresume").
func (t *Tables) ClassifyFilename(name string) constants.DocumentType {
	stem := strings.ToLower(strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)))
	tokens := strings.FieldsFunc(stem, func(r rune) bool { return !unicode.IsLetter(r) })
	joined := strings.Join(tokens, "")
	for _, tk := range t.docTypes {
		for _, kw := range tk.keywords {
			for _, tok := range tokens {
				if strings.HasPrefix(tok, kw) {
					return tk.docType
				}
			}
			if len(kw) >= 6 && strings.Contains(joined, kw) {
				return tk.docType
			}
		}
	}
	return constants.OtherDocument
}

// Priority is the aggregation priority for a document type; lower wins.
func (t *Tables) Priority(dt constants.DocumentType) int {
	if p, ok := t.priorities[dt]; ok {
		return p
	}
	return constants.DefaultPriority
}

func (t *Tables) StrengthKeywords() []string  { return clone(t.strengthKeywords) }
func (t *Tables) ProfessionalWords() []string { return clone(t.professionalWords) }
func (t *Tables) FormalIndicators() []string  { return clone(t.formalIndicators) }
func (t *Tables) TitleKeywords() []string     { return clone(t.titleKeywords) }
func (t *Tables) FieldsOfStudy() []string     { return clone(t.fieldsOfStudy) }

func clone(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

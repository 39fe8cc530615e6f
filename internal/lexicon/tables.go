// Package lexicon loads the keyword tables that drive rule-based extraction:
// skill keywords and categories, section headers, filename classification,
// per-type priorities and the small word lists used by letter metrics.
//
// Tables are built once and never mutated afterwards; pass them into constructors.
package lexicon

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"

	"go.yaml.in/yaml/v4"

	"github.com/joseph-ayodele/career-profile/constants"
)

//go:embed default.yaml
var defaultYAML []byte

// Section names used by the structured extractor.
const (
	SectionSummary        = "summary"
	SectionObjective      = "objective"
	SectionExperience     = "experience"
	SectionEducation      = "education"
	SectionSkills         = "skills"
	SectionProjects       = "projects"
	SectionCertifications = "certifications"
	SectionAchievements   = "achievements"
	SectionCourses        = "courses"
)

type fileFormat struct {
	Skills        map[string][]string `yaml:"skills"`
	SkillAliases  map[string]string   `yaml:"skill_aliases"`
	Sections      []sectionSpec       `yaml:"sections"`
	DocumentTypes []typeSpec          `yaml:"document_types"`
	Priorities    map[string]int      `yaml:"priorities"`

	StrengthKeywords  []string `yaml:"strength_keywords"`
	ProfessionalWords []string `yaml:"professional_words"`
	FormalIndicators  []string `yaml:"formal_indicators"`
	TitleKeywords     []string `yaml:"title_keywords"`
	FieldsOfStudy     []string `yaml:"fields_of_study"`
}

type sectionSpec struct {
	Name       string   `yaml:"name"`
	Keywords   []string `yaml:"keywords"`
	Standalone []string `yaml:"standalone"`
}

type typeSpec struct {
	Type     string   `yaml:"type"`
	Keywords []string `yaml:"keywords"`
}

type skillPattern struct {
	canonical string
	re        *regexp.Regexp
}

type sectionMatcher struct {
	name       string
	inline     *regexp.Regexp // keyword alone or followed by ':'/'-' and content
	standalone *regexp.Regexp // keyword must be the whole line
}

type typeKeywords struct {
	docType  constants.DocumentType
	keywords []string
}

// Tables is the compiled, read-only form of the keyword file.
type Tables struct {
	skillPatterns []skillPattern
	categoryOf    map[string]constants.SkillCategory
	aliases       map[string]string
	sections      []sectionMatcher
	docTypes      []typeKeywords
	priorities    map[constants.DocumentType]int

	strengthKeywords  []string
	professionalWords []string
	formalIndicators  []string
	titleKeywords     []string
	fieldsOfStudy     []string
}

var defaultTables = sync.OnceValues(func() (*Tables, error) {
	return Parse(defaultYAML)
})

// Default returns the embedded tables. The embedded file is covered by tests, so a parse
// failure here is a programming error.
func Default() *Tables {
	t, err := defaultTables()
	if err != nil {
		panic(fmt.Sprintf("lexicon: embedded tables invalid: %v", err))
	}
	return t
}

// Load reads tables from path; an empty path yields Default().
func Load(path string) (*Tables, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon file: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse lexicon file %s: %w", path, err)
	}
	return t, nil
}

// Parse compiles a YAML keyword document.
func Parse(data []byte) (*Tables, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	if len(f.Skills) == 0 {
		return nil, fmt.Errorf("skills table is empty")
	}

	t := &Tables{
		categoryOf: map[string]constants.SkillCategory{},
		aliases:    map[string]string{},
		priorities: map[constants.DocumentType]int{},

		strengthKeywords:  lowerAll(f.StrengthKeywords),
		professionalWords: lowerAll(f.ProfessionalWords),
		formalIndicators:  lowerAll(f.FormalIndicators),
		titleKeywords:     lowerAll(f.TitleKeywords),
		fieldsOfStudy:     lowerAll(f.FieldsOfStudy),
	}

	byCategory := map[constants.SkillCategory][]string{}
	for label, skills := range f.Skills {
		cat, ok := constants.Canonicalize(label)
		if !ok {
			return nil, fmt.Errorf("unknown skill category %q", label)
		}
		byCategory[cat] = append(byCategory[cat], lowerAll(skills)...)
	}
	for alias, canonical := range f.SkillAliases {
		t.aliases[normalizeSkill(alias)] = normalizeSkill(canonical)
	}

	aliasesOf := map[string][]string{}
	for alias, canonical := range t.aliases {
		aliasesOf[canonical] = append(aliasesOf[canonical], alias)
	}
	for _, cat := range constants.SkillCategories() {
		for _, kw := range byCategory[cat] {
			kw = normalizeSkill(kw)
			if kw == "" {
				continue
			}
			if _, dup := t.categoryOf[kw]; dup {
				continue
			}
			t.categoryOf[kw] = cat
			alts := append([]string{kw}, aliasesOf[kw]...)
			t.skillPatterns = append(t.skillPatterns, skillPattern{canonical: kw, re: boundaryPattern(alts)})
		}
	}

	for _, s := range f.Sections {
		if s.Name == "" || len(s.Keywords)+len(s.Standalone) == 0 {
			return nil, fmt.Errorf("section group %q has no keywords", s.Name)
		}
		m := sectionMatcher{name: s.Name}
		if len(s.Keywords) > 0 {
			m.inline = regexp.MustCompile(`(?i)^(?:[#*•▪·>\-]+\s*|\d+[.)]\s*)?(?:` + alternation(s.Keywords) + `)\s*(?:[:\-–—]\s*(.*))?$`)
		}
		if len(s.Standalone) > 0 {
			m.standalone = regexp.MustCompile(`(?i)^(?:[#*•▪·>\-]+\s*)?(?:` + alternation(s.Standalone) + `)\s*:?$`)
		}
		t.sections = append(t.sections, m)
	}

	for _, ts := range f.DocumentTypes {
		dt, ok := constants.ParseDocumentType(ts.Type)
		if !ok {
			return nil, fmt.Errorf("unknown document type %q", ts.Type)
		}
		t.docTypes = append(t.docTypes, typeKeywords{docType: dt, keywords: lowerAll(ts.Keywords)})
	}

	for k, v := range f.Priorities {
		dt, ok := constants.ParseDocumentType(k)
		if !ok {
			return nil, fmt.Errorf("unknown document type %q in priorities", k)
		}
		if v < 1 {
			return nil, fmt.Errorf("priority for %s must be positive, got %d", k, v)
		}
		t.priorities[dt] = v
	}
	return t, nil
}

// boundaryPattern matches any of alts as a whole token; '+', '#' and '.' count as
// token characters so "c++" and "node.js" stay intact.
func boundaryPattern(alts []string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:^|[^\pL\pN+#.])(?:` + alternation(alts) + `)(?:$|[^\pL\pN+#])`)
}

// alternation quotes and joins alternatives, longest first.
func alternation(words []string) string {
	sorted := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			sorted = append(sorted, w)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	quoted := make([]string, len(sorted))
	for i, w := range sorted {
		quoted[i] = strings.ReplaceAll(regexp.QuoteMeta(w), `\ `, `\s+`)
		quoted[i] = strings.ReplaceAll(quoted[i], " ", `\s+`)
	}
	return strings.Join(quoted, "|")
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func normalizeSkill(s string) string {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	return strings.TrimRight(s, ".,;:")
}

package parsefields

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

const (
	maxAchievements   = 10
	maxCertifications = 10
)

var (
	reSkillSplit = regexp.MustCompile(`[,;•·|\n]+`)

	achievementPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:increased|reduced|improved|grew|boosted|cut|decreased|raised|lowered)\b[^.\n]{0,80}?\bby\s+\d+(?:\.\d+)?\s*%`),
		regexp.MustCompile(`(?i)\bled\s+(?:a\s+)?team\s+of\s+\d+(?:\s+[a-z]+)?`),
		regexp.MustCompile(`(?i)\bmanaged\s+(?:an?\s+)?(?:annual\s+)?(?:budget\s+of\s+)?\$\s?\d[\d,.]*(?:\s?(?:million|billion|thousand|[kmb])\b)?`),
		regexp.MustCompile(`(?i)\bdelivered\s+\d+\+?\s+[a-z]+(?:\s+[a-z]+)?`),
	}

	reInlineCert = regexp.MustCompile(`(?i)[^\n]*\b(?:(?:aws|microsoft|google|oracle|cisco|azure|comptia)\s+certified|certified\s+[a-z]+|certification\s+in|certificate\s+in)\b[^\n]*`)
)

// extractSkills matches the keyword table against text, then adds tokens from the skills
// section. Known skills are canonicalised; unknown tokens keep their first spelling.
func (x *Extractor) extractSkills(text, section string) []string {
	out := []string{}
	seen := map[string]bool{}
	add := func(s string) {
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, s)
	}
	for _, s := range x.tables.MatchSkills(text) {
		add(s)
	}
	for _, tok := range skillTokens(section) {
		if x.tables.IsKnownSkill(tok) {
			add(x.tables.CanonicalSkill(tok))
			continue
		}
		add(tok)
	}
	return out
}

// skillTokens splits a skills section into candidate skill names.
func skillTokens(section string) []string {
	var out []string
	for _, raw := range reSkillSplit.Split(section, -1) {
		tok := stripBullet(raw)
		if i := strings.LastIndex(tok, ":"); i >= 0 {
			// "Languages: Go" -> "Go"
			tok = tok[i+1:]
		}
		tok = strings.Trim(strings.TrimSpace(tok), ".-*")
		if !plausibleSkill(tok) {
			continue
		}
		out = append(out, strings.Join(strings.Fields(tok), " "))
	}
	return out
}

func plausibleSkill(tok string) bool {
	n := len([]rune(tok))
	if n < 2 || n > 40 || len(strings.Fields(tok)) > 4 {
		return false
	}
	return strings.IndexFunc(tok, func(r rune) bool { return !unicode.IsDigit(r) && !unicode.IsSpace(r) }) >= 0
}

// extractAchievements returns quantified phrases in order of appearance.
func extractAchievements(text string) []string {
	type hit struct {
		pos  int
		text string
	}
	var hits []hit
	for _, re := range achievementPatterns {
		for _, m := range re.FindAllStringIndex(text, -1) {
			hits = append(hits, hit{pos: m[0], text: strings.Join(strings.Fields(text[m[0]:m[1]]), " ")})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
	out := []string{}
	seen := map[string]bool{}
	for _, h := range hits {
		key := strings.ToLower(h.text)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, h.text)
		if len(out) == maxAchievements {
			break
		}
	}
	return out
}

// extractCertifications takes the certifications section line by line, or inline
// "certified"/"certification in" lines when the section is absent.
func extractCertifications(sm *sectionMap, section string, hasSection bool) []string {
	var candidates []string
	if hasSection {
		candidates = nonEmptyLines(section)
	} else {
		candidates = reInlineCert.FindAllString(sm.full, -1)
	}
	out := []string{}
	seen := map[string]bool{}
	for _, c := range candidates {
		c = strings.Trim(stripBullet(c), " ,;")
		if c == "" || len(c) > 120 {
			continue
		}
		key := strings.ToLower(c)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
		if len(out) == maxCertifications {
			break
		}
	}
	return out
}

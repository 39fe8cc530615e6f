package parsefields

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/joseph-ayodele/career-profile/internal/entity"
	"github.com/joseph-ayodele/career-profile/internal/lexicon"
)

const (
	maxEducation = 3
	maxCourses   = 10
)

var (
	reDegree      = regexp.MustCompile(`(?i)(?:\b(?:bachelor(?:'s)?|master's|masters?\s+(?:of|in|degree)|ph\.?\s?d|doctorate|associate(?:'s)?\s+degree|diploma|mba|bsc|msc|beng|meng|bba)\b|\b[bm]\.(?:s|a|sc|eng)\.)`)
	reInstitution = regexp.MustCompile(`(?i)\b(?:university|college|institute|school|academy|polytechnic)\b`)
	reFieldIn     = regexp.MustCompile(`\b(?i:in)\s+([A-Z][\w&]*(?:\s+(?:(?:and|of|&)\s+)?[A-Z][\w&]*){0,3})`)
	reGPA         = regexp.MustCompile(`(?i)\b(?:c?gpa|grade point average)\s*[:\-]?\s*(\d+(?:\.\d+)?(?:\s*/\s*\d+(?:\.\d+)?)?)`)
	reCourseCode  = regexp.MustCompile(`^[A-Z]{2,4}\s?\d{3,4}[A-Z]?\b`)
	rePartSplit   = regexp.MustCompile(`\s*,\s*|\s+[-–—|]\s+|\s+(?i:at)\s+`)
)

type eduBlock struct {
	degree      string
	institution string
	lines       []string
}

// parseEducationLine pulls degree and institution fragments out of one line such as
// "BSc Computer Science, University of Lagos, 2015 - 2019".
func parseEducationLine(line string) (degree, institution string) {
	clean := strings.Trim(stripDates(stripBullet(line)), " ,;|–—-()")
	for _, part := range rePartSplit.Split(clean, -1) {
		part = strings.Trim(part, " ,;|()")
		if part == "" {
			continue
		}
		if degree == "" && reDegree.MatchString(part) {
			degree = part
			continue
		}
		if institution == "" && reInstitution.MatchString(part) {
			institution = part
		}
	}
	if degree == "" && institution == "" {
		return "", ""
	}
	return degree, institution
}

func (x *Extractor) fieldOfStudy(text string) string {
	if m := reFieldIn.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	lower := strings.ToLower(text)
	for _, f := range x.tables.FieldsOfStudy() {
		if strings.Contains(lower, f) {
			return cases.Title(language.English).String(f)
		}
	}
	return ""
}

func findGPA(text string) string {
	if m := reGPA.FindStringSubmatch(text); m != nil {
		return strings.ReplaceAll(m[1], " ", "")
	}
	return ""
}

// extractEducation segments entries at degree and institution lines. Outside a section only
// lines naming a degree or an institution are considered.
func (x *Extractor) extractEducation(region string, fromSection bool) []entity.Education {
	var (
		blocks []*eduBlock
		cur    *eduBlock
	)
	for _, line := range nonEmptyLines(region) {
		degree, inst := parseEducationLine(line)
		if !fromSection && degree == "" && inst == "" {
			continue
		}
		start := cur == nil ||
			(degree != "" && cur.degree != "") ||
			(inst != "" && cur.institution != "" && degree == "")
		if start {
			cur = &eduBlock{}
			blocks = append(blocks, cur)
		}
		if cur.degree == "" && degree != "" {
			cur.degree = degree
		}
		if cur.institution == "" && inst != "" {
			cur.institution = inst
		}
		cur.lines = append(cur.lines, line)
	}

	out := make([]entity.Education, 0, len(blocks))
	for _, b := range blocks {
		if b.degree == "" && b.institution == "" {
			continue
		}
		text := strings.Join(b.lines, "\n")
		dates := orEmpty(findDates(text))
		out = append(out, entity.Education{
			Degree:         b.degree,
			Institution:    b.institution,
			FieldOfStudy:   x.fieldOfStudy(text),
			GPA:            findGPA(text),
			Dates:          dates,
			GraduationDate: latestDate(dates),
		})
		if len(out) == maxEducation {
			break
		}
	}
	return out
}

// extractCourses reads a courses section (comma or line separated) or, failing that,
// lines that start with a course code such as "CS101".
func extractCourses(sm *sectionMap) []string {
	var out []string
	seen := map[string]bool{}
	add := func(c string) {
		c = strings.Trim(stripBullet(c), " ,;.")
		key := strings.ToLower(c)
		if c == "" || seen[key] || len(out) >= maxCourses {
			return
		}
		seen[key] = true
		out = append(out, c)
	}
	if body, ok := sm.section(lexicon.SectionCourses); ok {
		for _, line := range nonEmptyLines(body) {
			for _, c := range strings.Split(line, ",") {
				add(c)
			}
		}
		return orEmpty(out)
	}
	for _, line := range nonEmptyLines(sm.full) {
		if reCourseCode.MatchString(line) {
			add(line)
		}
	}
	return orEmpty(out)
}

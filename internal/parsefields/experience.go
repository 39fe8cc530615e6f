package parsefields

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/joseph-ayodele/career-profile/internal/entity"
)

const maxExperience = 5

var (
	reBullet = regexp.MustCompile(`^\s*(?:[-*•▪·>◦]+|\d+[.)])\s+`)
	// Separators between position and company, checked in this order at the earliest hit.
	positionSeparators = []string{" at ", " @ ", " | ", " – ", " — ", " - "}
)

type expBlock struct {
	position string
	company  string
	lines    []string // every line of the entry, for dates and skills
	desc     []string
	sawDates bool
}

// splitPosition parses "Position at Company" style lines. Dates are removed first so
// "2021 - Present Senior Engineer at Acme" still parses.
func splitPosition(line string) (position, company string, ok bool) {
	if isBullet(line) {
		return "", "", false
	}
	l := strings.Trim(stripDates(line), " ,;|–—-()")
	if l == "" || strings.HasSuffix(l, ".") {
		return "", "", false
	}
	cut, sepLen := -1, 0
	for _, sep := range positionSeparators {
		if i := strings.Index(l, sep); i > 0 && (cut < 0 || i < cut) {
			cut, sepLen = i, len(sep)
		}
	}
	if cut < 0 {
		return "", "", false
	}
	position = strings.TrimSpace(l[:cut])
	company = strings.Trim(l[cut+sepLen:], " ,;|–—-()")
	if position == "" || company == "" {
		return "", "", false
	}
	if r := []rune(position)[0]; !unicode.IsUpper(r) {
		return "", "", false
	}
	if len(strings.Fields(position)) > 8 || len(strings.Fields(company)) > 10 {
		return "", "", false
	}
	return position, company, true
}

// extractExperience segments region into entries. In section mode every line belongs to some
// entry; in preamble mode contact and education lines are ignored and only entries with a
// recognisable position line are kept.
func (x *Extractor) extractExperience(region string, fromSection bool) []entity.Experience {
	var (
		blocks []*expBlock
		cur    *expBlock
	)
	for _, line := range nonEmptyLines(region) {
		if !fromSection && (isContactLine(line) || reDegree.MatchString(line) || reInstitution.MatchString(line)) {
			continue
		}
		pos, comp, isPos := splitPosition(line)
		dateLead := startsWithDate(line)

		start := false
		switch {
		case cur == nil:
			start = fromSection || isPos || dateLead
		case isPos && cur.position != "":
			start = true
		case dateLead && !isPos && cur.sawDates && (cur.position != "" || len(cur.desc) > 0):
			start = true
		}
		if start {
			cur = &expBlock{}
			blocks = append(blocks, cur)
		}
		if cur == nil {
			continue
		}
		cur.lines = append(cur.lines, line)
		hasDates := len(findDates(line)) > 0
		if hasDates {
			cur.sawDates = true
		}
		switch {
		case isPos && cur.position == "":
			cur.position, cur.company = pos, comp
		case hasDates && strings.Trim(stripDates(line), " ,;|–—-()") == "":
			// date-only line
		default:
			cur.desc = append(cur.desc, stripBullet(line))
		}
	}

	out := make([]entity.Experience, 0, len(blocks))
	for _, b := range blocks {
		if b.position == "" {
			if !fromSection || len(b.desc) == 0 {
				continue
			}
			// First content line stands in for the position.
			b.position = strings.Trim(stripDates(b.desc[0]), " ,;|–—-()")
			b.desc = b.desc[1:]
			if b.position == "" {
				continue
			}
		}
		text := strings.Join(b.lines, "\n")
		out = append(out, entity.Experience{
			Position:    b.position,
			Company:     b.company,
			Description: strings.Join(b.desc, "\n"),
			Dates:       orEmpty(findDates(text)),
			SkillsUsed:  x.tables.MatchSkills(text),
		})
		if len(out) == maxExperience {
			break
		}
	}
	return out
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

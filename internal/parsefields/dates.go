package parsefields

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	monthPattern = `(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?`
	// Longest forms first; Go alternation is leftmost-first.
	singleDatePattern = `(?:\b\d{1,2}/\d{1,2}/(?:19|20)\d{2}\b|\b\d{1,2}/(?:19|20)\d{2}\b|\b` + monthPattern + `\s+(?:19|20)\d{2}\b|\b(?:19|20)\d{2}\b)`

	// noYearSortKey sorts undated entries after everything else.
	noYearSortKey = 1900
)

var (
	reSingleDate = regexp.MustCompile(`(?i)` + singleDatePattern)
	reDateRange  = regexp.MustCompile(`(?i)(` + singleDatePattern + `)\s*(?:-|–|—|\bto\b|\buntil\b)\s*(` + singleDatePattern + `|\bpresent\b|\bcurrent\b|\bnow\b|\btoday\b)`)
	reYear       = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
	reDateLead   = regexp.MustCompile(`(?i)^\s*(?:[(\[]\s*)?` + singleDatePattern)
)

type dateHit struct {
	pos  int
	text string
}

// findDates returns date tokens in order of appearance, deduplicated. A range contributes both
// ends, so "2021 - Present" yields "2021" and "Present".
func findDates(text string) []string {
	var hits []dateHit
	masked := []byte(text)
	for _, m := range reDateRange.FindAllStringSubmatchIndex(text, -1) {
		hits = append(hits,
			dateHit{pos: m[2], text: text[m[2]:m[3]]},
			dateHit{pos: m[4], text: text[m[4]:m[5]]},
		)
		for i := m[0]; i < m[1]; i++ {
			masked[i] = ' '
		}
	}
	for _, m := range reSingleDate.FindAllStringIndex(string(masked), -1) {
		hits = append(hits, dateHit{pos: m[0], text: text[m[0]:m[1]]})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	out := make([]string, 0, len(hits))
	seen := map[string]bool{}
	for _, h := range hits {
		t := strings.Join(strings.Fields(h.text), " ")
		key := strings.ToLower(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

// stripDates removes date ranges and single dates from a line.
func stripDates(line string) string {
	line = reDateRange.ReplaceAllString(line, " ")
	line = reSingleDate.ReplaceAllString(line, " ")
	return strings.Join(strings.Fields(line), " ")
}

func startsWithDate(line string) bool {
	return reDateLead.MatchString(line)
}

// YearOf returns the first four-digit year in s, or 0.
func YearOf(s string) int {
	m := reYear.FindString(s)
	if m == "" {
		return 0
	}
	y, _ := strconv.Atoi(m)
	return y
}

// MaxYear is the largest four-digit year across dates, or 0 when none is present.
func MaxYear(dates ...string) int {
	best := 0
	for _, d := range dates {
		for _, m := range reYear.FindAllString(d, -1) {
			if y, _ := strconv.Atoi(m); y > best {
				best = y
			}
		}
	}
	return best
}

// SortYear is MaxYear with undated input mapped to 1900.
func SortYear(dates ...string) int {
	if y := MaxYear(dates...); y > 0 {
		return y
	}
	return noYearSortKey
}

// latestDate picks the token carrying the largest year; later tokens win ties.
func latestDate(dates []string) string {
	best, bestYear := "", 0
	for _, d := range dates {
		if y := MaxYear(d); y > 0 && y >= bestYear {
			best, bestYear = d, y
		}
	}
	return best
}

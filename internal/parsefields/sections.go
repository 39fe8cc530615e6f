package parsefields

import (
	"strings"

	"github.com/joseph-ayodele/career-profile/internal/lexicon"
)

// sectionMap is text split on recognised section headers.
type sectionMap struct {
	full     string
	preamble string
	bodies   map[string][]string
}

func splitSections(t *lexicon.Tables, text string) *sectionMap {
	sm := &sectionMap{full: text, bodies: map[string][]string{}}
	var (
		current  string
		preamble []string
	)
	for _, line := range strings.Split(text, "\n") {
		if name, rest, ok := t.SectionHeader(line); ok {
			current = name
			if _, seen := sm.bodies[name]; !seen {
				sm.bodies[name] = []string{}
			}
			if rest != "" {
				sm.bodies[name] = append(sm.bodies[name], rest)
			}
			continue
		}
		if current == "" {
			preamble = append(preamble, line)
			continue
		}
		sm.bodies[current] = append(sm.bodies[current], line)
	}
	sm.preamble = strings.TrimSpace(strings.Join(preamble, "\n"))
	return sm
}

// section returns the body of name and whether its header was present.
func (sm *sectionMap) section(name string) (string, bool) {
	lines, ok := sm.bodies[name]
	if !ok {
		return "", false
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), true
}

// region returns the section body, or the unsectioned text when the header is absent:
// the preamble when other headers exist, the whole text otherwise.
func (sm *sectionMap) region(name string) (body string, fromSection bool) {
	if s, ok := sm.section(name); ok {
		return s, true
	}
	if len(sm.bodies) == 0 {
		return sm.full, false
	}
	return sm.preamble, false
}

// firstParagraph returns the section's leading paragraph joined onto one line.
func (sm *sectionMap) firstParagraph(name string) string {
	body, ok := sm.section(name)
	if !ok {
		return ""
	}
	var parts []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if len(parts) > 0 {
				break
			}
			continue
		}
		parts = append(parts, line)
	}
	return strings.Join(parts, " ")
}

// nonEmptyLines trims each line and drops blanks.
func nonEmptyLines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// stripBullet removes list markers and numbering from the start of a line.
func stripBullet(line string) string {
	return strings.TrimSpace(reBullet.ReplaceAllString(line, ""))
}

func isBullet(line string) bool {
	return reBullet.MatchString(line)
}

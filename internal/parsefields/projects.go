package parsefields

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/career-profile/internal/entity"
)

const maxProjects = 5

var (
	reNumbered  = regexp.MustCompile(`^\s*\d+[.)]\s+`)
	reNamedLine = regexp.MustCompile(`^([A-Z][^:]{1,60}):\s*(.*)$`)
	reTechLabel = regexp.MustCompile(`(?i)^(?:technologies|tech(?:nology)? stack|stack|tools|built with)\s*:\s*(.*)$`)
	reOutcome   = regexp.MustCompile(`(?i)^(?:outcomes?|results?|impact)\s*:\s*(.*)$`)
	// Labels that describe a project rather than name one.
	projectFieldLabels = map[string]bool{
		"technologies": true, "technology stack": true, "tech stack": true, "stack": true, "tools": true,
		"built with": true, "role": true, "outcome": true, "outcomes": true, "result": true, "results": true,
		"impact": true, "link": true, "url": true, "description": true, "duration": true, "date": true,
		"dates": true, "team": true, "client": true,
	}
)

// namedProjectLine reports "Name: description" lines where Name is not a field label.
func namedProjectLine(line string) (name, rest string, ok bool) {
	m := reNamedLine.FindStringSubmatch(stripBullet(line))
	if m == nil {
		return "", "", false
	}
	if projectFieldLabels[strings.ToLower(strings.TrimSpace(m[1]))] {
		return "", "", false
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
}

// splitProjectBlocks breaks region at blank lines, numbered lines and "Name:" lines.
func splitProjectBlocks(region string) [][]string {
	var (
		blocks [][]string
		cur    []string
	)
	flush := func() {
		if len(cur) > 0 {
			blocks = append(blocks, cur)
			cur = nil
		}
	}
	for _, raw := range strings.Split(region, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			flush()
			continue
		}
		if _, _, named := namedProjectLine(line); named || reNumbered.MatchString(line) {
			flush()
		}
		cur = append(cur, line)
	}
	flush()
	return blocks
}

func (x *Extractor) extractProjects(region string) []entity.Project {
	out := []entity.Project{}
	for _, block := range splitProjectBlocks(region) {
		p := x.projectFromBlock(block)
		if p.Name == "" {
			continue
		}
		out = append(out, p)
		if len(out) == maxProjects {
			break
		}
	}
	return out
}

func (x *Extractor) projectFromBlock(block []string) entity.Project {
	var (
		p    entity.Project
		desc []string
		tech []string
	)
	first := stripBullet(block[0])
	if name, rest, ok := namedProjectLine(first); ok {
		p.Name = name
		if rest != "" {
			desc = append(desc, rest)
		}
	} else {
		p.Name = strings.Trim(first, " .,;:")
	}
	if len([]rune(p.Name)) > 80 {
		p.Name = ""
		return p
	}
	for _, line := range block[1:] {
		l := stripBullet(line)
		if m := reTechLabel.FindStringSubmatch(l); m != nil {
			tech = append(tech, skillTokens(m[1])...)
			continue
		}
		if m := reOutcome.FindStringSubmatch(l); m != nil {
			if o := strings.TrimSpace(m[1]); o != "" {
				p.Outcomes = append(p.Outcomes, o)
			}
			continue
		}
		desc = append(desc, l)
	}
	text := strings.Join(block, "\n")
	p.Description = strings.Join(desc, " ")
	p.Technologies = x.extractSkills(text, strings.Join(tech, "\n"))
	p.Outcomes = dedupeFold(append(p.Outcomes, extractAchievements(text)...))
	return p
}

// dedupeFold drops case-insensitive repeats, keeping first spelling and order.
func dedupeFold(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]bool{}
	for _, s := range in {
		key := strings.ToLower(strings.TrimSpace(s))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, strings.TrimSpace(s))
	}
	return out
}

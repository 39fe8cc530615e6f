package profiles

import (
	"sort"
	"strings"

	"github.com/joseph-ayodele/career-profile/constants"
	"github.com/joseph-ayodele/career-profile/internal/entity"
	"github.com/joseph-ayodele/career-profile/internal/parsefields"
)

const (
	maxAchievements = 10
	maxProjects     = 8
)

// accumulator collects contributions from documents in priority order.
type accumulator struct {
	personal       entity.PersonalInfo
	objective      string
	experience     []entity.Experience
	education      []entity.Education
	skills         map[constants.SkillCategory][]string
	certifications []entity.Certification
	achievements   []entity.Achievement
	projects       []entity.Project
	writingSamples []entity.WritingStyle
	strengths      []string
}

func newAccumulator() *accumulator {
	return &accumulator{skills: make(map[constants.SkillCategory][]string)}
}

func (b *Builder) addSkills(acc *accumulator, skills []string) {
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		cat := b.tables.CategoryOf(s)
		acc.skills[cat] = append(acc.skills[cat], s)
	}
}

// add folds one decoded record into acc. title names the source document and stands in
// for a missing certification, project or achievement name.
func (b *Builder) add(acc *accumulator, rec *entity.StructuredRecord, title string) {
	switch rec.DocumentType {
	case constants.MasterCV:
		cv := rec.CV
		acc.personal.Merge(cv.PersonalInfo)
		if acc.objective == "" {
			acc.objective = cv.Objective
		}
		acc.experience = append(acc.experience, cv.WorkExperience...)
		acc.education = append(acc.education, cv.Education...)
		b.addSkills(acc, cv.Skills)
		for _, c := range cv.Certifications {
			acc.certifications = append(acc.certifications, entity.Certification{Name: c})
		}
		for _, a := range cv.Achievements {
			acc.achievements = append(acc.achievements, entity.Achievement{Title: a})
		}
		acc.projects = append(acc.projects, cv.Projects...)

	case constants.CoverLetter:
		acc.writingSamples = append(acc.writingSamples, rec.CoverLetter.WritingStyle)
		acc.strengths = append(acc.strengths, rec.CoverLetter.KeyPhrases...)

	case constants.Certificate:
		c := rec.Certificate
		acc.certifications = append(acc.certifications, entity.Certification{
			Name:   orDefault(c.CertificationName, title),
			Issuer: c.IssuingOrganization,
			Date:   firstOf(c.IssueDate),
			Skills: c.SkillsValidated,
		})
		b.addSkills(acc, c.SkillsValidated)

	case constants.Transcript:
		t := rec.Transcript
		acc.education = append(acc.education, entity.Education{
			Degree:         t.DegreeProgram,
			Institution:    t.Institution,
			FieldOfStudy:   t.FieldOfStudy,
			GPA:            t.GPA,
			Dates:          t.Dates,
			GraduationDate: t.GraduationDate,
			Courses:        t.Courses,
		})

	case constants.Portfolio:
		p := rec.Portfolio
		acc.projects = append(acc.projects, p.Projects...)
		b.addSkills(acc, p.Technologies)
		for _, a := range p.Achievements {
			acc.achievements = append(acc.achievements, entity.Achievement{Title: a})
		}

	case constants.Recommendation:
		acc.strengths = append(acc.strengths, rec.Recommendation.StrengthsMentioned...)

	case constants.ProjectDoc:
		p := rec.ProjectDoc
		acc.projects = append(acc.projects, entity.Project{
			Name:         orDefault(p.ProjectName, title),
			Description:  p.Description,
			Technologies: p.Technologies,
			Outcomes:     p.Outcomes,
		})
		b.addSkills(acc, p.Technologies)

	case constants.Achievement:
		a := rec.Achievement
		acc.achievements = append(acc.achievements, entity.Achievement{
			Title:        orDefault(a.AchievementName, title),
			Organization: a.AwardingOrganization,
			Date:         firstOf(a.DateReceived),
			Description:  a.Description,
		})
	}
}

// finish deduplicates, sorts and caps the collections.
func (acc *accumulator) finish() {
	for cat, list := range acc.skills {
		acc.skills[cat] = dedupeBy(list, func(s string) string { return strings.ToLower(s) })
	}

	acc.experience = dedupeBy(acc.experience, func(e entity.Experience) string {
		// the date set keeps separate stints at one employer apart
		return strings.ToLower(strings.Join([]string{
			strings.TrimSpace(e.Position), strings.TrimSpace(e.Company), strings.Join(e.Dates, ","),
		}, "|"))
	})
	sort.SliceStable(acc.experience, func(i, j int) bool {
		return parsefields.SortYear(acc.experience[i].Dates...) > parsefields.SortYear(acc.experience[j].Dates...)
	})

	sort.SliceStable(acc.education, func(i, j int) bool {
		return educationYear(acc.education[i]) > educationYear(acc.education[j])
	})

	acc.certifications = dedupeBy(acc.certifications, func(c entity.Certification) string {
		return strings.ToLower(strings.TrimSpace(c.Name))
	})

	acc.achievements = capped(dedupeBy(acc.achievements, func(a entity.Achievement) string {
		return strings.ToLower(strings.Join([]string{a.Title, a.Organization, a.Date, a.Description}, "|"))
	}), maxAchievements)

	named := acc.projects[:0]
	for _, p := range acc.projects {
		if strings.TrimSpace(p.Name) != "" {
			named = append(named, p)
		}
	}
	acc.projects = capped(dedupeBy(named, func(p entity.Project) string {
		return strings.ToLower(strings.TrimSpace(p.Name))
	}), maxProjects)
}

// skillSet lays the categorized skills out over every fixed category.
func (acc *accumulator) skillSet() entity.SkillSet {
	out := entity.NewSkillSet()
	for cat, list := range acc.skills {
		out[cat] = list
	}
	return out
}

func educationYear(e entity.Education) int {
	if e.GraduationDate != "" {
		if y := parsefields.MaxYear(e.GraduationDate); y > 0 {
			return y
		}
	}
	return parsefields.SortYear(e.Dates...)
}

// dedupeBy keeps the first element for each key.
func dedupeBy[T any](in []T, key func(T) string) []T {
	seen := make(map[string]struct{}, len(in))
	out := make([]T, 0, len(in))
	for _, v := range in {
		k := key(v)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out
}

func capped[T any](in []T, n int) []T {
	if len(in) > n {
		return in[:n]
	}
	return in
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func firstOf(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

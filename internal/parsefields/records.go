package parsefields

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/career-profile/internal/entity"
	"github.com/joseph-ayodele/career-profile/internal/lexicon"
)

var (
	certNamePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?im)^\s*(?:certification|certificate|course|program(?:me)?)\s*(?:name|title)?\s*[:\-]\s*(.+)$`),
		regexp.MustCompile(`(?i)\b((?:aws|microsoft|google|oracle|cisco|azure|comptia)\s+certified[^\n.,]{0,60})`),
		regexp.MustCompile(`\b(?i:certified|certification in|certificate in|completion of|completed)\s+([A-Z][^\n.,]{2,80})`),
	}
	issuerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:issued|awarded|offered|provided|presented|granted)\s+by\s*:?\s*([^\n.,]{2,80})`),
		regexp.MustCompile(`(?im)^\s*(?:issuer|issuing organi[sz]ation|organi[sz]ation|provider)\s*[:\-]\s*(.+)$`),
		regexp.MustCompile(`\b(?i:from)\s+([A-Z][^\n.,]{2,80})`),
	}
	reProjectPrefix = regexp.MustCompile(`(?i)^project(?:\s+name|\s+title)?\s*[:\-]\s*`)
	reOutcomeLine   = regexp.MustCompile(`(?i)\b(?:result(?:s|ed)?|outcomes?|impact)\b`)
)

func firstSubmatch(text string, patterns []*regexp.Regexp) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if v := strings.Trim(m[1], " .,;:"); v != "" {
				return v
			}
		}
	}
	return ""
}

func firstMatchingLine(text string, re *regexp.Regexp) string {
	for _, line := range nonEmptyLines(text) {
		if re.MatchString(line) {
			return strings.Trim(stripDates(stripBullet(line)), " ,;|–—-()")
		}
	}
	return ""
}

// linesBetween joins lines[from:to] (clamped) with spaces.
func linesBetween(lines []string, from, to int) string {
	if from >= len(lines) {
		return ""
	}
	if to > len(lines) {
		to = len(lines)
	}
	return strings.Join(lines[from:to], " ")
}

func (x *Extractor) cv(text string) *entity.CVData {
	sm := splitSections(x.tables, text)

	expRegion, expSection := sm.region(lexicon.SectionExperience)
	eduRegion, eduSection := sm.region(lexicon.SectionEducation)
	skillSection, _ := sm.section(lexicon.SectionSkills)
	certSection, hasCerts := sm.section(lexicon.SectionCertifications)

	achievements := extractAchievements(text)
	if body, ok := sm.section(lexicon.SectionAchievements); ok {
		for _, line := range nonEmptyLines(body) {
			achievements = append(achievements, stripBullet(line))
		}
		achievements = dedupeFold(achievements)
		if len(achievements) > maxAchievements {
			achievements = achievements[:maxAchievements]
		}
	}

	projects := []entity.Project{}
	if body, ok := sm.section(lexicon.SectionProjects); ok {
		projects = x.extractProjects(body)
	}

	return &entity.CVData{
		PersonalInfo:   extractPersonalInfo(text),
		WorkExperience: x.extractExperience(expRegion, expSection),
		Education:      x.extractEducation(eduRegion, eduSection),
		Skills:         x.extractSkills(text, skillSection),
		Achievements:   achievements,
		Certifications: extractCertifications(sm, certSection, hasCerts),
		Projects:       projects,
		Summary:        sm.firstParagraph(lexicon.SectionSummary),
		Objective:      sm.firstParagraph(lexicon.SectionObjective),
	}
}

func (x *Extractor) certificate(text string) *entity.CertificateData {
	name := firstSubmatch(text, certNamePatterns)
	if name == "" {
		if lines := nonEmptyLines(text); len(lines) > 0 {
			name = strings.Trim(lines[0], " .,;:")
		}
	}
	return &entity.CertificateData{
		CertificationName:   name,
		IssuingOrganization: firstSubmatch(text, issuerPatterns),
		IssueDate:           orEmpty(findDates(text)),
		SkillsValidated:     x.extractSkills(text, ""),
	}
}

func (x *Extractor) transcript(text string) *entity.TranscriptData {
	sm := splitSections(x.tables, text)
	program := firstMatchingLine(text, reDegree)
	field := ""
	if program != "" {
		field = x.fieldOfStudy(program)
	}
	if field == "" {
		field = x.fieldOfStudy(text)
	}
	dates := orEmpty(findDates(text))
	return &entity.TranscriptData{
		Institution:    firstMatchingLine(text, reInstitution),
		DegreeProgram:  program,
		FieldOfStudy:   field,
		Courses:        extractCourses(sm),
		GPA:            findGPA(text),
		Dates:          dates,
		GraduationDate: latestDate(dates),
	}
}

func (x *Extractor) portfolio(text string) *entity.PortfolioData {
	sm := splitSections(x.tables, text)
	region, ok := sm.section(lexicon.SectionProjects)
	if !ok {
		region = text
	}
	return &entity.PortfolioData{
		Projects:     x.extractProjects(region),
		Technologies: x.extractSkills(text, ""),
		Achievements: extractAchievements(text),
	}
}

func (x *Extractor) projectDoc(text string) *entity.ProjectDocData {
	lines := nonEmptyLines(text)
	name := ""
	if len(lines) > 0 {
		name = strings.Trim(reProjectPrefix.ReplaceAllString(lines[0], ""), " .,;:")
	}
	var outcomes []string
	for _, line := range lines {
		if reOutcomeLine.MatchString(line) {
			outcomes = append(outcomes, stripBullet(line))
		}
	}
	return &entity.ProjectDocData{
		ProjectName:  name,
		Technologies: x.extractSkills(text, ""),
		Description:  linesBetween(lines, 1, 6),
		Outcomes:     dedupeFold(append(outcomes, extractAchievements(text)...)),
	}
}

func (x *Extractor) achievement(text string) *entity.AchievementData {
	lines := nonEmptyLines(text)
	name := ""
	if len(lines) > 0 {
		name = strings.Trim(lines[0], " .,;:")
	}
	org := firstSubmatch(text, issuerPatterns)
	if org == "" {
		org = firstMatchingLine(text, reInstitution)
	}
	return &entity.AchievementData{
		AchievementName:      name,
		AwardingOrganization: org,
		DateReceived:         orEmpty(findDates(text)),
		Description:          linesBetween(lines, 1, 4),
	}
}

func (x *Extractor) generic(text string) *entity.GenericData {
	return &entity.GenericData{
		KeyInformation: entity.KeyInformation{
			WordCount:    len(strings.Fields(text)),
			KeyPhrases:   extractKeyPhrases(text),
			Achievements: extractAchievements(text),
		},
		SkillsMentioned: x.extractSkills(text, ""),
		DatesFound:      orEmpty(findDates(text)),
	}
}

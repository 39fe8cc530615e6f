package profiles

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/career-profile/constants"
	"github.com/joseph-ayodele/career-profile/internal/entity"
)

var personaClosing = []string{
	"Always provide specific examples and quantified results when possible.",
	"Maintain a professional, confident tone suitable for recruiters and employers.",
	"Focus on value proposition and problem-solving capabilities.",
}

// topSkills takes up to perCategory skills from each non-empty category in display order.
func topSkills(skills entity.SkillSet, perCategory int) []string {
	var out []string
	for _, cat := range constants.SkillCategories() {
		out = append(out, capped(skills[cat], perCategory)...)
	}
	return out
}

// highestEducation is the first (most recent) education entry rendered as "Degree in Field".
func highestEducation(edu []entity.Education) string {
	if len(edu) == 0 || edu[0].Degree == "" {
		return ""
	}
	if edu[0].FieldOfStudy != "" {
		return edu[0].Degree + " in " + edu[0].FieldOfStudy
	}
	return edu[0].Degree
}

func professionalSummary(p *entity.ProfessionalProfile) string {
	var parts []string
	if p.YearsOfExperience > 0 {
		parts = append(parts, fmt.Sprintf("Professional with %d+ years of experience", p.YearsOfExperience))
	} else {
		parts = append(parts, "Skilled professional")
	}
	if top := capped(topSkills(p.TechnicalSkills, 2), 4); len(top) > 0 {
		parts = append(parts, "specializing in "+strings.Join(top, ", "))
	}
	if edu := highestEducation(p.EducationBackground); edu != "" {
		parts = append(parts, "with "+edu)
	}
	summary := strings.Join(parts, " ") + "."
	if n := len(p.Achievements); n > 0 {
		summary += fmt.Sprintf(" Demonstrated success with %d documented achievements.", n)
	}
	return summary
}

func personaDescription(p *entity.ProfessionalProfile) string {
	parts := []string{
		fmt.Sprintf("You are %s's professional AI representative.", p.FullName),
		"Speak confidently and professionally about the following background:",
	}

	var roles []string
	for _, e := range capped(p.WorkExperience, 3) {
		if e.Position != "" {
			roles = append(roles, e.Position)
		}
	}
	if len(roles) > 0 {
		parts = append(parts, "Recent roles: "+strings.Join(roles, ", "))
	}

	var expertise []string
	for _, cat := range constants.SkillCategories() {
		if list := p.TechnicalSkills[cat]; len(list) > 0 {
			expertise = append(expertise, fmt.Sprintf("%s: %s", cat, strings.Join(capped(list, 3), ", ")))
		}
	}
	if len(expertise) > 0 {
		parts = append(parts, "Technical expertise: "+strings.Join(capped(expertise, 3), "; "))
	}

	if len(p.EducationBackground) > 0 {
		e := p.EducationBackground[0]
		if e.Degree != "" && e.Institution != "" {
			parts = append(parts, fmt.Sprintf("Education: %s from %s", e.Degree, e.Institution))
		}
	}
	if n := len(p.Achievements); n > 0 {
		parts = append(parts, fmt.Sprintf("Notable achievements: %d documented accomplishments", n))
	}

	parts = append(parts, personaClosing...)
	return strings.Join(parts, " ")
}

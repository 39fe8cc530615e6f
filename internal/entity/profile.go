package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/career-profile/constants"
)

// SkillSet maps each fixed category to its skill names.
type SkillSet map[constants.SkillCategory][]string

// NewSkillSet returns a SkillSet holding an empty list for every category.
func NewSkillSet() SkillSet {
	s := make(SkillSet, len(constants.SkillCategories()))
	for _, c := range constants.SkillCategories() {
		s[c] = []string{}
	}
	return s
}

// Count is the total number of skills across categories.
func (s SkillSet) Count() int {
	n := 0
	for _, v := range s {
		n += len(v)
	}
	return n
}

// ProfessionalProfile is the canonical aggregate built from processed documents.
type ProfessionalProfile struct {
	ID                uuid.UUID `json:"id"`
	FullName          string    `json:"full_name"`
	ProfessionalTitle string    `json:"professional_title,omitempty"`
	Location          string    `json:"location,omitempty"`
	Email             string    `json:"email,omitempty"`
	Phone             string    `json:"phone,omitempty"`
	LinkedInURL       string    `json:"linkedin_url,omitempty"`
	GitHubURL         string    `json:"github_url,omitempty"`
	PortfolioURL      string    `json:"portfolio_url,omitempty"`

	ProfessionalSummary  string `json:"professional_summary,omitempty"`
	CareerObjective      string `json:"career_objective,omitempty"`
	AIPersonaDescription string `json:"ai_persona_description,omitempty"`

	YearsOfExperience   int             `json:"years_of_experience"`
	WorkExperience      []Experience    `json:"work_experience"`
	EducationBackground []Education     `json:"education_background"`
	TechnicalSkills     SkillSet        `json:"technical_skills"`
	Certifications      []Certification `json:"certifications"`
	Achievements        []Achievement   `json:"achievements"`
	ProjectsPortfolio   []Project       `json:"projects_portfolio"`
	TargetRoles         []string        `json:"target_roles"`
	KeyStrengths        []string        `json:"key_strengths"`

	IsActive                 bool       `json:"is_active"`
	LastUpdatedFromDocuments *time.Time `json:"last_updated_from_documents,omitempty"`
	CreatedAt                time.Time  `json:"created_at"`
	UpdatedAt                time.Time  `json:"updated_at"`
}

// ApplyPersonalInfo copies the non-empty fields of info onto the profile.
// Absent values never blank what is already stored.
func (p *ProfessionalProfile) ApplyPersonalInfo(info PersonalInfo) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&p.Email, info.Email)
	set(&p.Phone, info.Phone)
	set(&p.LinkedInURL, info.LinkedIn)
	set(&p.GitHubURL, info.GitHub)
	set(&p.PortfolioURL, info.Website)
	set(&p.Location, info.Location)
}

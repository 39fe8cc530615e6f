// Package profiles aggregates processed career documents into the canonical professional profile.
package profiles

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/career-profile/constants"
	"github.com/joseph-ayodele/career-profile/internal/common"
	"github.com/joseph-ayodele/career-profile/internal/entity"
	"github.com/joseph-ayodele/career-profile/internal/lexicon"
	"github.com/joseph-ayodele/career-profile/internal/parsefields"
	"github.com/joseph-ayodele/career-profile/internal/repository"
)

const maxKeyStrengths = 5

// Summary describes a profile after a rebuild.
type Summary struct {
	ProfileID           uuid.UUID  `json:"profile_id"`
	FullName            string     `json:"full_name"`
	ProfessionalTitle   string     `json:"professional_title,omitempty"`
	YearsOfExperience   int        `json:"years_of_experience"`
	SkillsCount         int        `json:"skills_count"`
	ExperienceCount     int        `json:"experience_count"`
	EducationCount      int        `json:"education_count"`
	CertificationsCount int        `json:"certifications_count"`
	AchievementsCount   int        `json:"achievements_count"`
	ProjectsCount       int        `json:"projects_count"`
	LastUpdated         *time.Time `json:"last_updated,omitempty"`
	AIPersonaReady      bool       `json:"ai_persona_ready"`

	DocumentsUsed      int `json:"documents_used"`
	DocumentsSkipped   int `json:"documents_skipped"`
	WritingSamples     int `json:"writing_samples"`
	StrengthsMentioned int `json:"strengths_mentioned"`
}

// Builder rebuilds profiles from the completed, active documents.
type Builder struct {
	docs     repository.DocumentRepository
	profiles repository.ProfileRepository
	tables   *lexicon.Tables
	now      func() time.Time
	logger   *slog.Logger
}

type Option func(*Builder)

// WithClock replaces the clock used for "present" date ranges and timestamps.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

func NewBuilder(docs repository.DocumentRepository, profiles repository.ProfileRepository, tables *lexicon.Tables, logger *slog.Logger, opts ...Option) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	if tables == nil {
		tables = lexicon.Default()
	}
	b := &Builder{
		docs:     docs,
		profiles: profiles,
		tables:   tables,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Rebuild recomputes the profile from every completed, active document and saves it in one
// write. With no such documents the stored profile is left alone and summarized as is.
func (b *Builder) Rebuild(ctx context.Context, profileID uuid.UUID) (Summary, error) {
	profile, err := b.profiles.GetByID(ctx, profileID)
	if err != nil {
		return Summary{}, common.WrapError(err, "load profile")
	}
	log := b.logger.With("profile_id", profileID, "full_name", profile.FullName)
	log.Info("profile rebuild started")

	docs, err := b.docs.ListAggregatable(ctx)
	if err != nil {
		return Summary{}, common.WrapError(err, "list documents")
	}
	if len(docs) == 0 {
		log.Warn("no processed documents found for profile rebuild")
		return summarize(profile), nil
	}

	acc, used, skipped := b.collect(log, docs)
	b.apply(profile, acc)
	now := b.now()
	profile.LastUpdatedFromDocuments = &now

	if err := b.profiles.Save(ctx, profile); err != nil {
		log.Error("failed to save rebuilt profile", "error", err)
		return Summary{}, common.WrapError(err, "save profile")
	}

	s := summarize(profile)
	s.DocumentsUsed = used
	s.DocumentsSkipped = skipped
	s.WritingSamples = len(acc.writingSamples)
	s.StrengthsMentioned = len(acc.strengths)
	log.Info("profile rebuilt",
		"documents_used", used,
		"documents_skipped", skipped,
		"skills", s.SkillsCount,
		"experience", s.ExperienceCount,
		"years_of_experience", s.YearsOfExperience,
	)
	return s, nil
}

// collect decodes each document in order. Documents whose structured data is missing or
// malformed are logged and skipped.
func (b *Builder) collect(log *slog.Logger, docs []*entity.CareerDocument) (acc *accumulator, used, skipped int) {
	acc = newAccumulator()
	for _, d := range docs {
		rec, err := decode(d)
		if err != nil {
			skipped++
			log.Warn("document skipped during aggregation",
				"document_id", d.ID,
				"document_type", d.DocumentType,
				"error", err,
			)
			continue
		}
		b.add(acc, rec, d.Title)
		used++
	}
	acc.finish()
	return acc, used, skipped
}

func decode(d *entity.CareerDocument) (*entity.StructuredRecord, error) {
	if len(d.StructuredData) == 0 {
		return nil, fmt.Errorf("%w: no structured data", common.ErrAggregationSkipped)
	}
	if err := parsefields.ValidateRecord(d.StructuredData); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrAggregationSkipped, err)
	}
	rec, err := d.Record()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrAggregationSkipped, err)
	}
	if rec.Payload() == nil {
		return nil, fmt.Errorf("%w: record has no %s payload", common.ErrAggregationSkipped, rec.DocumentType)
	}
	return rec, nil
}

// apply writes the accumulated collections and derived fields onto p.
func (b *Builder) apply(p *entity.ProfessionalProfile, acc *accumulator) {
	p.ApplyPersonalInfo(acc.personal)
	if p.CareerObjective == "" {
		p.CareerObjective = acc.objective
	}

	p.WorkExperience = acc.experience
	p.EducationBackground = acc.education
	p.TechnicalSkills = acc.skillSet()
	p.Certifications = acc.certifications
	p.Achievements = acc.achievements
	p.ProjectsPortfolio = acc.projects

	p.YearsOfExperience = yearsOfExperience(acc.experience, b.now().Year())
	p.KeyStrengths = keyStrengths(p)
	if p.ProfessionalSummary == "" {
		p.ProfessionalSummary = professionalSummary(p)
	}
	p.AIPersonaDescription = personaDescription(p)
}

// yearsOfExperience sums start-to-end spans of entries with at least two dates. An end
// without a year ("present") counts as the current year.
func yearsOfExperience(exp []entity.Experience, currentYear int) int {
	months := 0
	for _, e := range exp {
		if len(e.Dates) < 2 {
			continue
		}
		start := parsefields.YearOf(e.Dates[0])
		if start == 0 {
			continue
		}
		end := parsefields.YearOf(e.Dates[1])
		if end == 0 {
			end = currentYear
		}
		months += (end - start) * 12
	}
	return max(months/12, 0)
}

func keyStrengths(p *entity.ProfessionalProfile) []string {
	var out []string
	for _, cat := range constants.SkillCategories() {
		if len(p.TechnicalSkills[cat]) >= 3 {
			out = append(out, fmt.Sprintf("Strong %s skills", cat))
		}
	}
	if len(p.Achievements) >= 3 {
		out = append(out, "Proven track record of achievements")
	}
	if len(p.WorkExperience) >= 3 {
		out = append(out, "Extensive professional experience")
	}
	if len(p.Certifications) >= 2 {
		out = append(out, "Professional certifications")
	}
	if len(p.ProjectsPortfolio) >= 3 {
		out = append(out, "Strong project portfolio")
	}
	return capped(out, maxKeyStrengths)
}

func summarize(p *entity.ProfessionalProfile) Summary {
	return Summary{
		ProfileID:           p.ID,
		FullName:            p.FullName,
		ProfessionalTitle:   p.ProfessionalTitle,
		YearsOfExperience:   p.YearsOfExperience,
		SkillsCount:         p.TechnicalSkills.Count(),
		ExperienceCount:     len(p.WorkExperience),
		EducationCount:      len(p.EducationBackground),
		CertificationsCount: len(p.Certifications),
		AchievementsCount:   len(p.Achievements),
		ProjectsCount:       len(p.ProjectsPortfolio),
		LastUpdated:         p.LastUpdatedFromDocuments,
		AIPersonaReady:      p.AIPersonaDescription != "",
	}
}


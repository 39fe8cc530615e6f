package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/career-profile/internal/common"
	"github.com/joseph-ayodele/career-profile/internal/entity"
)

const profilesTable = "professional_profiles"

var profileColumns = []string{
	"id", "full_name", "professional_title", "location", "email", "phone", "linkedin_url", "github_url",
	"portfolio_url", "professional_summary", "career_objective", "ai_persona_description", "years_of_experience",
	"work_experience", "education_background", "technical_skills", "certifications", "achievements",
	"projects_portfolio", "target_roles", "key_strengths", "is_active", "last_updated_from_documents",
	"created_at", "updated_at",
}

type ProfileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.ProfessionalProfile, error)
	GetByName(ctx context.Context, fullName string) (*entity.ProfessionalProfile, error)
	// GetOrCreateByName returns the profile for fullName, creating an empty one on first use.
	GetOrCreateByName(ctx context.Context, fullName, title string) (*entity.ProfessionalProfile, error)
	// Save writes every column of p in one statement.
	Save(ctx context.Context, p *entity.ProfessionalProfile) error
	List(ctx context.Context) ([]*entity.ProfessionalProfile, error)
}

type profileRepo struct {
	db     *DB
	now    func() time.Time
	logger *slog.Logger
}

func NewProfileRepository(db *DB, logger *slog.Logger) ProfileRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &profileRepo{db: db, now: func() time.Time { return time.Now().UTC() }, logger: logger}
}

func (r *profileRepo) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.db.Dialect)
}

func (r *profileRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.ProfessionalProfile, error) {
	out, err := r.query(ctx, r.selectAll().Where(entsql.EQ("id", id.String())))
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("profile %s: %w", id, common.ErrNotFound)
	}
	return out[0], nil
}

func (r *profileRepo) GetByName(ctx context.Context, fullName string) (*entity.ProfessionalProfile, error) {
	out, err := r.query(ctx, r.selectAll().Where(entsql.EQ("full_name", fullName)))
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("profile %q: %w", fullName, common.ErrNotFound)
	}
	return out[0], nil
}

func (r *profileRepo) GetOrCreateByName(ctx context.Context, fullName, title string) (*entity.ProfessionalProfile, error) {
	fullName = strings.TrimSpace(fullName)
	v := common.NewValidator()
	v.Field("full_name", fullName, common.Required, common.MaxLength(200))
	if v.HasErrors() {
		return nil, v.Error()
	}

	p, err := r.GetByName(ctx, fullName)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	now := r.now()
	p = &entity.ProfessionalProfile{
		ID:                uuid.New(),
		FullName:          fullName,
		ProfessionalTitle: title,
		TechnicalSkills:   entity.NewSkillSet(),
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := r.Save(ctx, p); err != nil {
		return nil, err
	}
	r.logger.Info("profile created", "profile_id", p.ID, "full_name", fullName)
	return p, nil
}

func (r *profileRepo) Save(ctx context.Context, p *entity.ProfessionalProfile) error {
	if p == nil || p.ID == uuid.Nil {
		return common.InvalidArgumentError("profile id is required")
	}
	if p.TechnicalSkills == nil {
		p.TechnicalSkills = entity.NewSkillSet()
	}
	now := r.now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	collections := []any{
		orEmptySlice(p.WorkExperience), orEmptySlice(p.EducationBackground), p.TechnicalSkills,
		orEmptySlice(p.Certifications), orEmptySlice(p.Achievements), orEmptySlice(p.ProjectsPortfolio),
		orEmptySlice(p.TargetRoles), orEmptySlice(p.KeyStrengths),
	}
	encoded := make([]any, len(collections))
	for i, c := range collections {
		s, err := jsonArg(c)
		if err != nil {
			return fmt.Errorf("%w: encode profile collection: %v", common.ErrInternal, err)
		}
		encoded[i] = s
	}

	values := []any{
		p.ID.String(), p.FullName, p.ProfessionalTitle, p.Location, p.Email, p.Phone, p.LinkedInURL, p.GitHubURL,
		p.PortfolioURL, p.ProfessionalSummary, p.CareerObjective, p.AIPersonaDescription, p.YearsOfExperience,
	}
	values = append(values, encoded...)
	values = append(values, p.IsActive, nullableTime(p.LastUpdatedFromDocuments), p.CreatedAt.UTC(), p.UpdatedAt)

	query, args := r.builder().Insert(profilesTable).
		Columns(profileColumns...).
		Values(values...).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := r.db.Driver.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("failed to save profile", "profile_id", p.ID, "error", err)
		return fmt.Errorf("%w: save profile: %v", common.ErrDatabase, err)
	}
	return nil
}

func (r *profileRepo) List(ctx context.Context) ([]*entity.ProfessionalProfile, error) {
	return r.query(ctx, r.selectAll().OrderBy(entsql.Asc("full_name")))
}

func (r *profileRepo) selectAll() *entsql.Selector {
	return r.builder().Select(profileColumns...).From(r.builder().Table(profilesTable))
}

func (r *profileRepo) query(ctx context.Context, sel *entsql.Selector) ([]*entity.ProfessionalProfile, error) {
	query, args := sel.Query()
	rows, err := r.db.Driver.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("profile query failed", "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []*entity.ProfessionalProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	return out, nil
}

func scanProfile(s rowScanner) (*entity.ProfessionalProfile, error) {
	var (
		p                                                entity.ProfessionalProfile
		id                                               string
		work, edu, skills, certs, achievements, projects []byte
		roles, strengths                                 []byte
		lastUpdated, created, updated                    nullTime
	)
	err := s.Scan(&id, &p.FullName, &p.ProfessionalTitle, &p.Location, &p.Email, &p.Phone, &p.LinkedInURL,
		&p.GitHubURL, &p.PortfolioURL, &p.ProfessionalSummary, &p.CareerObjective, &p.AIPersonaDescription,
		&p.YearsOfExperience, &work, &edu, &skills, &certs, &achievements, &projects, &roles, &strengths,
		&p.IsActive, &lastUpdated, &created, &updated)
	if err != nil {
		return nil, fmt.Errorf("%w: scan profile: %v", common.ErrDatabase, err)
	}
	if p.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: bad profile id %q: %v", common.ErrDatabase, id, err)
	}

	targets := []struct {
		name string
		raw  []byte
		dst  any
	}{
		{"work_experience", work, &p.WorkExperience},
		{"education_background", edu, &p.EducationBackground},
		{"technical_skills", skills, &p.TechnicalSkills},
		{"certifications", certs, &p.Certifications},
		{"achievements", achievements, &p.Achievements},
		{"projects_portfolio", projects, &p.ProjectsPortfolio},
		{"target_roles", roles, &p.TargetRoles},
		{"key_strengths", strengths, &p.KeyStrengths},
	}
	for _, t := range targets {
		if len(t.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(t.raw, t.dst); err != nil {
			return nil, fmt.Errorf("%w: decode %s: %v", common.ErrDatabase, t.name, err)
		}
	}

	full := entity.NewSkillSet()
	for cat, list := range p.TechnicalSkills {
		if list != nil {
			full[cat] = list
		}
	}
	p.TechnicalSkills = full

	p.LastUpdatedFromDocuments = lastUpdated.ptr()
	p.CreatedAt = created.Time
	p.UpdatedAt = updated.Time
	return &p, nil
}

func orEmptySlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

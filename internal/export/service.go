package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/career-profile/constants"
	"github.com/joseph-ayodele/career-profile/internal/entity"
	"github.com/joseph-ayodele/career-profile/internal/repository"
)

// Sheet names, in workbook order.
const (
	SheetProfile        = "Profile"
	SheetExperience     = "Experience"
	SheetEducation      = "Education"
	SheetSkills         = "Skills"
	SheetCertifications = "Certifications"
	SheetAchievements   = "Achievements"
	SheetProjects       = "Projects"
	SheetDocuments      = "Documents"
)

// Service is a tiny façade over repositories that produces XLSX bytes for exports.
type Service struct {
	profiles repository.ProfileRepository
	docs     repository.DocumentRepository
	logger   *slog.Logger
}

func NewService(profiles repository.ProfileRepository, docs repository.DocumentRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{profiles: profiles, docs: docs, logger: logger}
}

// ExportProfileXLSX returns a workbook with one sheet per profile section plus a
// Documents sheet listing every document and its processing status.
func (s *Service) ExportProfileXLSX(ctx context.Context, profileID uuid.UUID) ([]byte, error) {
	start := time.Now()

	p, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	var docs []*entity.CareerDocument
	for _, st := range constants.Statuses() {
		batch, err := s.docs.ListByStatus(ctx, st, 0)
		if err != nil {
			return nil, fmt.Errorf("list %s documents: %w", st, err)
		}
		docs = append(docs, batch...)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// NewFile starts with Sheet1; rename it so the profile sheet is first and active.
	if err := f.SetSheetName("Sheet1", SheetProfile); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}
	w := &workbook{f: f}

	w.table(SheetProfile, []string{"Field", "Value"}, profileRows(p), 24, 80)

	rows := make([][]any, 0, len(p.WorkExperience))
	for _, e := range p.WorkExperience {
		rows = append(rows, []any{e.Position, e.Company, strings.Join(e.Dates, " - "), strings.Join(e.SkillsUsed, ", "), truncate(e.Description, 500)})
	}
	w.table(SheetExperience, []string{"Position", "Company", "Dates", "Skills", "Description"}, rows, 28, 28, 20, 30, 60)

	rows = rows[:0]
	for _, e := range p.EducationBackground {
		rows = append(rows, []any{e.Degree, e.Institution, e.FieldOfStudy, e.GPA, e.GraduationDate, strings.Join(e.Dates, " - ")})
	}
	w.table(SheetEducation, []string{"Degree", "Institution", "Field", "GPA", "Graduated", "Dates"}, rows, 28, 32, 24, 8, 12, 20)

	rows = rows[:0]
	for _, cat := range constants.SkillCategories() {
		for _, skill := range p.TechnicalSkills[cat] {
			rows = append(rows, []any{string(cat), skill})
		}
	}
	w.table(SheetSkills, []string{"Category", "Skill"}, rows, 16, 28)

	rows = rows[:0]
	for _, c := range p.Certifications {
		rows = append(rows, []any{c.Name, c.Issuer, c.Date, strings.Join(c.Skills, ", ")})
	}
	w.table(SheetCertifications, []string{"Name", "Issuer", "Date", "Skills"}, rows, 40, 28, 14, 30)

	rows = rows[:0]
	for _, a := range p.Achievements {
		rows = append(rows, []any{a.Title, a.Organization, a.Date, truncate(a.Description, 500)})
	}
	w.table(SheetAchievements, []string{"Title", "Organization", "Date", "Description"}, rows, 40, 28, 14, 60)

	rows = rows[:0]
	for _, pr := range p.ProjectsPortfolio {
		rows = append(rows, []any{pr.Name, strings.Join(pr.Technologies, ", "), strings.Join(pr.Outcomes, "; "), truncate(pr.Description, 500)})
	}
	w.table(SheetProjects, []string{"Name", "Technologies", "Outcomes", "Description"}, rows, 32, 30, 40, 60)

	rows = rows[:0]
	for _, d := range docs {
		processed := ""
		if d.ProcessedAt != nil {
			processed = d.ProcessedAt.UTC().Format(time.RFC3339)
		}
		rows = append(rows, []any{
			d.ID.String(), d.Title, string(d.DocumentType), d.FileName, d.FileSize,
			string(d.ProcessingStatus), d.Priority, d.IsActive,
			d.UploadedAt.UTC().Format(time.RFC3339), processed, truncate(d.ProcessingNotes, 140),
		})
	}
	w.table(SheetDocuments, []string{"ID", "Title", "Type", "File", "Size", "Status", "Priority", "Active", "Uploaded", "Processed", "Notes"},
		rows, 38, 32, 14, 32, 10, 12, 8, 8, 22, 22, 48)

	if w.err != nil {
		return nil, fmt.Errorf("xlsx build: %w", w.err)
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"profile_id", profileID.String(),
		"documents", len(docs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func profileRows(p *entity.ProfessionalProfile) [][]any {
	updated := ""
	if p.LastUpdatedFromDocuments != nil {
		updated = p.LastUpdatedFromDocuments.UTC().Format(time.RFC3339)
	}
	return [][]any{
		{"Full Name", p.FullName},
		{"Title", p.ProfessionalTitle},
		{"Email", p.Email},
		{"Phone", p.Phone},
		{"Location", p.Location},
		{"LinkedIn", p.LinkedInURL},
		{"GitHub", p.GitHubURL},
		{"Portfolio", p.PortfolioURL},
		{"Years of Experience", p.YearsOfExperience},
		{"Key Strengths", strings.Join(p.KeyStrengths, ", ")},
		{"Target Roles", strings.Join(p.TargetRoles, ", ")},
		{"Career Objective", p.CareerObjective},
		{"Professional Summary", p.ProfessionalSummary},
		{"AI Persona", p.AIPersonaDescription},
		{"Last Updated From Documents", updated},
	}
}

// workbook keeps the first error so sheet building reads straight through.
type workbook struct {
	f   *excelize.File
	err error
}

func (w *workbook) table(sheet string, headers []string, rows [][]any, widths ...float64) {
	if w.err != nil {
		return
	}
	if idx, _ := w.f.GetSheetIndex(sheet); idx == -1 {
		if _, err := w.f.NewSheet(sheet); err != nil {
			w.err = err
			return
		}
	}
	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := w.f.SetSheetRow(sheet, "A1", &header); err != nil {
		w.err = err
		return
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := w.f.SetSheetRow(sheet, cell, &r); err != nil {
			w.err = err
			return
		}
	}
	for i, width := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = w.f.SetColWidth(sheet, col, col, width)
	}
	_ = w.f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func truncate(s string, n int) string {
	if n <= 0 || len([]rune(s)) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

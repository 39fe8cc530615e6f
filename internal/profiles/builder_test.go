package profiles

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/career-profile/constants"
	"github.com/joseph-ayodele/career-profile/internal/common"
	"github.com/joseph-ayodele/career-profile/internal/entity"
	"github.com/joseph-ayodele/career-profile/internal/repository"
)

var clock2025 = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

type fakeDocs struct {
	repository.DocumentRepository
	mu   sync.Mutex
	docs []*entity.CareerDocument
}

func (f *fakeDocs) ListAggregatable(context.Context) ([]*entity.CareerDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*entity.CareerDocument(nil), f.docs...), nil
}

// fakeProfiles stores profiles as JSON so callers never share state with the store.
type fakeProfiles struct {
	repository.ProfileRepository
	mu    sync.Mutex
	rows  map[uuid.UUID][]byte
	saves int
}

func newFakeProfiles(t *testing.T, p *entity.ProfessionalProfile) *fakeProfiles {
	f := &fakeProfiles{rows: map[uuid.UUID][]byte{}}
	b, err := json.Marshal(p)
	require.NoError(t, err)
	f.rows[p.ID] = b
	return f
}

func (f *fakeProfiles) GetByID(_ context.Context, id uuid.UUID) (*entity.ProfessionalProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.rows[id]
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", id, common.ErrNotFound)
	}
	var p entity.ProfessionalProfile
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (f *fakeProfiles) Save(_ context.Context, p *entity.ProfessionalProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	f.rows[p.ID] = b
	f.saves++
	return nil
}

func newProfile() *entity.ProfessionalProfile {
	return &entity.ProfessionalProfile{
		ID:              uuid.New(),
		FullName:        "Jane Doe",
		TechnicalSkills: entity.NewSkillSet(),
		IsActive:        true,
	}
}

func completedDoc(t *testing.T, title string, rec entity.StructuredRecord) *entity.CareerDocument {
	t.Helper()
	rec.ProcessedAt = "2025-01-01T00:00:00Z"
	raw, err := json.Marshal(rec)
	require.NoError(t, err)
	return &entity.CareerDocument{
		ID:               uuid.New(),
		Title:            title,
		DocumentType:     rec.DocumentType,
		StructuredData:   raw,
		ProcessingStatus: constants.StatusCompleted,
		IsActive:         true,
	}
}

func cvDoc(t *testing.T, title string, cv entity.CVData) *entity.CareerDocument {
	t.Helper()
	if cv.WorkExperience == nil {
		cv.WorkExperience = []entity.Experience{}
	}
	if cv.Education == nil {
		cv.Education = []entity.Education{}
	}
	if cv.Projects == nil {
		cv.Projects = []entity.Project{}
	}
	for _, s := range []*[]string{&cv.Skills, &cv.Achievements, &cv.Certifications} {
		if *s == nil {
			*s = []string{}
		}
	}
	for i := range cv.WorkExperience {
		if cv.WorkExperience[i].Dates == nil {
			cv.WorkExperience[i].Dates = []string{}
		}
	}
	return completedDoc(t, title, entity.StructuredRecord{DocumentType: constants.MasterCV, CV: &cv})
}

func rebuild(t *testing.T, docs []*entity.CareerDocument, p *entity.ProfessionalProfile) (Summary, *entity.ProfessionalProfile, *fakeProfiles) {
	t.Helper()
	profiles := newFakeProfiles(t, p)
	b := NewBuilder(&fakeDocs{docs: docs}, profiles, nil, nil, WithClock(clock2025))
	sum, err := b.Rebuild(context.Background(), p.ID)
	require.NoError(t, err)
	got, err := profiles.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	return sum, got, profiles
}

func TestRebuild_NoDocumentsLeavesProfile(t *testing.T) {
	p := newProfile()
	p.Email = "keep@example.com"
	sum, got, store := rebuild(t, nil, p)

	assert.Equal(t, 0, store.saves)
	assert.Equal(t, "keep@example.com", got.Email)
	assert.Equal(t, p.ID, sum.ProfileID)
	assert.Zero(t, sum.SkillsCount)
	assert.False(t, sum.AIPersonaReady)
	assert.Nil(t, sum.LastUpdated)
}

func TestRebuild_UnknownProfile(t *testing.T) {
	b := NewBuilder(&fakeDocs{}, newFakeProfiles(t, newProfile()), nil, nil)
	_, err := b.Rebuild(context.Background(), uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRebuild_PriorityOrderPersonalInfo(t *testing.T) {
	first := cvDoc(t, "primary", entity.CVData{PersonalInfo: entity.PersonalInfo{Email: "a@x.com"}})
	second := cvDoc(t, "older", entity.CVData{PersonalInfo: entity.PersonalInfo{Email: "b@y.com", Phone: "+1 555 0100"}})

	p := newProfile()
	p.Location = "Lagos"
	_, got, _ := rebuild(t, []*entity.CareerDocument{first, second}, p)

	assert.Equal(t, "a@x.com", got.Email)
	assert.Equal(t, "+1 555 0100", got.Phone)
	// absent values never blank stored ones
	assert.Equal(t, "Lagos", got.Location)
}

func TestRebuild_Deduplication(t *testing.T) {
	cv := cvDoc(t, "cv", entity.CVData{
		Achievements: []string{"Increased sales by 20%", "increased SALES by 20%"},
		Projects:     []entity.Project{{Name: "Atlas"}, {Name: "ATLAS", Description: "dup"}, {Name: ""}},
		WorkExperience: []entity.Experience{
			{Position: "Engineer", Company: "Acme", Dates: []string{"2019"}},
			{Position: "engineer", Company: "ACME", Dates: []string{"2019"}},
		},
		Certifications: []string{"AWS Solutions Architect"},
		Skills:         []string{"python", "Python"},
	})
	cert := completedDoc(t, "aws.pdf", entity.StructuredRecord{
		DocumentType: constants.Certificate,
		Certificate: &entity.CertificateData{
			CertificationName:   "aws solutions architect",
			IssuingOrganization: "Amazon",
			IssueDate:           []string{},
			SkillsValidated:     []string{"aws"},
		},
	})

	sum, got, _ := rebuild(t, []*entity.CareerDocument{cv, cert}, newProfile())
	assert.Len(t, got.Achievements, 1)
	require.Len(t, got.ProjectsPortfolio, 1)
	assert.Equal(t, "Atlas", got.ProjectsPortfolio[0].Name)
	assert.Len(t, got.WorkExperience, 1)
	assert.Len(t, got.Certifications, 1)
	assert.Equal(t, []string{"python"}, got.TechnicalSkills[constants.Programming])
	assert.Equal(t, []string{"aws"}, got.TechnicalSkills[constants.Cloud])
	assert.Equal(t, 2, sum.DocumentsUsed)
}

func TestRebuild_ExperienceSortedByYear(t *testing.T) {
	cv := cvDoc(t, "cv", entity.CVData{WorkExperience: []entity.Experience{
		{Position: "Mid", Company: "B", Dates: []string{"2020", "2022"}},
		{Position: "Junior", Company: "A", Dates: []string{"2019"}},
		{Position: "Unknown", Company: "D"},
		{Position: "Senior", Company: "C", Dates: []string{"Jan 2024"}},
	}})

	_, got, _ := rebuild(t, []*entity.CareerDocument{cv}, newProfile())
	var order []string
	for _, e := range got.WorkExperience {
		order = append(order, e.Position)
	}
	assert.Equal(t, []string{"Senior", "Mid", "Junior", "Unknown"}, order)
}

func TestRebuild_YearsOfExperience(t *testing.T) {
	cv := cvDoc(t, "cv", entity.CVData{WorkExperience: []entity.Experience{
		{Position: "Engineer", Company: "Acme", Dates: []string{"2018", "2020"}},
		{Position: "Senior Engineer", Company: "Beta", Dates: []string{"2021", "present"}},
		{Position: "Intern", Company: "Gamma", Dates: []string{"2017"}},
	}})

	sum, got, _ := rebuild(t, []*entity.CareerDocument{cv}, newProfile())
	assert.Equal(t, 6, got.YearsOfExperience)
	assert.Equal(t, 6, sum.YearsOfExperience)
}

func TestYearsOfExperience_NeverNegative(t *testing.T) {
	exp := []entity.Experience{{Dates: []string{"2024", "2020"}}}
	assert.Equal(t, 0, yearsOfExperience(exp, 2025))
}

func TestRebuild_MalformedDocumentsSkipped(t *testing.T) {
	good := cvDoc(t, "cv", entity.CVData{Skills: []string{"go"}})
	bad := &entity.CareerDocument{
		ID:             uuid.New(),
		DocumentType:   constants.MasterCV,
		StructuredData: json.RawMessage(`{"document_type":"master_cv","processed_at":"x","skills":"oops"}`),
	}
	empty := &entity.CareerDocument{ID: uuid.New(), DocumentType: constants.Transcript}

	sum, got, _ := rebuild(t, []*entity.CareerDocument{bad, good, empty}, newProfile())
	assert.Equal(t, 1, sum.DocumentsUsed)
	assert.Equal(t, 2, sum.DocumentsSkipped)
	assert.Equal(t, []string{"go"}, got.TechnicalSkills[constants.Programming])
}

func TestRebuild_DerivedText(t *testing.T) {
	cv := cvDoc(t, "cv", entity.CVData{
		WorkExperience: []entity.Experience{
			{Position: "Engineer", Company: "Acme", Dates: []string{"2018", "2020"}},
			{Position: "Senior Engineer", Company: "Beta", Dates: []string{"2021", "present"}},
		},
		Education: []entity.Education{{
			Degree: "Bachelor of Science", Institution: "MIT", FieldOfStudy: "Computer Science", Dates: []string{"2017"},
		}},
		Skills:       []string{"python", "go", "java", "docker"},
		Achievements: []string{"Increased revenue by 20%"},
		Objective:    "Build reliable systems.",
	})

	sum, got, _ := rebuild(t, []*entity.CareerDocument{cv}, newProfile())
	assert.Equal(t,
		"Professional with 6+ years of experience specializing in python, go, docker with Bachelor of Science in Computer Science. Demonstrated success with 1 documented achievements.",
		got.ProfessionalSummary)
	assert.Equal(t, []string{"Strong programming skills"}, got.KeyStrengths)
	assert.Equal(t, "Build reliable systems.", got.CareerObjective)

	persona := got.AIPersonaDescription
	assert.Contains(t, persona, "You are Jane Doe's professional AI representative.")
	assert.Contains(t, persona, "Recent roles: Senior Engineer, Engineer")
	assert.Contains(t, persona, "Technical expertise: programming: python, go, java; cloud: docker")
	assert.Contains(t, persona, "Education: Bachelor of Science from MIT")
	assert.Contains(t, persona, "Notable achievements: 1 documented accomplishments")
	assert.True(t, sum.AIPersonaReady)
	require.NotNil(t, got.LastUpdatedFromDocuments)
	assert.True(t, clock2025().Equal(*got.LastUpdatedFromDocuments))
}

func TestRebuild_KeepsManualSummary(t *testing.T) {
	p := newProfile()
	p.ProfessionalSummary = "Hand written."
	_, got, _ := rebuild(t, []*entity.CareerDocument{cvDoc(t, "cv", entity.CVData{Skills: []string{"go"}})}, p)
	assert.Equal(t, "Hand written.", got.ProfessionalSummary)
}

func TestRebuild_Idempotent(t *testing.T) {
	docs := []*entity.CareerDocument{
		cvDoc(t, "cv", entity.CVData{
			PersonalInfo:   entity.PersonalInfo{Email: "a@b.com"},
			WorkExperience: []entity.Experience{{Position: "Engineer", Company: "Acme", Dates: []string{"2019", "present"}}},
			Skills:         []string{"python", "react", "postgresql", "docker", "git", "graphql"},
			Achievements:   []string{"Reduced costs by 30%"},
		}),
		completedDoc(t, "Atlas write-up", entity.StructuredRecord{
			DocumentType: constants.ProjectDoc,
			ProjectDoc: &entity.ProjectDocData{
				Technologies: []string{"go", "kubernetes"},
				Outcomes:     []string{},
			},
		}),
		completedDoc(t, "Award", entity.StructuredRecord{
			DocumentType: constants.Achievement,
			Achievement: &entity.AchievementData{
				AchievementName: "Engineer of the Year", DateReceived: []string{"2023"},
			},
		}),
	}

	p := newProfile()
	profiles := newFakeProfiles(t, p)
	b := NewBuilder(&fakeDocs{docs: docs}, profiles, nil, nil, WithClock(clock2025))

	snapshot := func() []byte {
		_, err := b.Rebuild(context.Background(), p.ID)
		require.NoError(t, err)
		got, err := profiles.GetByID(context.Background(), p.ID)
		require.NoError(t, err)
		got.UpdatedAt, got.CreatedAt, got.LastUpdatedFromDocuments = time.Time{}, time.Time{}, nil
		out, err := json.Marshal(got)
		require.NoError(t, err)
		return out
	}
	first := snapshot()
	second := snapshot()
	assert.JSONEq(t, string(first), string(second))

	got, err := profiles.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, got.ProjectsPortfolio, 1)
	assert.Equal(t, "Atlas write-up", got.ProjectsPortfolio[0].Name)
	assert.Contains(t, got.TechnicalSkills[constants.Cloud], "kubernetes")
	assert.Len(t, got.Achievements, 2)
}

func TestRebuild_SeparateStintsAtOneEmployer(t *testing.T) {
	cv := cvDoc(t, "cv", entity.CVData{WorkExperience: []entity.Experience{
		{Position: "Software Engineer", Company: "Google", Dates: []string{"2019", "Present"}},
		{Position: "Software Engineer", Company: "Google", Dates: []string{"2012", "2016"}},
	}})
	// the same stint listed again in an older CV
	older := cvDoc(t, "older cv", entity.CVData{WorkExperience: []entity.Experience{
		{Position: "software engineer", Company: "google", Dates: []string{"2012", "2016"}},
	}})

	sum, got, _ := rebuild(t, []*entity.CareerDocument{cv, older}, newProfile())
	require.Len(t, got.WorkExperience, 2)
	assert.Equal(t, []string{"2019", "Present"}, got.WorkExperience[0].Dates)
	assert.Equal(t, []string{"2012", "2016"}, got.WorkExperience[1].Dates)
	assert.Equal(t, 10, got.YearsOfExperience)
	assert.Equal(t, 2, sum.ExperienceCount)
}

func TestRebuild_Limits(t *testing.T) {
	var (
		achievements []string
		projects     []entity.Project
		experience   []entity.Experience
	)
	for i := 1; i <= 12; i++ {
		achievements = append(achievements, fmt.Sprintf("Award %d", i), fmt.Sprintf("award %d", i))
		projects = append(projects, entity.Project{Name: fmt.Sprintf("Project %d", i)}, entity.Project{Name: fmt.Sprintf("PROJECT %d", i)})
		experience = append(experience, entity.Experience{
			Position: "Engineer", Company: fmt.Sprintf("Company %d", i), Dates: []string{fmt.Sprint(2000 + i), fmt.Sprint(2001 + i)},
		})
	}
	cv := cvDoc(t, "cv", entity.CVData{
		Achievements:   achievements,
		Projects:       projects,
		WorkExperience: experience,
		Certifications: []string{"CKA", "AWS Solutions Architect"},
		Skills:         []string{"python", "go", "java", "react", "vue", "django", "mysql", "redis", "mongodb"},
	})

	_, got, _ := rebuild(t, []*entity.CareerDocument{cv}, newProfile())

	tests := []struct {
		name  string
		got   int
		limit int
	}{
		{"achievements", len(got.Achievements), maxAchievements},
		{"projects", len(got.ProjectsPortfolio), maxProjects},
		{"key strengths", len(got.KeyStrengths), maxKeyStrengths},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.limit, tt.got)
		})
	}

	// duplicates are removed before the cap, so the kept entries are the first distinct ones
	assert.Equal(t, "Award 10", got.Achievements[9].Title)
	assert.Equal(t, "Project 8", got.ProjectsPortfolio[7].Name)
	assert.Equal(t, []string{
		"Strong programming skills",
		"Strong frameworks skills",
		"Strong databases skills",
		"Proven track record of achievements",
		"Extensive professional experience",
	}, got.KeyStrengths)
	assert.Len(t, got.WorkExperience, 12)
}

func TestService_RebuildUnknownProfile(t *testing.T) {
	profiles := newFakeProfiles(t, newProfile())
	svc := NewService(profiles, NewBuilder(&fakeDocs{}, profiles, nil, nil), nil)

	_, err := svc.Rebuild(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, codes.NotFound, status.Code(err))
	assert.Equal(t, codes.NotFound, common.GRPCStatus(err).Code())
}

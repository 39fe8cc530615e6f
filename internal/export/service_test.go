package export_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/career-profile/constants"
	"github.com/joseph-ayodele/career-profile/internal/common"
	"github.com/joseph-ayodele/career-profile/internal/entity"
	"github.com/joseph-ayodele/career-profile/internal/export"
	"github.com/joseph-ayodele/career-profile/internal/repository"
	"github.com/joseph-ayodele/career-profile/internal/repository/repotest"
)

func TestExportProfileXLSX(t *testing.T) {
	ctx := context.Background()
	db := repotest.Open(t)
	profiles := repository.NewProfileRepository(db, nil)
	docs := repository.NewDocumentRepository(db, nil)

	p, err := profiles.GetOrCreateByName(ctx, "Jane Doe", "Backend Engineer")
	require.NoError(t, err)
	p.Email = "jane@example.com"
	p.YearsOfExperience = 6
	p.WorkExperience = []entity.Experience{{Position: "Senior Engineer", Company: "Acme Corp", Dates: []string{"2019", "2024"}}}
	p.TechnicalSkills = entity.NewSkillSet()
	p.TechnicalSkills[constants.Programming] = []string{"go", "python"}
	p.Certifications = []entity.Certification{{Name: "AWS Certified Developer", Issuer: "Amazon"}}
	require.NoError(t, profiles.Save(ctx, p))

	_, err = docs.Create(ctx, entity.NewDocument{
		Title:        "Jane Cv",
		DocumentType: constants.MasterCV,
		FileRef:      "ab/abcdef.txt",
		FileName:     "jane_cv.txt",
		FileSize:     42,
		FileType:     "txt",
		ContentHash:  "abcdef",
		Priority:     1,
		UploadedAt:   time.Now().UTC(),
	})
	require.NoError(t, err)

	data, err := export.NewService(profiles, docs, nil).ExportProfileXLSX(ctx, p.ID)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{
		export.SheetProfile, export.SheetExperience, export.SheetEducation, export.SheetSkills,
		export.SheetCertifications, export.SheetAchievements, export.SheetProjects, export.SheetDocuments,
	}, f.GetSheetList())

	cell := func(sheet, ref string) string {
		t.Helper()
		v, err := f.GetCellValue(sheet, ref)
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, "Jane Doe", cell(export.SheetProfile, "B2"))
	assert.Equal(t, "jane@example.com", cell(export.SheetProfile, "B4"))
	assert.Equal(t, "6", cell(export.SheetProfile, "B10"))
	assert.Equal(t, "Senior Engineer", cell(export.SheetExperience, "A2"))
	assert.Equal(t, "2019 - 2024", cell(export.SheetExperience, "C2"))
	assert.Equal(t, "programming", cell(export.SheetSkills, "A2"))
	assert.Equal(t, "go", cell(export.SheetSkills, "B2"))
	assert.Equal(t, "python", cell(export.SheetSkills, "B3"))
	assert.Equal(t, "AWS Certified Developer", cell(export.SheetCertifications, "A2"))
	assert.Equal(t, "jane_cv.txt", cell(export.SheetDocuments, "D2"))
	assert.Equal(t, "pending", cell(export.SheetDocuments, "F2"))

	rows, err := f.GetRows(export.SheetAchievements)
	require.NoError(t, err)
	assert.Len(t, rows, 1, "header only")
}

func TestExportProfileXLSX_UnknownProfile(t *testing.T) {
	db := repotest.Open(t)
	svc := export.NewService(repository.NewProfileRepository(db, nil), repository.NewDocumentRepository(db, nil), nil)
	_, err := svc.ExportProfileXLSX(context.Background(), uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

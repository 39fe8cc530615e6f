package repository_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/career-profile/constants"
	"github.com/joseph-ayodele/career-profile/internal/common"
	"github.com/joseph-ayodele/career-profile/internal/entity"
	"github.com/joseph-ayodele/career-profile/internal/repository"
	"github.com/joseph-ayodele/career-profile/internal/repository/repotest"
)

func newDoc(title string, dt constants.DocumentType, priority int, uploaded time.Time) entity.NewDocument {
	return entity.NewDocument{
		Title:        title,
		DocumentType: dt,
		FileRef:      "ab/" + title + ".txt",
		FileName:     title + ".txt",
		FileType:     "txt",
		ContentHash:  "hash-" + title,
		Priority:     priority,
		UploadedAt:   uploaded,
	}
}

func TestDocumentRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	docs := repository.NewDocumentRepository(repotest.Open(t), nil)

	d, err := docs.Create(ctx, newDoc("cv", constants.MasterCV, 1, time.Time{}))
	require.NoError(t, err)
	assert.Equal(t, constants.StatusPending, d.ProcessingStatus)
	assert.True(t, d.IsActive)
	assert.Nil(t, d.ProcessedAt)

	claimed, err := docs.Claim(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusProcessing, claimed.ProcessingStatus)

	// a second claim loses the compare-and-set
	_, err = docs.Claim(ctx, d.ID)
	assert.ErrorIs(t, err, common.ErrNotPending)

	require.NoError(t, docs.SaveExtractedText(ctx, d.ID, "Jane Doe"))
	processedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, docs.Complete(ctx, d.ID, json.RawMessage(`{"document_type":"other"}`), "done", processedAt))

	got, err := docs.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusCompleted, got.ProcessingStatus)
	assert.Equal(t, "Jane Doe", got.ExtractedText)
	assert.JSONEq(t, `{"document_type":"other"}`, string(got.StructuredData))
	require.NotNil(t, got.ProcessedAt)
	assert.True(t, processedAt.Equal(*got.ProcessedAt))

	// completing twice is a conflict, not a silent overwrite
	err = docs.Complete(ctx, d.ID, nil, "again", processedAt)
	assert.ErrorIs(t, err, common.ErrConflict)

	require.NoError(t, docs.ResetToPending(ctx, d.ID, "reprocess requested"))
	got, err = docs.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusPending, got.ProcessingStatus)
	assert.Empty(t, got.ExtractedText)
	assert.Empty(t, got.StructuredData)
	assert.Nil(t, got.ProcessedAt)
}

func TestDocumentRepository_CreateValidation(t *testing.T) {
	docs := repository.NewDocumentRepository(repotest.Open(t), nil)

	_, err := docs.Create(context.Background(), entity.NewDocument{DocumentType: constants.MasterCV})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = docs.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)

	assert.ErrorIs(t, docs.Fail(context.Background(), uuid.New(), "x"), common.ErrNotFound)
}

func TestDocumentRepository_ListAggregatableOrder(t *testing.T) {
	ctx := context.Background()
	docs := repository.NewDocumentRepository(repotest.Open(t), nil)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	complete := func(nd entity.NewDocument) uuid.UUID {
		d, err := docs.Create(ctx, nd)
		require.NoError(t, err)
		_, err = docs.Claim(ctx, d.ID)
		require.NoError(t, err)
		require.NoError(t, docs.Complete(ctx, d.ID, json.RawMessage(`{}`), "ok", base))
		return d.ID
	}

	oldCV := complete(newDoc("old-cv", constants.MasterCV, 1, base))
	newCV := complete(newDoc("new-cv", constants.MasterCV, 1, base.Add(48*time.Hour)))
	cert := complete(newDoc("cert", constants.Certificate, 3, base.Add(96*time.Hour)))
	hidden := complete(newDoc("hidden", constants.MasterCV, 1, base.Add(24*time.Hour)))
	require.NoError(t, docs.SetActive(ctx, hidden, false))

	pending, err := docs.Create(ctx, newDoc("pending", constants.MasterCV, 1, base))
	require.NoError(t, err)

	list, err := docs.ListAggregatable(ctx)
	require.NoError(t, err)
	ids := make([]uuid.UUID, 0, len(list))
	for _, d := range list {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []uuid.UUID{newCV, oldCV, cert}, ids)

	counts, err := docs.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, counts[constants.StatusCompleted])
	assert.Equal(t, 1, counts[constants.StatusPending])
	assert.Equal(t, 0, counts[constants.StatusFailed])

	byStatus, err := docs.ListByStatus(ctx, constants.StatusPending, 10)
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, pending.ID, byStatus[0].ID)

	found, err := docs.FindActiveByHash(ctx, "hash-cert")
	require.NoError(t, err)
	assert.Equal(t, cert, found.ID)
	_, err = docs.FindActiveByHash(ctx, "hash-hidden")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestProfileRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	profiles := repository.NewProfileRepository(repotest.Open(t), nil)

	p, err := profiles.GetOrCreateByName(ctx, "Jane Doe", "Engineer")
	require.NoError(t, err)
	assert.Len(t, p.TechnicalSkills, len(constants.SkillCategories()))

	same, err := profiles.GetOrCreateByName(ctx, "Jane Doe", "")
	require.NoError(t, err)
	assert.Equal(t, p.ID, same.ID)

	p.Email = "jane@example.com"
	p.YearsOfExperience = 6
	p.WorkExperience = []entity.Experience{{Position: "Engineer", Company: "Acme", Dates: []string{"2019", "present"}}}
	p.TechnicalSkills[constants.Programming] = []string{"go", "python"}
	p.KeyStrengths = []string{"Strong programming skills"}
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	p.LastUpdatedFromDocuments = &now
	require.NoError(t, profiles.Save(ctx, p))

	got, err := profiles.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", got.Email)
	assert.Equal(t, 6, got.YearsOfExperience)
	assert.Equal(t, p.WorkExperience, got.WorkExperience)
	assert.Equal(t, []string{"go", "python"}, got.TechnicalSkills[constants.Programming])
	assert.Empty(t, got.TechnicalSkills[constants.Cloud])
	assert.Equal(t, []string{"Strong programming skills"}, got.KeyStrengths)
	require.NotNil(t, got.LastUpdatedFromDocuments)
	assert.True(t, now.Equal(*got.LastUpdatedFromDocuments))

	all, err := profiles.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = profiles.GetOrCreateByName(ctx, "  ", "")
	assert.ErrorIs(t, err, common.ErrValidation)
}

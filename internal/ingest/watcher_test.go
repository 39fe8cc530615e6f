package ingest_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/career-profile/constants"
	"github.com/joseph-ayodele/career-profile/internal/entity"
	"github.com/joseph-ayodele/career-profile/internal/ingest"
	"github.com/joseph-ayodele/career-profile/internal/parsefields"
	"github.com/joseph-ayodele/career-profile/internal/pipeline"
	"github.com/joseph-ayodele/career-profile/internal/profiles"
	"github.com/joseph-ayodele/career-profile/internal/repository"
	"github.com/joseph-ayodele/career-profile/internal/repository/repotest"
	"github.com/joseph-ayodele/career-profile/internal/storage"
	"github.com/joseph-ayodele/career-profile/internal/textextract"
)

type harness struct {
	inbox    string
	docs     repository.DocumentRepository
	profiles repository.ProfileRepository
	profile  *entity.ProfessionalProfile
	watcher  *ingest.Watcher
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	db := repotest.Open(t)
	docs := repository.NewDocumentRepository(db, nil)
	profileRepo := repository.NewProfileRepository(db, nil)
	store, err := storage.NewLocalStore(t.TempDir(), nil)
	require.NoError(t, err)

	profile, err := profileRepo.GetOrCreateByName(ctx, "Jane Doe", "Engineer")
	require.NoError(t, err)

	proc := pipeline.NewProcessor(nil, docs,
		pipeline.NewTextStage(docs, store, textextract.NewExtractor(textextract.Config{}, nil), nil),
		pipeline.NewParseStage(nil, docs, parsefields.NewExtractor(nil, nil)),
	)
	builder := profiles.NewBuilder(docs, profileRepo, nil, nil)
	w := ingest.NewWatcher(ingest.Config{ProfileID: profile.ID},
		ingest.NewFSIngestor(docs, store, nil, nil), proc, builder, nil)

	return &harness{inbox: t.TempDir(), docs: docs, profiles: profileRepo, profile: profile, watcher: w}
}

func (h *harness) drop(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(h.inbox, name), []byte(content), 0o644))
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	var out []string
	for _, e := range entries {
		out = append(out, e.Name())
	}
	return out
}

const cvText = "Jane Doe\nEmail: a@b.com\nSenior Engineer at Acme Corp\nSkills: Python, Docker\n"

func TestRunOnce_BatchResilience(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.drop(t, "jane_cv.txt", cvText)
	h.drop(t, "aws_certificate.txt", "AWS Certified Solutions Architect\nIssued by Amazon Web Services\nJanuary 2023\n")
	h.drop(t, "award_achievement.txt", "Engineer of the Year\nAwarded by Acme Corp\n2022\nRecognized for leading the platform migration.\n")
	h.drop(t, "broken_resume.pdf", "%PDF-1.4 not really a pdf")
	h.drop(t, "notes.md", "ignored")
	h.drop(t, ".hidden.txt", "ignored")

	res, err := h.watcher.RunOnce(ctx, h.inbox)
	require.NoError(t, err)
	assert.Equal(t, 6, res.Scanned)
	assert.Equal(t, 4, res.Matched)
	assert.Equal(t, 3, res.Processed)
	assert.Equal(t, 1, res.Failed)
	assert.Zero(t, res.Deduplicated)
	assert.True(t, res.Rebuilt)

	assert.Len(t, listDir(t, filepath.Join(h.inbox, ingest.ProcessedDir)), 3)
	failed := listDir(t, filepath.Join(h.inbox, ingest.FailedDir))
	require.Len(t, failed, 1)
	assert.Regexp(t, `^\d{8}_\d{6}_broken_resume\.pdf$`, failed[0])
	assert.ElementsMatch(t, []string{"notes.md", ".hidden.txt", ingest.ProcessedDir, ingest.FailedDir}, listDir(t, h.inbox))

	counts, err := h.docs.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, counts[constants.StatusCompleted])
	assert.Equal(t, 1, counts[constants.StatusFailed])

	p, err := h.profiles.GetByID(ctx, h.profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", p.Email)
	assert.Contains(t, p.TechnicalSkills[constants.Programming], "python")
	assert.Contains(t, p.TechnicalSkills[constants.Cloud], "docker")
	require.Len(t, p.WorkExperience, 1)
	assert.Equal(t, "Senior Engineer", p.WorkExperience[0].Position)
	assert.NotEmpty(t, p.Certifications)
	assert.NotEmpty(t, p.Achievements)
	assert.NotEmpty(t, p.AIPersonaDescription)
	require.NotNil(t, p.LastUpdatedFromDocuments)

	// processed/ and failed/ are never rescanned
	again, err := h.watcher.RunOnce(ctx, h.inbox)
	require.NoError(t, err)
	assert.Equal(t, 2, again.Scanned)
	assert.Zero(t, again.Matched)
	assert.Zero(t, again.Processed)
	assert.False(t, again.Rebuilt)
}

func TestRunOnce_DeduplicatesByContent(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.drop(t, "resume.txt", cvText)
	first, err := h.watcher.RunOnce(ctx, h.inbox)
	require.NoError(t, err)
	require.Equal(t, 1, first.Processed)

	h.drop(t, "resume_copy.txt", cvText)
	second, err := h.watcher.RunOnce(ctx, h.inbox)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Deduplicated)
	assert.Zero(t, second.Processed)
	assert.False(t, second.Rebuilt)
	assert.Equal(t, first.Files[0].DocumentID, second.Files[0].DocumentID)
	assert.Len(t, listDir(t, filepath.Join(h.inbox, ingest.ProcessedDir)), 2)
}

func TestRunOnce_ClassifiesAndTitles(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.drop(t, "jane_doe-cover_letter.txt", "Dear Hiring Manager,\n\nI am writing to apply.\n\nSincerely,\nJane")

	res, err := h.watcher.RunOnce(ctx, h.inbox)
	require.NoError(t, err)
	require.Len(t, res.Files, 1)

	doc, err := h.docs.GetByID(ctx, res.Files[0].DocumentID)
	require.NoError(t, err)
	assert.Equal(t, constants.CoverLetter, doc.DocumentType)
	assert.Equal(t, "Jane Doe Cover Letter", doc.Title)
	assert.Equal(t, 4, doc.Priority)
	assert.Equal(t, "txt", doc.FileType)
}

func TestRunOnce_MissingInbox(t *testing.T) {
	h := newHarness(t)
	_, err := h.watcher.RunOnce(context.Background(), filepath.Join(h.inbox, "nope"))
	assert.Error(t, err)
}

func TestWatch_StopsOnCancel(t *testing.T) {
	h := newHarness(t)
	h.drop(t, "resume.txt", cvText)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.watcher.Watch(ctx, h.inbox, 20*time.Millisecond) }()

	require.Eventually(t, func() bool {
		return len(listDir(t, filepath.Join(h.inbox, ingest.ProcessedDir))) == 1
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestTitleFromName(t *testing.T) {
	assert.Equal(t, "Jane Doe Resume", ingest.TitleFromName("jane_doe-resume.pdf"))
	assert.Equal(t, "Aws Certificate", ingest.TitleFromName("AWS_CERTIFICATE.txt"))
}

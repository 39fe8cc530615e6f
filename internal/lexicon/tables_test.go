package lexicon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/career-profile/constants"
)

func TestDefaultParses(t *testing.T) {
	_, err := Parse(defaultYAML)
	require.NoError(t, err)
	assert.Same(t, Default(), Default())
}

func TestMatchSkills(t *testing.T) {
	tab := Default()
	tests := []struct {
		text string
		want []string
	}{
		{"Python, Go and Kubernetes", []string{"python", "go", "kubernetes"}},
		{"Golang services on k8s", []string{"go", "kubernetes"}},
		{"C++ and C# developer", []string{"c++", "c#"}},
		{"Built APIs with Node.js and Express.js", []string{"express.js", "node.js"}},
		// word boundaries: "going" is not go, "javascript" is not java
		{"going forward with javascript", []string{"javascript"}},
		{"   ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.ElementsMatch(t, tt.want, tab.MatchSkills(tt.text))
		})
	}
}

func TestCategoryOf(t *testing.T) {
	tab := Default()
	assert.Equal(t, constants.Programming, tab.CategoryOf("Golang"))
	assert.Equal(t, constants.Databases, tab.CategoryOf("Postgres"))
	assert.Equal(t, constants.Cloud, tab.CategoryOf("AWS Lambda"))
	assert.Equal(t, constants.OtherSkills, tab.CategoryOf("Public speaking"))
	assert.True(t, tab.IsKnownSkill("K8S"))
	assert.False(t, tab.IsKnownSkill("cobol"))
}

func TestSectionHeader(t *testing.T) {
	tab := Default()
	tests := []struct {
		line, name, rest string
		ok               bool
	}{
		{"WORK EXPERIENCE", SectionExperience, "", true},
		{"## Education", SectionEducation, "", true},
		{"Skills: Go, Python", SectionSkills, "Go, Python", true},
		{"Technologies", SectionSkills, "", true},
		{"Awards", SectionAchievements, "", true},
		{"Senior Engineer at Acme", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			name, rest, ok := tab.SectionHeader(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.rest, rest)
		})
	}
}

func TestClassifyFilename(t *testing.T) {
	tab := Default()
	tests := map[string]constants.DocumentType{
		"jane_cv.pdf":               constants.MasterCV,
		"MyResume2024.docx":         constants.MasterCV,
		"aws-certs.txt":             constants.Certificate,
		"university_transcript.pdf": constants.Transcript,
		"project_writeup.docx":      constants.Portfolio,
		"reference_from_boss.pdf":   constants.Recommendation,
		"award_2022.txt":            constants.Achievement,
		"cover_letter_acme.docx":    constants.CoverLetter,
		"notes.txt":                 constants.OtherDocument,
		"resume_cover_letter.docx":  constants.MasterCV,
	}
	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, want, tab.ClassifyFilename(name))
		})
	}
}

func TestPriority(t *testing.T) {
	tab := Default()
	assert.Equal(t, 1, tab.Priority(constants.MasterCV))
	assert.Equal(t, 4, tab.Priority(constants.CoverLetter))
	assert.Equal(t, constants.DefaultPriority, tab.Priority(constants.OtherDocument))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	got, err := Load("")
	require.NoError(t, err)
	assert.Same(t, Default(), got)

	custom := filepath.Join(dir, "lexicon.yaml")
	require.NoError(t, os.WriteFile(custom, []byte("skills:\n  programming: [zig]\npriorities:\n  certificate: 1\n"), 0o644))
	tab, err := Load(custom)
	require.NoError(t, err)
	assert.Equal(t, []string{"zig"}, tab.MatchSkills("I write Zig"))
	assert.Equal(t, 1, tab.Priority(constants.Certificate))

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	for name, doc := range map[string]string{
		"empty skills":     "skills: {}\n",
		"unknown category": "skills:\n  wizardry: [magic]\n",
		"bad priority":     "skills:\n  programming: [go]\npriorities:\n  master_cv: 0\n",
		"unknown doc type": "skills:\n  programming: [go]\ndocument_types:\n  - type: memo\n    keywords: [memo]\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

package ingest

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/joseph-ayodele/career-profile/constants"
)

const maxTitleRunes = 200

// AllowedExt checks if a file extension is one the text extractor understands (pdf/doc/docx/txt).
func AllowedExt(ext string) bool {
	ext = constants.NormalizeExt(ext)
	_, ok := constants.AllowedExtensions[ext]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".")
}

// TitleFromName turns "jane_doe-resume.pdf" into "Jane Doe Resume".
func TitleFromName(name string) string {
	stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	stem = strings.NewReplacer("_", " ", "-", " ").Replace(stem)
	stem = strings.Join(strings.Fields(stem), " ")
	if stem == "" {
		return filepath.Base(name)
	}
	title := []rune(cases.Title(language.English).String(stem))
	if len(title) > maxTitleRunes {
		title = title[:maxTitleRunes]
	}
	return string(title)
}

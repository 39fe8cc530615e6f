package textextract

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/career-profile/constants"
	"github.com/joseph-ayodele/career-profile/internal/common"
)

func TestDetect(t *testing.T) {
	f, err := Detect(".PDF")
	require.NoError(t, err)
	assert.Equal(t, constants.FormatPDF, f)

	f, err = Detect("docx")
	require.NoError(t, err)
	assert.Equal(t, constants.FormatDOCX, f)

	_, err = Detect(".xyz")
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
}

func TestExtract_PlainTextWithBOM(t *testing.T) {
	x := NewExtractor(Config{}, nil)
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Jane Doe\r\n\r\n\r\n\r\nSkills:\tGo,   Python  \r\n")...)

	res, err := x.Extract(context.Background(), constants.FormatTXT, data)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\n\nSkills: Go, Python", res.Text)
	assert.Equal(t, "plain", res.Method)
	assert.Equal(t, len(data), res.Bytes)
}

func TestExtract_InvalidUTF8(t *testing.T) {
	x := NewExtractor(Config{}, nil)
	_, err := x.Extract(context.Background(), constants.FormatTXT, []byte{'o', 'k', 0xff, 0xfe, 0xfd})
	assert.Error(t, err)
}

func TestExtract_UnsupportedFormat(t *testing.T) {
	x := NewExtractor(Config{}, nil)
	_, err := x.Extract(context.Background(), constants.Format("xyz"), []byte("hello"))
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)

	path := filepath.Join(t.TempDir(), "notes.xyz")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))
	_, err = x.ExtractFile(context.Background(), path)
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
}

func TestExtract_CorruptPDF(t *testing.T) {
	x := NewExtractor(Config{}, nil)
	_, err := x.Extract(context.Background(), constants.FormatPDF, []byte("%PDF-1.4\nthis is not really a pdf"))
	assert.Error(t, err)
}

func TestExtract_TooLarge(t *testing.T) {
	x := NewExtractor(Config{MaxBytes: 4}, nil)
	_, err := x.Extract(context.Background(), constants.FormatTXT, []byte("hello"))
	assert.Error(t, err)
}

func TestExtract_DOCX(t *testing.T) {
	x := NewExtractor(Config{}, nil)
	data := buildDOCX(t, "Senior Engineer at Acme Corp", "Skills: Go, Docker")

	res, err := x.Extract(context.Background(), constants.FormatDOCX, data)
	require.NoError(t, err)
	assert.Contains(t, res.Text, "Senior Engineer at Acme Corp")
	assert.Contains(t, res.Text, "Skills: Go, Docker")

	// OOXML saved with a .doc extension goes through the docx reader.
	res, err = x.Extract(context.Background(), constants.FormatDOC, data)
	require.NoError(t, err)
	assert.Contains(t, res.Text, "Senior Engineer at Acme Corp")
}

func TestDocxParagraphs(t *testing.T) {
	text, err := docxParagraphs(buildDOCX(t, "First", "Second"))
	require.NoError(t, err)
	assert.Equal(t, "First\nSecond", text)

	_, err = docxParagraphs([]byte("not a zip"))
	assert.Error(t, err)
}

func TestExtractFile_ReadsFromDisk(t *testing.T) {
	x := NewExtractor(Config{}, nil)
	path := filepath.Join(t.TempDir(), "Resume.TXT")
	require.NoError(t, os.WriteFile(path, []byte("  hello   world  "), 0o644))

	res, err := x.ExtractFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, constants.FormatTXT, res.Format)
	assert.Equal(t, "hello world", res.Text)
}

func buildDOCX(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	ct, err := zw.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = ct.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`))
	require.NoError(t, err)

	var body bytes.Buffer
	body.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	body.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t xml:space="preserve">` + p + `</w:t></w:r></w:p>`)
	}
	body.WriteString(`</w:body></w:document>`)
	doc, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = doc.Write(body.Bytes())
	require.NoError(t, err)

	require.NoError(t, zw.Close())
	return buf.Bytes()
}

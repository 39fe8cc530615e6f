package textextract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"code.sajari.com/docconv"
)

var zipMagic = []byte("PK\x03\x04")

// extractDOCX prefers docconv and falls back to reading word/document.xml directly,
// which also covers packages with an incomplete [Content_Types].xml.
func (e *Extractor) extractDOCX(data []byte) (string, string, error) {
	body, _, err := docconv.ConvertDocx(bytes.NewReader(data))
	if err == nil && strings.TrimSpace(body) != "" {
		return body, "docconv", nil
	}
	if err != nil {
		e.logger.Debug("docconv docx failed, reading document.xml", "error", err)
	}
	text, xerr := docxParagraphs(data)
	if xerr != nil {
		if err != nil {
			return "", "docx-xml", errors.Join(err, xerr)
		}
		return "", "docx-xml", xerr
	}
	return text, "docx-xml", nil
}

// extractDOC uses docconv (antiword). Files saved as .doc that are really OOXML
// packages are routed to the docx reader.
func (e *Extractor) extractDOC(data []byte) (string, string, error) {
	if bytes.HasPrefix(data, zipMagic) {
		return e.extractDOCX(data)
	}
	body, _, err := docconv.ConvertDoc(bytes.NewReader(data))
	if err != nil {
		return "", "docconv", fmt.Errorf("convert doc: %w", err)
	}
	return body, "docconv", nil
}

// docxParagraphs returns the text of every w:p in word/document.xml, one paragraph per line.
func docxParagraphs(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", errors.New("no word/document.xml in docx")
	}
	rc, err := doc.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	var (
		paragraphs []string
		cur        strings.Builder
		inText     bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				cur.WriteByte('\t')
			case "br", "cr":
				cur.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				paragraphs = append(paragraphs, cur.String())
				cur.Reset()
			}
		case xml.CharData:
			if inText {
				cur.Write(t)
			}
		}
	}
	if cur.Len() > 0 {
		paragraphs = append(paragraphs, cur.String())
	}
	return strings.Join(paragraphs, "\n"), nil
}

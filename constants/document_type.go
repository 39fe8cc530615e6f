package constants

import "strings"

// DocumentType is the closed set of career document kinds.
type DocumentType string

const (
	MasterCV       DocumentType = "master_cv"
	CoverLetter    DocumentType = "cover_letter"
	Certificate    DocumentType = "certificate"
	Transcript     DocumentType = "transcript"
	Portfolio      DocumentType = "portfolio"
	Recommendation DocumentType = "recommendation"
	ProjectDoc     DocumentType = "project_doc"
	Achievement    DocumentType = "achievement"
	OtherDocument  DocumentType = "other"
)

var allDocumentTypes = []DocumentType{
	MasterCV,
	CoverLetter,
	Certificate,
	Transcript,
	Portfolio,
	Recommendation,
	ProjectDoc,
	Achievement,
	OtherDocument,
}

// DefaultPriority is used for document types missing from a priority table.
const DefaultPriority = 6

func DocumentTypes() []DocumentType {
	out := make([]DocumentType, len(allDocumentTypes))
	copy(out, allDocumentTypes)
	return out
}

func DocumentTypeStrings() []string {
	result := make([]string, len(allDocumentTypes))
	for i, t := range allDocumentTypes {
		result[i] = string(t)
	}
	return result
}

// ParseDocumentType accepts the stored value in any case; unknown input maps to OtherDocument.
func ParseDocumentType(input string) (DocumentType, bool) {
	normalized := DocumentType(strings.ToLower(strings.TrimSpace(input)))
	for _, t := range allDocumentTypes {
		if t == normalized {
			return t, true
		}
	}
	return OtherDocument, false
}

func (t DocumentType) Valid() bool {
	for _, v := range allDocumentTypes {
		if v == t {
			return true
		}
	}
	return false
}

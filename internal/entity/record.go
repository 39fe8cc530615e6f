package entity

import (
	"encoding/json"
	"fmt"

	"github.com/joseph-ayodele/career-profile/constants"
)

// PersonalInfo holds contact details found in a document. Empty means absent.
type PersonalInfo struct {
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
	Website  string `json:"website,omitempty"`
	Location string `json:"location,omitempty"`
}

// Merge fills the empty fields of p from other.
func (p *PersonalInfo) Merge(other PersonalInfo) {
	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	fill(&p.Email, other.Email)
	fill(&p.Phone, other.Phone)
	fill(&p.LinkedIn, other.LinkedIn)
	fill(&p.GitHub, other.GitHub)
	fill(&p.Website, other.Website)
	fill(&p.Location, other.Location)
}

type Experience struct {
	Position    string   `json:"position"`
	Company     string   `json:"company"`
	Description string   `json:"description,omitempty"`
	Dates       []string `json:"dates"`
	SkillsUsed  []string `json:"skills_used,omitempty"`
}

type Education struct {
	Degree         string   `json:"degree"`
	Institution    string   `json:"institution"`
	FieldOfStudy   string   `json:"field_of_study,omitempty"`
	GPA            string   `json:"gpa,omitempty"`
	Dates          []string `json:"dates"`
	GraduationDate string   `json:"graduation_date,omitempty"`
	Courses        []string `json:"courses,omitempty"`
}

type Certification struct {
	Name   string   `json:"name"`
	Issuer string   `json:"issuer,omitempty"`
	Date   string   `json:"date,omitempty"`
	Skills []string `json:"skills,omitempty"`
}

type Achievement struct {
	Title        string `json:"title"`
	Organization string `json:"organization,omitempty"`
	Date         string `json:"date,omitempty"`
	Description  string `json:"description,omitempty"`
}

type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	Outcomes     []string `json:"outcomes,omitempty"`
}

type WritingStyle struct {
	WordCount            int     `json:"word_count"`
	SentenceCount        int     `json:"sentence_count"`
	AvgSentenceLength    float64 `json:"avg_sentence_length"`
	ProfessionalKeywords int     `json:"professional_keywords"`
}

type Tone struct {
	Score          int    `json:"score"`
	FormalityLevel string `json:"formality_level"`
}

type LetterStructure struct {
	ParagraphCount  int  `json:"paragraph_count"`
	HasIntroduction bool `json:"has_introduction"`
	HasConclusion   bool `json:"has_conclusion"`
}

type RecommenderInfo struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Title string `json:"title,omitempty"`
}

type KeyInformation struct {
	WordCount    int      `json:"word_count"`
	KeyPhrases   []string `json:"key_phrases"`
	Achievements []string `json:"achievements"`
}

type CVData struct {
	PersonalInfo   PersonalInfo `json:"personal_info"`
	WorkExperience []Experience `json:"work_experience"`
	Education      []Education  `json:"education"`
	Skills         []string     `json:"skills"`
	Achievements   []string     `json:"achievements"`
	Certifications []string     `json:"certifications"`
	Projects       []Project    `json:"projects"`
	Summary        string       `json:"summary,omitempty"`
	Objective      string       `json:"objective,omitempty"`
}

type CoverLetterData struct {
	WritingStyle     WritingStyle    `json:"writing_style"`
	KeyPhrases       []string        `json:"key_phrases"`
	ProfessionalTone Tone            `json:"professional_tone"`
	Structure        LetterStructure `json:"structure"`
}

type CertificateData struct {
	CertificationName   string   `json:"certification_name"`
	IssuingOrganization string   `json:"issuing_organization"`
	IssueDate           []string `json:"issue_date"`
	SkillsValidated     []string `json:"skills_validated"`
}

type TranscriptData struct {
	Institution    string   `json:"institution"`
	DegreeProgram  string   `json:"degree_program"`
	FieldOfStudy   string   `json:"field_of_study,omitempty"`
	Courses        []string `json:"courses"`
	GPA            string   `json:"gpa"`
	Dates          []string `json:"dates"`
	GraduationDate string   `json:"graduation_date,omitempty"`
}

type PortfolioData struct {
	Projects     []Project `json:"projects"`
	Technologies []string  `json:"technologies"`
	Achievements []string  `json:"achievements"`
}

type RecommendationData struct {
	RecommenderInfo    RecommenderInfo `json:"recommender_info"`
	StrengthsMentioned []string        `json:"strengths_mentioned"`
	SpecificExamples   []string        `json:"specific_examples"`
}

type ProjectDocData struct {
	ProjectName  string   `json:"project_name"`
	Technologies []string `json:"technologies"`
	Description  string   `json:"description"`
	Outcomes     []string `json:"outcomes"`
}

type AchievementData struct {
	AchievementName      string   `json:"achievement_name"`
	AwardingOrganization string   `json:"awarding_organization"`
	DateReceived         []string `json:"date_received"`
	Description          string   `json:"description"`
}

type GenericData struct {
	KeyInformation  KeyInformation `json:"key_information"`
	SkillsMentioned []string       `json:"skills_mentioned"`
	DatesFound      []string       `json:"dates_found"`
}

// StructuredRecord is the type-tagged output of structured extraction.
// Exactly one payload pointer is set, selected by DocumentType.
// The JSON form is a single flat object: document_type, processed_at and the payload keys.
type StructuredRecord struct {
	DocumentType constants.DocumentType
	ProcessedAt  string

	CV             *CVData
	CoverLetter    *CoverLetterData
	Certificate    *CertificateData
	Transcript     *TranscriptData
	Portfolio      *PortfolioData
	Recommendation *RecommendationData
	ProjectDoc     *ProjectDocData
	Achievement    *AchievementData
	Generic        *GenericData
}

// Payload returns the variant selected by DocumentType, or nil when it is not set.
func (r *StructuredRecord) Payload() any {
	switch r.DocumentType {
	case constants.MasterCV:
		if r.CV != nil {
			return r.CV
		}
	case constants.CoverLetter:
		if r.CoverLetter != nil {
			return r.CoverLetter
		}
	case constants.Certificate:
		if r.Certificate != nil {
			return r.Certificate
		}
	case constants.Transcript:
		if r.Transcript != nil {
			return r.Transcript
		}
	case constants.Portfolio:
		if r.Portfolio != nil {
			return r.Portfolio
		}
	case constants.Recommendation:
		if r.Recommendation != nil {
			return r.Recommendation
		}
	case constants.ProjectDoc:
		if r.ProjectDoc != nil {
			return r.ProjectDoc
		}
	case constants.Achievement:
		if r.Achievement != nil {
			return r.Achievement
		}
	case constants.OtherDocument:
		if r.Generic != nil {
			return r.Generic
		}
	}
	return nil
}

func (r StructuredRecord) MarshalJSON() ([]byte, error) {
	payload := r.Payload()
	if payload == nil {
		return nil, fmt.Errorf("structured record %q has no payload", r.DocumentType)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	if fields["document_type"], err = json.Marshal(r.DocumentType); err != nil {
		return nil, err
	}
	if fields["processed_at"], err = json.Marshal(r.ProcessedAt); err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}

func (r *StructuredRecord) UnmarshalJSON(b []byte) error {
	var head struct {
		DocumentType constants.DocumentType `json:"document_type"`
		ProcessedAt  string                 `json:"processed_at"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return err
	}
	rec := StructuredRecord{DocumentType: head.DocumentType, ProcessedAt: head.ProcessedAt}
	var target any
	switch head.DocumentType {
	case constants.MasterCV:
		rec.CV = &CVData{}
		target = rec.CV
	case constants.CoverLetter:
		rec.CoverLetter = &CoverLetterData{}
		target = rec.CoverLetter
	case constants.Certificate:
		rec.Certificate = &CertificateData{}
		target = rec.Certificate
	case constants.Transcript:
		rec.Transcript = &TranscriptData{}
		target = rec.Transcript
	case constants.Portfolio:
		rec.Portfolio = &PortfolioData{}
		target = rec.Portfolio
	case constants.Recommendation:
		rec.Recommendation = &RecommendationData{}
		target = rec.Recommendation
	case constants.ProjectDoc:
		rec.ProjectDoc = &ProjectDocData{}
		target = rec.ProjectDoc
	case constants.Achievement:
		rec.Achievement = &AchievementData{}
		target = rec.Achievement
	case constants.OtherDocument:
		rec.Generic = &GenericData{}
		target = rec.Generic
	default:
		return fmt.Errorf("unknown document_type %q", head.DocumentType)
	}
	if err := json.Unmarshal(b, target); err != nil {
		return fmt.Errorf("decode %s payload: %w", head.DocumentType, err)
	}
	*r = rec
	return nil
}

package parsefields

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/career-profile/constants"
)

// BuildRecordSchema returns the JSON schema (draft 2020-12 subset) of a structured record of
// the given type as a generic map.
func BuildRecordSchema(dt constants.DocumentType) map[string]any {
	props := map[string]any{
		"document_type": map[string]any{"type": "string", "const": string(dt)},
		"processed_at":  map[string]any{"type": "string", "format": "date-time"},
	}
	required := []string{"document_type", "processed_at"}
	add := func(name string, schema map[string]any) {
		props[name] = schema
		required = append(required, name)
	}

	switch dt {
	case constants.MasterCV:
		add("personal_info", object(map[string]any{
			"email": str(), "phone": str(), "linkedin": str(), "github": str(), "website": str(), "location": str(),
		}))
		add("work_experience", array(object(map[string]any{
			"position": str(), "company": str(), "description": str(), "dates": strList(), "skills_used": strList(),
		}, "position", "company", "dates")))
		add("education", array(educationSchema()))
		add("skills", strList())
		add("achievements", strList())
		add("certifications", strList())
		add("projects", array(projectSchema()))
		props["summary"] = str()
		props["objective"] = str()
	case constants.CoverLetter:
		add("writing_style", object(map[string]any{
			"word_count": integer(), "sentence_count": integer(),
			"avg_sentence_length": map[string]any{"type": "number", "minimum": 0},
			"professional_keywords": integer(),
		}, "word_count", "sentence_count", "avg_sentence_length", "professional_keywords"))
		add("key_phrases", strList())
		add("professional_tone", object(map[string]any{
			"score":           integer(),
			"formality_level": map[string]any{"type": "string", "enum": []string{"low", "medium", "high"}},
		}, "score", "formality_level"))
		add("structure", object(map[string]any{
			"paragraph_count": integer(), "has_introduction": boolean(), "has_conclusion": boolean(),
		}, "paragraph_count", "has_introduction", "has_conclusion"))
	case constants.Certificate:
		add("certification_name", str())
		add("issuing_organization", str())
		add("issue_date", strList())
		add("skills_validated", strList())
	case constants.Transcript:
		add("institution", str())
		add("degree_program", str())
		props["field_of_study"] = str()
		add("courses", strList())
		add("gpa", str())
		add("dates", strList())
		props["graduation_date"] = str()
	case constants.Portfolio:
		add("projects", array(projectSchema()))
		add("technologies", strList())
		add("achievements", strList())
	case constants.Recommendation:
		add("recommender_info", object(map[string]any{"name": str(), "email": str(), "title": str()}))
		add("strengths_mentioned", strList())
		add("specific_examples", strList())
	case constants.ProjectDoc:
		add("project_name", str())
		add("technologies", strList())
		add("description", str())
		add("outcomes", strList())
	case constants.Achievement:
		add("achievement_name", str())
		add("awarding_organization", str())
		add("date_received", strList())
		add("description", str())
	default:
		add("key_information", object(map[string]any{
			"word_count": integer(), "key_phrases": strList(), "achievements": strList(),
		}, "word_count", "key_phrases", "achievements"))
		add("skills_mentioned", strList())
		add("dates_found", strList())
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}

func str() map[string]any     { return map[string]any{"type": "string"} }
func integer() map[string]any { return map[string]any{"type": "integer", "minimum": 0} }
func boolean() map[string]any { return map[string]any{"type": "boolean"} }
func strList() map[string]any { return array(str()) }

func array(items map[string]any) map[string]any {
	return map[string]any{"type": "array", "items": items}
}

func object(props map[string]any, required ...string) map[string]any {
	o := map[string]any{"type": "object", "additionalProperties": false, "properties": props}
	if len(required) > 0 {
		o["required"] = required
	}
	return o
}

func educationSchema() map[string]any {
	return object(map[string]any{
		"degree": str(), "institution": str(), "field_of_study": str(), "gpa": str(),
		"dates": strList(), "graduation_date": str(), "courses": strList(),
	}, "degree", "institution", "dates")
}

func projectSchema() map[string]any {
	return object(map[string]any{
		"name": str(), "description": str(), "technologies": strList(), "outcomes": strList(),
	}, "name")
}

var (
	schemaMu    sync.Mutex
	schemaCache = map[constants.DocumentType]*jsonschema.Schema{}
)

func compiledSchema(dt constants.DocumentType) (*jsonschema.Schema, error) {
	schemaMu.Lock()
	defer schemaMu.Unlock()
	if s, ok := schemaCache[dt]; ok {
		return s, nil
	}
	b, err := json.Marshal(BuildRecordSchema(dt))
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	url := string(dt) + ".schema.json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	s, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	schemaCache[dt] = s
	return s, nil
}

// ValidateRecord checks a serialized structured record against the schema of its
// document_type. Unknown types are rejected.
func ValidateRecord(raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("unmarshal record: %w", err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return fmt.Errorf("record is not a JSON object")
	}
	name, _ := obj["document_type"].(string)
	dt := constants.DocumentType(name)
	if !dt.Valid() {
		return fmt.Errorf("record has unknown document_type %q", name)
	}
	schema, err := compiledSchema(dt)
	if err != nil {
		return err
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("record does not match %s schema: %w", dt, err)
	}
	return nil
}

package parsefields

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/joseph-ayodele/career-profile/internal/entity"
)

const (
	maxKeyPhrases = 10
	maxStrengths  = 5
	maxExamples   = 3
	strengthSpan  = 50
)

var (
	reSentenceEnd = regexp.MustCompile(`[.!?]+`)
	reKeyPhrase   = regexp.MustCompile(`\b[A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+){1,4}\b`)
	reParagraph   = regexp.MustCompile(`\n\s*\n`)
	reExample     = regexp.MustCompile(`(?i)\b(?:for example|for instance|specifically|such as)\b[^.!?]*[.!?]?`)
	reClosing     = regexp.MustCompile(`(?i)\b(?:sincerely|regards|best|thank you)\b`)
	reGreeting    = regexp.MustCompile(`(?i)\b(?:dear|to whom)\b`)
)

func extractKeyPhrases(text string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, m := range reKeyPhrase.FindAllString(text, -1) {
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
		if len(out) == maxKeyPhrases {
			break
		}
	}
	return out
}

func sentenceCount(text string) int {
	n := 0
	for _, s := range reSentenceEnd.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			n++
		}
	}
	return n
}

// countWords counts occurrences of each word as a whole token, case-insensitively.
func countWords(lower string, words []string) (total, distinct int) {
	tokens := strings.FieldsFunc(lower, func(r rune) bool { return !unicode.IsLetter(r) })
	counts := map[string]int{}
	for _, t := range tokens {
		counts[t]++
	}
	for _, w := range words {
		if c := counts[w]; c > 0 {
			total += c
			distinct++
		}
	}
	return total, distinct
}

func (x *Extractor) coverLetter(text string) *entity.CoverLetterData {
	words := len(strings.Fields(text))
	sentences := sentenceCount(text)
	avg := 0.0
	if sentences > 0 {
		avg = math.Round(float64(words)/float64(sentences)*100) / 100
	}
	lower := strings.ToLower(text)
	_, professional := countWords(lower, x.tables.ProfessionalWords())
	formal, _ := countWords(lower, x.tables.FormalIndicators())

	level := "low"
	switch {
	case formal > 5:
		level = "high"
	case formal > 2:
		level = "medium"
	}

	paragraphs := 0
	for _, p := range reParagraph.Split(text, -1) {
		if strings.TrimSpace(p) != "" {
			paragraphs++
		}
	}
	head := lower
	if len(head) > 100 {
		head = head[:100]
	}
	tail := lower
	if len(tail) > 200 {
		tail = tail[len(tail)-200:]
	}

	return &entity.CoverLetterData{
		WritingStyle: entity.WritingStyle{
			WordCount:            words,
			SentenceCount:        sentences,
			AvgSentenceLength:    avg,
			ProfessionalKeywords: professional,
		},
		KeyPhrases:       extractKeyPhrases(text),
		ProfessionalTone: entity.Tone{Score: formal, FormalityLevel: level},
		Structure: entity.LetterStructure{
			ParagraphCount:  paragraphs,
			HasIntroduction: reGreeting.MatchString(head),
			HasConclusion:   reClosing.MatchString(tail),
		},
	}
}

func (x *Extractor) recommendation(text string) *entity.RecommendationData {
	return &entity.RecommendationData{
		RecommenderInfo:    x.recommender(text),
		StrengthsMentioned: x.strengths(text),
		SpecificExamples:   specificExamples(text),
	}
}

// recommender reads the signature block: the last five non-empty lines.
func (x *Extractor) recommender(text string) entity.RecommenderInfo {
	lines := nonEmptyLines(text)
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	var info entity.RecommenderInfo
	titles := x.tables.TitleKeywords()
	for _, line := range lines {
		if info.Email == "" {
			if m := reEmail.FindString(line); m != "" {
				info.Email = m
				continue
			}
		}
		lower := strings.ToLower(line)
		if info.Title == "" && len(strings.Fields(line)) <= 6 && hasAnyWord(lower, titles) {
			info.Title = line
			continue
		}
		if info.Name == "" && looksLikeName(line) {
			info.Name = line
		}
	}
	return info
}

func hasAnyWord(lower string, words []string) bool {
	_, n := countWords(lower, words)
	return n > 0
}

// looksLikeName accepts two to four capitalised words with no digits or closing phrases.
func looksLikeName(line string) bool {
	if reClosing.MatchString(line) || strings.ContainsAny(line, "0123456789@:") {
		return false
	}
	words := strings.Fields(strings.TrimRight(line, ","))
	if len(words) < 2 || len(words) > 4 {
		return false
	}
	for _, w := range words {
		r := []rune(w)
		if !unicode.IsUpper(r[0]) {
			return false
		}
	}
	return true
}

// strengths returns the context around the first mention of each strength keyword.
func (x *Extractor) strengths(text string) []string {
	out := []string{}
	for _, re := range x.strengthRes {
		loc := re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		start, end := loc[0]-strengthSpan, loc[1]+strengthSpan
		if start < 0 {
			start = 0
		}
		if end > len(text) {
			end = len(text)
		}
		out = append(out, strings.Join(strings.Fields(strings.ToValidUTF8(text[start:end], "")), " "))
		if len(out) == maxStrengths {
			break
		}
	}
	return out
}

func specificExamples(text string) []string {
	out := []string{}
	for _, m := range reExample.FindAllString(text, maxExamples) {
		out = append(out, strings.Join(strings.Fields(m), " "))
	}
	return out
}

package parsefields

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/career-profile/internal/entity"
)

var (
	reEmail    = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	rePhone    = regexp.MustCompile(`(?:\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`)
	reLinkedIn = regexp.MustCompile(`(?i)linkedin\.com/in/[\w-]+`)
	reGitHub   = regexp.MustCompile(`(?i)github\.com/[\w-]+`)
	reURL      = regexp.MustCompile(`(?i)\bhttps?://[^\s<>()"']+`)
	reLocation = regexp.MustCompile(`(?im)^\s*(?:location|address|based in)\s*[:\-]\s*(.+)$`)
	reContact  = regexp.MustCompile(`(?i)^\s*(?:e-?mail|phone|tel|mobile|linkedin|github|website|portfolio|location|address)\b`)
)

func extractPersonalInfo(text string) entity.PersonalInfo {
	var info entity.PersonalInfo
	info.Email = reEmail.FindString(text)
	if m := rePhone.FindString(text); m != "" {
		info.Phone = strings.TrimSpace(m)
	}
	if m := reLinkedIn.FindString(text); m != "" {
		info.LinkedIn = "https://" + strings.ToLower(m[:len("linkedin.com")]) + m[len("linkedin.com"):]
	}
	if m := reGitHub.FindString(text); m != "" {
		info.GitHub = "https://" + strings.ToLower(m[:len("github.com")]) + m[len("github.com"):]
	}
	for _, u := range reURL.FindAllString(text, -1) {
		lu := strings.ToLower(u)
		if strings.Contains(lu, "linkedin.com") || strings.Contains(lu, "github.com") {
			continue
		}
		info.Website = strings.TrimRight(u, ".,;")
		break
	}
	if m := reLocation.FindStringSubmatch(text); m != nil {
		info.Location = strings.TrimSpace(m[1])
	}
	return info
}

// isContactLine reports lines that carry contact details rather than career content.
func isContactLine(line string) bool {
	if reContact.MatchString(line) {
		return true
	}
	return reEmail.MatchString(line) || reLinkedIn.MatchString(line) || reGitHub.MatchString(line) ||
		(rePhone.MatchString(line) && len(strings.Fields(line)) <= 4)
}

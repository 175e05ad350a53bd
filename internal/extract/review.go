package extract

import (
	"regexp"
	"strings"

	"github.com/ShayCichocki/curricula/pkg/models"
)

// verdictWord matches a whole PASS or FAIL word, optionally negated.
var verdictWord = regexp.MustCompile(`(?i)\b(NOT\s+)?(PASS(?:ED|ES)?|FAIL(?:ED|S)?)\b`)

// Review parses the reviewer's verdict. The first non-empty line must say
// PASS or FAIL; lines starting with "CONCERN:" are collected as concerns.
// The whole output is kept as the review notes.
func Review(raw string) (models.ReviewVerdict, error) {
	notes := strings.TrimSpace(raw)
	if notes == "" {
		return models.ReviewVerdict{}, Errorf(models.StageReview, raw, "empty review")
	}

	lines := strings.Split(notes, "\n")

	var verdict models.ReviewVerdict
	verdict.Notes = notes

	// Check first non-empty line for the verdict
	for _, line := range lines {
		line = strings.TrimSpace(strings.Trim(strings.TrimSpace(line), "*#_` "))
		if line == "" {
			continue
		}
		m := verdictWord.FindStringSubmatch(line)
		if m == nil {
			return models.ReviewVerdict{}, Errorf(models.StageReview, raw,
				"first line %q is not a PASS or FAIL verdict", truncate(line, 80))
		}
		// The first verdict word decides; "NOT PASS" is a failure.
		verdict.Passed = strings.HasPrefix(strings.ToUpper(m[2]), "PASS") && m[1] == ""
		verdict.Verdict = line
		break
	}

	// Extract concerns
	for _, line := range lines {
		line = strings.TrimSpace(listMarker.ReplaceAllString(line, ""))
		line = strings.TrimLeft(line, "*_ ")
		if len(line) < len("CONCERN:") || !strings.EqualFold(line[:len("CONCERN:")], "CONCERN:") {
			continue
		}
		concern := strings.TrimSpace(strings.TrimLeft(line[len("CONCERN:"):], "*_ "))
		if concern != "" {
			verdict.Concerns = append(verdict.Concerns, concern)
		}
	}

	return verdict, nil
}

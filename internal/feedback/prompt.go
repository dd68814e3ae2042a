package feedback

import (
	_ "embed"
	"strings"
)

//go:embed prompts/feedback.txt
var promptTemplate string

// BuildPrompt renders the feedback instructions for a job description.
func BuildPrompt(jobDescription string) string {
	jd := strings.TrimSpace(jobDescription)
	if jd == "" {
		jd = "N/A"
	}
	return strings.ReplaceAll(promptTemplate, "{{JOB_DESCRIPTION}}", jd)
}

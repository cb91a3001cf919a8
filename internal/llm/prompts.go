package llm

import (
	"strings"

	_ "embed"
)

//go:embed prompts/extract_resume.md
var extractResumeTemplate string

//go:embed prompts/analyze_resume.md
var analyzeResumeTemplate string

// ExtractResumePrompt builds the structured-extraction prompt for a
// resume's raw text.
func ExtractResumePrompt(resumeText string) string {
	return strings.ReplaceAll(extractResumeTemplate, "{{RESUME_TEXT}}", resumeText)
}

// AnalyzeResumePrompt builds the analysis prompt comparing a resume
// against the scraped job posting (JSON-encoded).
func AnalyzeResumePrompt(resumeText, jobJSON string) string {
	prompt := strings.ReplaceAll(analyzeResumeTemplate, "{{RESUME_TEXT}}", resumeText)
	return strings.ReplaceAll(prompt, "{{JOB_JSON}}", jobJSON)
}

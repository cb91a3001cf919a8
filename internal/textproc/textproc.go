// Normalization and PII redaction applied to extracted resume text before
// it is persisted or handed to the LLM.

package textproc

import (
	"errors"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	bulletRegex     = regexp.MustCompile("[•▪●◦∙‣⁃]")

	boilerplateRegexes = []*regexp.Regexp{
		regexp.MustCompile(`(?im)^\s*curriculum vitae\.?\s*-?\s*$`),
		regexp.MustCompile(`(?im)^\s*resume\.?\s*$`),
		regexp.MustCompile(`(?im)^\s*page\s*\d+(\s*of\s*\d+)?\s*$`),
		regexp.MustCompile(`(?m)^\s*\d+\s*$`),
	}

	emailRegex = regexp.MustCompile(`\S+@\S+`)

	linkedinRegexes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:https?://)?(?:www\.)?linkedin\.com[^\s,;]*`),
		regexp.MustCompile(`(?i)\blinkedin\s*[:\-]\s*\S+`),
	}

	githubRegexes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:https?://)?(?:www\.)?github\.com[^\s,;]*`),
		regexp.MustCompile(`(?i)\bgithub\s*[:\-]\s*\S+`),
	}

	phoneRegexes = []*regexp.Regexp{
		regexp.MustCompile(`(?:(?:\+|00)61)[\s\-.(]*(?:0\)?[\s\-.)]*)?(?:\d{1,4}[\s\-.)]?\d{3}[\s\-.)]?\d{3,4})`),
		regexp.MustCompile(`\b04[\s\-.)]*\d{2}[\s\-.)]*\d{3}[\s\-.)]*\d{3}\b`),
	}
)

// Preprocessor cleans raw resume text through a chain of steps. The chain
// mutates in place and returns the receiver so steps compose.
type Preprocessor struct {
	text string
}

func New(text string) (*Preprocessor, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("input text cannot be empty or whitespace only")
	}
	return &Preprocessor{text: text}, nil
}

func (p *Preprocessor) RemoveExtraWhitespace() *Preprocessor {
	p.text = strings.TrimSpace(whitespaceRegex.ReplaceAllString(p.text, " "))
	return p
}

func (p *Preprocessor) NormalizeUnicode() *Preprocessor {
	p.text = strings.ToLower(p.text)
	p.text = bulletRegex.ReplaceAllString(p.text, "-")
	p.text = norm.NFKC.String(p.text)
	return p
}

func (p *Preprocessor) RemoveBoilerplate() *Preprocessor {
	for _, re := range boilerplateRegexes {
		p.text = re.ReplaceAllString(p.text, "")
	}
	return p
}

func (p *Preprocessor) RedactPII() *Preprocessor {
	p.text = emailRegex.ReplaceAllString(p.text, "[REDACTED_EMAIL]")

	for _, re := range linkedinRegexes {
		p.text = re.ReplaceAllString(p.text, "[REDACTED_LINKEDIN]")
	}
	for _, re := range githubRegexes {
		p.text = re.ReplaceAllString(p.text, "[REDACTED_GITHUB]")
	}
	for _, re := range phoneRegexes {
		p.text = re.ReplaceAllString(p.text, "[REDACTED_PHONE]")
	}
	return p
}

func (p *Preprocessor) Text() string {
	return p.text
}

// Clean runs the full pipeline in its canonical order.
func Clean(text string) (string, error) {
	p, err := New(text)
	if err != nil {
		return "", err
	}
	return p.
		RemoveExtraWhitespace().
		NormalizeUnicode().
		RemoveBoilerplate().
		RedactPII().
		Text(), nil
}

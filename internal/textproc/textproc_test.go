package textproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsBlankInput(t *testing.T) {
	_, err := New("   \n\t ")
	assert.Error(t, err)

	_, err = New("")
	assert.Error(t, err)
}

func TestRemoveExtraWhitespace(t *testing.T) {
	p, err := New("  Senior   Engineer\n\nwith\t5 years  ")
	require.NoError(t, err)

	assert.Equal(t, "Senior Engineer with 5 years", p.RemoveExtraWhitespace().Text())
}

func TestNormalizeUnicodeFoldsBulletsAndCase(t *testing.T) {
	p, err := New("Built APIs • Led team ● Shipped")
	require.NoError(t, err)

	got := p.NormalizeUnicode().Text()
	assert.Equal(t, "built apis - led team - shipped", got)
}

func TestRemoveBoilerplate(t *testing.T) {
	p, err := New("Curriculum Vitae\nJane Doe\nPage 1 of 2\nExperience")
	require.NoError(t, err)

	got := p.RemoveBoilerplate().Text()
	assert.NotContains(t, got, "Curriculum Vitae")
	assert.NotContains(t, got, "Page 1 of 2")
	assert.Contains(t, got, "Jane Doe")
	assert.Contains(t, got, "Experience")
}

func TestRedactPII(t *testing.T) {
	in := "Contact jane@example.com or +61 412 345 678. " +
		"See linkedin.com/in/janedoe and github.com/janedoe for work."

	p, err := New(in)
	require.NoError(t, err)
	got := p.RedactPII().Text()

	assert.NotContains(t, got, "jane@example.com")
	assert.NotContains(t, got, "linkedin.com/in/janedoe")
	assert.NotContains(t, got, "github.com/janedoe")
	assert.NotContains(t, got, "412 345 678")

	assert.Contains(t, got, "[REDACTED_EMAIL]")
	assert.Contains(t, got, "[REDACTED_LINKEDIN]")
	assert.Contains(t, got, "[REDACTED_GITHUB]")
	assert.Contains(t, got, "[REDACTED_PHONE]")
}

func TestCleanRunsFullPipeline(t *testing.T) {
	got, err := Clean("  Jane Doe • jane@example.com • Go Engineer  ")
	require.NoError(t, err)

	assert.Equal(t, "jane doe - [REDACTED_EMAIL] - go engineer", got)
}

func TestCleanRejectsEmpty(t *testing.T) {
	_, err := Clean(" ")
	assert.Error(t, err)
}

package llm

import (
	"context"
	"errors"
	"testing"

	"physionote/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	answer string
	err    error
	last   Prompt
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Complete(_ context.Context, p Prompt) (string, error) {
	s.last = p
	return s.answer, s.err
}

func TestParseSOAPAcceptsFourSections(t *testing.T) {
	sections, err := ParseSOAP(`{"subjective":" Knee pain for 3 weeks ","objective":"Swelling","assessment":"Patellar tendinopathy","plan":"Eccentric loading","extra":"ignored"}`)
	require.NoError(t, err)
	assert.Equal(t, "Knee pain for 3 weeks", sections.Subjective)
	assert.Equal(t, "Swelling", sections.Objective)
	assert.Equal(t, "Patellar tendinopathy", sections.Assessment)
	assert.Equal(t, "Eccentric loading", sections.Plan)
}

func TestParseSOAPStripsCodeFence(t *testing.T) {
	sections, err := ParseSOAP("```json\n{\"subjective\":\"s\",\"objective\":\"o\",\"assessment\":\"a\",\"plan\":\"p\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, "p", sections.Plan)
}

func TestParseSOAPRejectsInvalidShapes(t *testing.T) {
	cases := map[string]struct {
		raw     string
		problem string
	}{
		"empty objective": {raw: `{"subjective":"...","objective":"","assessment":"...","plan":"..."}`, problem: "field objective is empty"},
		"blank plan":      {raw: `{"subjective":"s","objective":"o","assessment":"a","plan":"   "}`, problem: "field plan is empty"},
		"missing field":   {raw: `{"subjective":"s","objective":"o","assessment":"a"}`, problem: "missing field plan"},
		"null field":      {raw: `{"subjective":null,"objective":"o","assessment":"a","plan":"p"}`, problem: "missing field subjective"},
		"non string":      {raw: `{"subjective":"s","objective":["o"],"assessment":"a","plan":"p"}`, problem: "field objective must be a string"},
		"not json":        {raw: `Here is your note`, problem: "not a JSON object"},
		"json array":      {raw: `["s","o","a","p"]`, problem: "not a JSON object"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			sections, err := ParseSOAP(tc.raw)
			assert.Nil(t, sections)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, vErr.Error(), tc.problem)
		})
	}
}

func TestParseSOAPReportsEveryProblem(t *testing.T) {
	_, err := ParseSOAP(`{"subjective":"","objective":1}`)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Len(t, vErr.Problems, 4)
}

func TestBuildPromptEmbedsInputs(t *testing.T) {
	p := BuildPrompt(ExtractRequest{
		Transcript: "Patient reports knee pain",
		Template:   "## Subjective\n## Objective",
		Language:   "de",
		Format:     model.NoteFormatBullets,
		Verbosity:  model.NoteVerbosityConcise,
	})
	assert.Contains(t, p.System, "German")
	assert.Contains(t, p.System, "## Subjective\n## Objective")
	assert.Contains(t, p.System, "bullet")
	assert.Contains(t, p.System, `"subjective", "objective", "assessment", "plan"`)
	assert.Contains(t, p.User, "Patient reports knee pain")
	assert.NotContains(t, p.System, "Patient reports knee pain")
}

func TestLanguageName(t *testing.T) {
	assert.Equal(t, "French", LanguageName("fr"))
	assert.Equal(t, "Spanish", LanguageName("ES"))
	assert.Equal(t, "pt", LanguageName("pt"))
	assert.True(t, SupportedLanguage("en"))
	assert.False(t, SupportedLanguage("pt"))
}

func TestGatewayExtract(t *testing.T) {
	stub := &stubProvider{answer: `{"subjective":"s","objective":"o","assessment":"a","plan":"p"}`}
	g := NewGateway(stub)

	sections, err := g.Extract(context.Background(), ExtractRequest{Transcript: "t", Template: "tpl", Language: "fr"})
	require.NoError(t, err)
	assert.Equal(t, &model.SOAPSections{Subjective: "s", Objective: "o", Assessment: "a", Plan: "p"}, sections)
	assert.Contains(t, stub.last.System, "French")
	assert.Equal(t, "stub", g.ProviderName())
}

func TestGatewayExtractPropagatesProviderError(t *testing.T) {
	boom := errors.New("rate limited")
	g := NewGateway(&stubProvider{err: boom})

	_, err := g.Extract(context.Background(), ExtractRequest{})
	assert.ErrorIs(t, err, boom)
}

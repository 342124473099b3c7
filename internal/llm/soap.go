package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"physionote/internal/model"
)

var soapKeys = []string{"subjective", "objective", "assessment", "plan"}

// ValidationError lists every way a provider answer failed the SOAP shape.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid SOAP response: " + strings.Join(e.Problems, "; ")
}

// stripCodeFence removes a surrounding ``` or ```json fence some models add.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ParseSOAP decodes and validates a provider answer. All four sections must be
// present, string-typed and non-blank; extra keys are ignored.
func ParseSOAP(raw string) (*model.SOAPSections, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &obj); err != nil {
		return nil, &ValidationError{Problems: []string{"response is not a JSON object: " + err.Error()}}
	}

	values := make(map[string]string, len(soapKeys))
	var problems []string
	for _, key := range soapKeys {
		v, ok := obj[key]
		if !ok || v == nil {
			problems = append(problems, "missing field "+key)
			continue
		}
		s, ok := v.(string)
		if !ok {
			problems = append(problems, fmt.Sprintf("field %s must be a string, got %T", key, v))
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			problems = append(problems, "field "+key+" is empty")
			continue
		}
		values[key] = s
	}
	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}
	return &model.SOAPSections{
		Subjective: values["subjective"],
		Objective:  values["objective"],
		Assessment: values["assessment"],
		Plan:       values["plan"],
	}, nil
}

// Gateway renders the prompt, calls the configured provider once and validates the answer.
type Gateway struct {
	provider Provider
}

func NewGateway(provider Provider) *Gateway {
	return &Gateway{provider: provider}
}

// ProviderName returns the name of the configured provider.
func (g *Gateway) ProviderName() string {
	return g.provider.Name()
}

// Extract runs a single extraction attempt.
func (g *Gateway) Extract(ctx context.Context, req ExtractRequest) (*model.SOAPSections, error) {
	raw, err := g.provider.Complete(ctx, BuildPrompt(req))
	if err != nil {
		return nil, err
	}
	return ParseSOAP(raw)
}

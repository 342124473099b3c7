package llm

import (
	"fmt"
	"strings"

	"physionote/internal/model"
)

var languageNames = map[string]string{
	"fr": "French",
	"de": "German",
	"en": "English",
	"es": "Spanish",
}

// LanguageName returns the English name of a supported note language code.
func LanguageName(code string) string {
	if name, ok := languageNames[strings.ToLower(code)]; ok {
		return name
	}
	return code
}

// SupportedLanguage reports whether notes can be written in the language code.
func SupportedLanguage(code string) bool {
	_, ok := languageNames[strings.ToLower(code)]
	return ok
}

// ExtractRequest is the input of one SOAP extraction.
type ExtractRequest struct {
	Transcript string
	Template   string
	Language   string
	Format     string
	Verbosity  string
}

func formatRule(format string) string {
	if format == model.NoteFormatBullets {
		return "Write each section as a list of short bullet points, one per line, each starting with \"- \"."
	}
	return "Write each section as flowing prose in complete sentences."
}

func verbosityRule(verbosity string) string {
	if verbosity == model.NoteVerbosityConcise {
		return "Keep every section brief: only the clinically relevant facts, no repetition."
	}
	return "Give enough detail for another physiotherapist to continue care without listening to the session."
}

// BuildPrompt renders the system instruction and user message for a SOAP extraction.
func BuildPrompt(req ExtractRequest) Prompt {
	language := LanguageName(req.Language)

	var sys strings.Builder
	sys.WriteString("You are a clinical documentation assistant for physiotherapists. ")
	sys.WriteString("You turn the transcript of a consultation into a SOAP note.\n\n")
	sys.WriteString("Rules:\n")
	fmt.Fprintf(&sys, "- Write the note in %s, whatever language the transcript uses.\n", language)
	sys.WriteString("- Use only information present in the transcript. Do not invent findings, measurements or diagnoses.\n")
	sys.WriteString("- When the transcript says nothing relevant for a section, state that briefly instead of leaving it empty.\n")
	fmt.Fprintf(&sys, "- %s\n", formatRule(req.Format))
	fmt.Fprintf(&sys, "- %s\n", verbosityRule(req.Verbosity))
	sys.WriteString("- Answer with a single JSON object and nothing else. It must have exactly these string keys: ")
	sys.WriteString("\"subjective\", \"objective\", \"assessment\", \"plan\".\n\n")
	sys.WriteString("Follow the structure and headings of this note template:\n")
	sys.WriteString("<template>\n")
	sys.WriteString(req.Template)
	sys.WriteString("\n</template>")

	user := "Consultation transcript:\n<transcript>\n" + req.Transcript + "\n</transcript>"
	return Prompt{System: sys.String(), User: user}
}

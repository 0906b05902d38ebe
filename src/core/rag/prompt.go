package rag

import (
	"bytes"
	"text/template"
)

// Prompt templates are deterministic: the same question and fragments
// always assemble the same prompt. Fragment order is retrieval rank and is
// preserved verbatim.
const answerPromptTmpl = `You are a careful assistant answering a question from document fragments.

Context fragments, ranked most relevant first:

{{range .Fragments}}[Fragment {{.N}}] {{.Content}}

{{end}}Answer the question using only the information in the fragments above. Weight earlier fragments more heavily. If the fragments do not contain the answer, say that the documents do not cover it. Do not invent facts.

Question: {{.Question}}`

const classifyPromptTmpl = `Classify the following document text into a single category.

Respond with a JSON object of the form {"category": "...", "confidence": 0.0, "tags": ["..."]} where confidence is between 0 and 1 and tags has at most five entries. Respond with the JSON object only.

Text:
{{.Text}}`

const summarizePromptTmpl = `Summarize the following document text.

Respond with a JSON object of the form {"summary": "...", "key_points": ["..."]}. Respond with the JSON object only.

Text:
{{.Text}}`

var (
	answerTmpl    = template.Must(template.New("answer").Parse(answerPromptTmpl))
	classifyTmpl  = template.Must(template.New("classify").Parse(classifyPromptTmpl))
	summarizeTmpl = template.Must(template.New("summarize").Parse(summarizePromptTmpl))
)

type promptFragment struct {
	N       int
	Content string
}

// BuildPrompt assembles the answer prompt from the question and ordered
// context fragments. An empty context list is KindInvalidInput: there is no
// valid "answer with no context" prompt, callers must special-case zero
// retrieval results before reaching the builder.
func BuildPrompt(question string, contextChunks []string) (string, error) {
	if len(contextChunks) == 0 {
		return "", E(KindInvalidInput, StageGeneration, "no context fragments to build prompt from")
	}

	fragments := make([]promptFragment, len(contextChunks))
	for i, c := range contextChunks {
		fragments[i] = promptFragment{N: i + 1, Content: c}
	}

	var buf bytes.Buffer
	err := answerTmpl.Execute(&buf, struct {
		Question  string
		Fragments []promptFragment
	}{Question: question, Fragments: fragments})
	if err != nil {
		return "", WrapErr(KindInternal, StageGeneration, "failed to execute answer template", err)
	}

	return buf.String(), nil
}

// ClassifyPrompt renders the classification prompt for a text.
func ClassifyPrompt(text string) string {
	var buf bytes.Buffer
	_ = classifyTmpl.Execute(&buf, struct{ Text string }{Text: text})
	return buf.String()
}

// SummarizePrompt renders the summarization prompt for a text.
func SummarizePrompt(text string) string {
	var buf bytes.Buffer
	_ = summarizeTmpl.Execute(&buf, struct{ Text string }{Text: text})
	return buf.String()
}

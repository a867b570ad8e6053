package aptnotice

import (
	"context"
	"strings"
)

// ModelChoice selects the language-model backend for a query.
type ModelChoice string

const (
	ModelGemini ModelChoice = "gemini"
	ModelOpenAI ModelChoice = "openai"
)

// DefaultModelChoice is used when a query names no backend.
const DefaultModelChoice = ModelGemini

// ModelChoices lists every supported backend.
var ModelChoices = []ModelChoice{ModelGemini, ModelOpenAI}

// ParseModelChoice maps a caller-supplied tag to a ModelChoice.
// An empty tag selects DefaultModelChoice.
func ParseModelChoice(s string) (ModelChoice, error) {
	switch ModelChoice(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultModelChoice, nil
	case ModelGemini:
		return ModelGemini, nil
	case ModelOpenAI:
		return ModelOpenAI, nil
	default:
		return "", Errorf(EINVALID, "unknown model %q", s)
	}
}

// Completion is a single request to a language model.
type Completion struct {
	System          string  `json:"system"`
	User            string  `json:"user"`
	Temperature     float32 `json:"temperature"`
	MaxOutputTokens int32   `json:"maxOutputTokens"`
}

// Generator produces text from a language model.
type Generator interface {
	Complete(ctx context.Context, req Completion) (string, error)
}

// Fixed replies of the answerer.
const (
	EmptyQuestionReply = "질문을 입력해 주세요."
	NotFoundReply      = "해당 공고문에서 관련 내용을 찾을 수 없습니다."
	RefusalPhrase      = "공고문에서 해당 정보를 찾을 수 없습니다."
	ApologyReply       = "죄송합니다. 답변을 생성하는 중 문제가 발생했습니다. 잠시 후 다시 시도해 주세요."
)

// Question is a natural language query scoped to one document.
type Question struct {
	DocID string      `json:"docId"`
	Text  string      `json:"text"`
	Model ModelChoice `json:"model"`
}

// Answer is the reply to a Question.
type Answer struct {
	Text string `json:"text"`

	// Backend is set when the text came from a language model.
	Backend ModelChoice `json:"backend,omitempty"`

	// Sources are the retrieved chunks in rank order.
	Sources []SearchResult `json:"sources,omitempty"`
}

// Answerer answers questions grounded in one indexed document.
type Answerer interface {
	// Answer never fails: problems degrade to a fixed apologetic reply.
	Answer(ctx context.Context, q Question) *Answer
}

// FormatGrounding joins retrieved chunk contents in rank order, separated
// by blank lines.
func FormatGrounding(results []SearchResult) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		if r.Chunk == nil {
			continue
		}
		parts = append(parts, strings.TrimSpace(r.Chunk.Content))
	}
	return strings.Join(parts, "\n\n")
}

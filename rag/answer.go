package rag

import (
	"context"
	"log/slog"
	"strings"

	"github.com/fwojciec/aptnotice"
)

// DefaultMaxOutputTokens caps the length of generated answers.
const DefaultMaxOutputTokens = 1024

// Ensure Answerer implements aptnotice.Answerer at compile time.
var _ aptnotice.Answerer = (*Answerer)(nil)

// SystemPrompt confines the model to the retrieved announcement excerpts.
var SystemPrompt = strings.Join([]string{
	"당신은 아파트 청약 공고문 분석 전문가입니다.",
	"반드시 아래 [공고문 내용]에 포함된 정보만 사용하여 답변하세요.",
	"공고문에 없는 내용은 추측하거나 일반 상식으로 보충하지 마세요.",
	"답을 찾을 수 없으면 정확히 다음 문장으로만 답하세요: " + aptnotice.RefusalPhrase,
	"금액, 날짜, 세대수 등 수치는 공고문에 적힌 그대로 인용하세요.",
}, "\n")

// BuildUserPrompt places the grounding block ahead of the question.
func BuildUserPrompt(grounding, question string) string {
	var sb strings.Builder
	sb.WriteString("[공고문 내용]\n")
	sb.WriteString(grounding)
	sb.WriteString("\n\n[질문]\n")
	sb.WriteString(strings.TrimSpace(question))
	return sb.String()
}

// Answerer answers questions from chunks of a single indexed document.
type Answerer struct {
	Index      aptnotice.VectorIndex
	Generators map[aptnotice.ModelChoice]aptnotice.Generator

	TopK            int
	MaxOutputTokens int32

	Logger *slog.Logger
}

// NewAnswerer creates an Answerer with default retrieval and output limits.
func NewAnswerer(index aptnotice.VectorIndex, generators map[aptnotice.ModelChoice]aptnotice.Generator) *Answerer {
	return &Answerer{
		Index:           index,
		Generators:      generators,
		TopK:            DefaultTopK,
		MaxOutputTokens: DefaultMaxOutputTokens,
	}
}

// Answer retrieves the chunks of q.DocID closest to the question and asks
// the selected backend to answer from them. Failures degrade to fixed
// replies. A question without a doc_id is never answered across
// documents; it gets NotFoundReply.
func (a *Answerer) Answer(ctx context.Context, q aptnotice.Question) *aptnotice.Answer {
	if strings.TrimSpace(q.Text) == "" {
		return &aptnotice.Answer{Text: aptnotice.EmptyQuestionReply}
	}

	logger := a.logger().With("doc_id", q.DocID)

	// Retrieval is always scoped to one announcement.
	if strings.TrimSpace(q.DocID) == "" {
		logger.Warn("question without doc_id")
		return &aptnotice.Answer{Text: aptnotice.NotFoundReply}
	}

	filter := aptnotice.SearchFilter{DocID: aptnotice.StringPtr(q.DocID)}
	results, err := a.Index.Search(ctx, q.Text, a.topK(), filter)
	if err != nil {
		logger.Error("retrieval failed", "err", err)
		return &aptnotice.Answer{Text: aptnotice.ApologyReply}
	}
	if len(results) == 0 {
		return &aptnotice.Answer{Text: aptnotice.NotFoundReply}
	}

	model := q.Model
	if model == "" {
		model = aptnotice.DefaultModelChoice
	}
	gen, ok := a.Generators[model]
	if !ok || gen == nil {
		logger.Error("no generator configured", "backend", model)
		return &aptnotice.Answer{Text: aptnotice.ApologyReply, Sources: results}
	}

	text, err := gen.Complete(ctx, aptnotice.Completion{
		System:          SystemPrompt,
		User:            BuildUserPrompt(aptnotice.FormatGrounding(results), q.Text),
		Temperature:     0,
		MaxOutputTokens: a.maxOutputTokens(),
	})
	if err != nil {
		logger.Error("generation failed", "backend", model, "err", err)
		return &aptnotice.Answer{Text: aptnotice.ApologyReply, Sources: results}
	}

	return &aptnotice.Answer{Text: text, Backend: model, Sources: results}
}

func (a *Answerer) topK() int {
	if a.TopK <= 0 {
		return DefaultTopK
	}
	return a.TopK
}

func (a *Answerer) maxOutputTokens() int32 {
	if a.MaxOutputTokens <= 0 {
		return DefaultMaxOutputTokens
	}
	return a.MaxOutputTokens
}

func (a *Answerer) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.Logger
}

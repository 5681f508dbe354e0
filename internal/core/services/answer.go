package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
	"github.com/custodia-labs/ragkit/internal/core/ports/driving"
	"github.com/custodia-labs/ragkit/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// Messages returned in place of a generated answer.
const (
	NoMedicalContextMessage = "No relevant documents found."
	NoPolicyContextMessage  = "No relevant policy information found."
	generationErrorPrefix   = "Error generating response: "
)

// AnswerService retrieves context for a question and asks the LLM to answer from it.
type AnswerService struct {
	retrieval driving.RetrievalService
	llm       driven.LLMService
	prompts   driven.PromptStore
	profile   domain.Profile
	topK      int
	genOpts   driven.GenerateOptions
}

// NewAnswerService creates an answer service for profile.
// The llmService parameter is optional; without it every answer is a labelled failure.
func NewAnswerService(
	retrieval driving.RetrievalService,
	llmService driven.LLMService,
	prompts driven.PromptStore,
	profile domain.Profile,
) *AnswerService {
	if !profile.IsValid() {
		profile = domain.ProfileMedical
	}
	return &AnswerService{
		retrieval: retrieval,
		llm:       llmService,
		prompts:   prompts,
		profile:   profile,
		topK:      domain.DefaultTopK,
	}
}

// SetDefaultTopK changes the number of chunks retrieved when Ask is called with zero.
func (s *AnswerService) SetDefaultTopK(k int) {
	if k > 0 {
		s.topK = k
	}
}

// SetGenerateOptions sets the options passed to every Generate call.
func (s *AnswerService) SetGenerateOptions(opts driven.GenerateOptions) {
	s.genOpts = opts
}

// Profile returns the answering profile.
func (s *AnswerService) Profile() domain.Profile {
	return s.profile
}

// Ask retrieves context and generates an answer.
// Retrieval errors are returned. Generation errors are reported in the Answer.
func (s *AnswerService) Ask(ctx context.Context, question string, topK int) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}
	if topK <= 0 {
		topK = s.topK
	}

	logger.Section("Answer")
	logger.Debug("Question: %q (profile=%s, top_k=%d)", question, s.profile, topK)

	results, err := s.retrieval.Query(ctx, question, topK)
	if err != nil {
		return nil, err
	}

	answer := &domain.Answer{Question: question, Sources: results}

	contextText := JoinContext(results)
	if contextText == "" {
		answer.Text = s.noContextMessage()
		return answer, nil
	}

	template, err := s.prompts.Load(s.promptName())
	if err != nil {
		return nil, fmt.Errorf("load prompt: %w", err)
	}
	if err := domain.CheckPromptTemplate(template, 2); err != nil {
		return nil, fmt.Errorf("prompt %s: %w", s.promptName(), err)
	}

	text, err := s.generate(ctx, fmt.Sprintf(template, contextText, question))
	if err != nil {
		logger.Warn("Generation failed: %v", err)
		answer.Failed = true
		answer.Text = generationErrorPrefix + generationMessage(err)
		return answer, nil
	}

	answer.Text = text
	return answer, nil
}

func (s *AnswerService) generate(ctx context.Context, prompt string) (string, error) {
	if s.llm == nil {
		return "", &domain.GenerationError{Err: domain.ErrLLMUnavailable}
	}
	defer logger.Timed("generate with " + s.llm.ModelName())()

	text, err := s.llm.Generate(ctx, prompt, s.genOpts)
	if err != nil {
		return "", &domain.GenerationError{Err: err}
	}
	return strings.TrimSpace(text), nil
}

func (s *AnswerService) promptName() string {
	if s.profile == domain.ProfilePolicy {
		return driven.PromptPolicyAnswer
	}
	return driven.PromptMedicalAnswer
}

func (s *AnswerService) noContextMessage() string {
	if s.profile == domain.ProfilePolicy {
		return NoPolicyContextMessage
	}
	return NoMedicalContextMessage
}

// JoinContext concatenates the non-blank texts of results, separated by blank lines.
func JoinContext(results []domain.QueryResult) string {
	texts := make([]string, 0, len(results))
	for i := range results {
		if t := results[i].Text(); strings.TrimSpace(t) != "" {
			texts = append(texts, t)
		}
	}
	return strings.Join(texts, "\n\n")
}

// generationMessage returns the provider message of a GenerationError.
func generationMessage(err error) string {
	var genErr *domain.GenerationError
	if errors.As(err, &genErr) && genErr.Err != nil {
		return genErr.Err.Error()
	}
	return err.Error()
}

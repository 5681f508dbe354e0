package services

import (
	"context"
	"time"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driving"
	"github.com/custodia-labs/ragkit/internal/logger"
)

// Ensure EvaluationService implements the interface.
var _ driving.EvaluationService = (*EvaluationService)(nil)

// DefaultEvalQueries is the clinical question set used when none is supplied.
var DefaultEvalQueries = []string{
	"What are the symptoms of allergic rhinitis?",
	"Describe the procedure for laparoscopic gastric bypass.",
	"What are the risks of gastric bypass surgery?",
	"What is a 2-D Echocardiogram used for?",
	"Symptoms of mitral regurgitation?",
	"Treatment for chronic back pain?",
	"What is sleep apnea?",
	"Medications for high cholesterol?",
	"Signs of a heart attack?",
	"What is a colonoscopy?",
	"Treatment for carpal tunnel syndrome?",
	"Symptoms of pneumonia?",
	"What is degenerative disc disease?",
	"Management of type 2 diabetes?",
	"What is a hysterectomy?",
	"Symptoms of anxiety disorder?",
	"Treatment for rotator cuff tear?",
	"What is a CT scan used for?",
	"Symptoms of kidney stones?",
	"What is cataract surgery?",
	"Treatment for migraine headaches?",
	"What is a hernia repair?",
	"Symptoms of hypothyroidism?",
	"What is a knee replacement?",
	"Treatment for asthma?",
	"What is a biopsy?",
	"Symptoms of anemia?",
	"What is a lumbar puncture?",
	"Treatment for depression?",
	"What is an MRI used for?",
}

// EvaluationService runs a batch of questions through an AnswerService.
type EvaluationService struct {
	answers driving.AnswerService
	now     func() time.Time
}

// NewEvaluationService creates an evaluation service.
func NewEvaluationService(answers driving.AnswerService) *EvaluationService {
	return &EvaluationService{answers: answers, now: time.Now}
}

// Run answers every query in order. A failed query is recorded as
// "ERROR: <err>" with zero duration and the run continues.
// An empty query set runs DefaultEvalQueries.
func (s *EvaluationService) Run(ctx context.Context, queries []string) ([]domain.EvalResult, error) {
	if len(queries) == 0 {
		queries = DefaultEvalQueries
	}

	logger.Section("Evaluation")
	logger.Info("Starting evaluation on %d queries", len(queries))

	results := make([]domain.EvalResult, 0, len(queries))
	for i, q := range queries {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		logger.Info("Processing query %d/%d: %s", i+1, len(queries), q)

		start := s.now()
		answer, err := s.answers.Ask(ctx, q, 0)
		if err != nil {
			logger.Warn("Error on query %q: %v", q, err)
			results = append(results, domain.EvalResult{Query: q, Response: "ERROR: " + err.Error()})
			continue
		}
		results = append(results, domain.EvalResult{
			Query:    q,
			Response: answer.Text,
			Duration: s.now().Sub(start),
		})
	}
	return results, nil
}

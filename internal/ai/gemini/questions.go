package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/ai"
	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/utils"
)

const questionsSystem = "You are an experienced technical interviewer. You must return a valid JSON array."

//go:embed questions_prompt.md
var questionsPromptTemplate string

// QuestionGenerator asks Gemini for interview questions. Regeneration reuses
// the last request made for the same resume, since only the job id and the
// resume text are known at that point.
type QuestionGenerator struct {
	generator ai.Assistant
	logger    *zap.Logger
	maxLogLen int

	mu       sync.Mutex
	requests map[string]interview.QuestionRequest
}

var (
	_ interview.QuestionGenerator   = (*QuestionGenerator)(nil)
	_ interview.QuestionRegenerator = (*QuestionGenerator)(nil)
)

func NewQuestionGenerator(generator ai.Assistant, maxLogLength int, logger *zap.Logger) *QuestionGenerator {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &QuestionGenerator{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
		requests:  make(map[string]interview.QuestionRequest),
	}
}

func (q *QuestionGenerator) GenerateQuestions(ctx context.Context, req interview.QuestionRequest) ([]interview.Question, error) {
	if strings.TrimSpace(req.ResumeText) == "" {
		return nil, interview.ErrMissingResumeText
	}
	if len(req.QuestionTypes) == 0 {
		req.QuestionTypes = interview.DefaultQuestionTypes()
	}
	if req.MaxQuestions <= 0 {
		req.MaxQuestions = interview.DefaultMaxQuestions
	}

	q.mu.Lock()
	q.requests[req.ResumeText] = req
	q.mu.Unlock()

	return q.generate(ctx, req)
}

func (q *QuestionGenerator) RegenerateQuestions(ctx context.Context, jobID int, resumeText string) ([]interview.Question, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, interview.ErrMissingResumeText
	}

	q.mu.Lock()
	req, ok := q.requests[resumeText]
	q.mu.Unlock()

	if !ok {
		q.logger.Debug("no previous question request, using defaults", zap.Int("job_id", jobID))
		req = interview.QuestionRequest{
			ResumeText:    resumeText,
			QuestionTypes: interview.DefaultQuestionTypes(),
			MaxQuestions:  interview.DefaultMaxQuestions,
		}
	}

	return q.generate(ctx, req)
}

func (q *QuestionGenerator) generate(ctx context.Context, req interview.QuestionRequest) ([]interview.Question, error) {
	prompt := buildQuestionsPrompt(req)

	raw, err := q.generator.GenerateContent(ctx, questionsSystem, prompt)
	if err != nil {
		return nil, err
	}

	q.logger.Debug("gemini questions response",
		zap.Int("interview_id", req.InterviewID),
		zap.String("response_preview", utils.TruncateForLog(raw, q.maxLogLen)),
	)

	questions, err := parseQuestions(raw)
	if err != nil {
		return nil, err
	}

	if len(questions) > req.MaxQuestions {
		questions = questions[:req.MaxQuestions]
	}

	return questions, nil
}

func buildQuestionsPrompt(req interview.QuestionRequest) string {
	template := questionsPromptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Job:\n{{JOB_DESCRIPTION}}\n\nResume:\n{{RESUME_TEXT}}\n\nTypes: {{QUESTION_TYPES}}, max {{MAX_QUESTIONS}}.\n\nJSON Response:"
	}

	types := make([]string, 0, len(req.QuestionTypes))
	for _, t := range req.QuestionTypes {
		if t = sanitizeLine(t); t != "" {
			types = append(types, t)
		}
	}

	replacer := strings.NewReplacer(
		"{{QUESTION_TYPES}}", strings.Join(types, ", "),
		"{{MAX_QUESTIONS}}", strconv.Itoa(req.MaxQuestions),
		"{{JOB_DESCRIPTION}}", valueOrNone(strings.TrimSpace(req.JobDescription)),
		"{{RESUME_TEXT}}", strings.TrimSpace(req.ResumeText),
	)

	return replacer.Replace(template)
}

// parseQuestions accepts a JSON array or an object holding it under
// "questions". Items are objects or plain strings.
func parseQuestions(raw string) ([]interview.Question, error) {
	cleaned := extractJSON(raw)

	var items []any
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		var wrapped struct {
			Questions []any `json:"questions"`
		}
		if wrapErr := json.Unmarshal([]byte(cleaned), &wrapped); wrapErr != nil {
			return nil, fmt.Errorf("parse gemini response: %w", err)
		}
		items = wrapped.Questions
	}

	questions := make([]interview.Question, 0, len(items))
	for _, item := range items {
		var question interview.Question
		switch val := item.(type) {
		case map[string]any:
			question = interview.Question{
				Text: coerceString(val["question"]),
				Type: coerceString(val["type"]),
			}
		default:
			question = interview.Question{Text: coerceString(val)}
		}

		if question.Text == "" {
			continue
		}
		questions = append(questions, question)
	}

	if len(questions) == 0 {
		return nil, errors.New("gemini response has no questions")
	}

	return questions, nil
}

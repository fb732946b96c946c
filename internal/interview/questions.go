package interview

import "context"

const (
	QuestionTypeBehavioral  = "behavioral"
	QuestionTypeResumeBased = "resume_based"
	QuestionTypeJobBased    = "job_based"

	DefaultMaxQuestions = 10
)

// DefaultQuestionTypes returns the question mix requested after resume analysis.
func DefaultQuestionTypes() []string {
	return []string{QuestionTypeBehavioral, QuestionTypeResumeBased, QuestionTypeJobBased}
}

type QuestionRequest struct {
	JobDescription string
	ResumeText     string
	QuestionTypes  []string
	MaxQuestions   int
	InterviewID    int
}

type Question struct {
	Text string `json:"question" mapstructure:"question"`
	Type string `json:"type" mapstructure:"type"`
}

// QuestionGenerator returns a non-empty ordered list of questions.
type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, req QuestionRequest) ([]Question, error)
}

// QuestionRegenerator generates questions again for a job and resume pair.
type QuestionRegenerator interface {
	RegenerateQuestions(ctx context.Context, jobID int, resumeText string) ([]Question, error)
}

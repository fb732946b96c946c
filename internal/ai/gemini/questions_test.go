package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/interview"
)

func TestQuestionGeneratorGenerate(t *testing.T) {
	stub := &stubGenerator{response: "```json\n[{\"question\": \"Hello! Tell me about yourself.\", \"type\": \"behavioral\"}, {\"question\": \"Why Go?\", \"type\": \"job_based\"}]\n```"}
	generator := NewQuestionGenerator(stub, 0, zap.NewNop())

	questions, err := generator.GenerateQuestions(context.Background(), interview.QuestionRequest{
		JobDescription: "Build services",
		ResumeText:     "Go, Kubernetes",
		QuestionTypes:  interview.DefaultQuestionTypes(),
		MaxQuestions:   10,
		InterviewID:    42,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(questions) != 2 || questions[0].Type != interview.QuestionTypeBehavioral {
		t.Fatalf("unexpected questions: %+v", questions)
	}

	for _, expected := range []string{
		"Use only these question types: behavioral, resume_based, job_based.",
		"Generate at most 10 questions.",
		"Build services",
		"Go, Kubernetes",
	} {
		if !strings.Contains(stub.lastPrompt, expected) {
			t.Fatalf("expected %q in prompt: %s", expected, stub.lastPrompt)
		}
	}
}

func TestQuestionGeneratorCapsCount(t *testing.T) {
	stub := &stubGenerator{response: `{"questions": ["A", "B", "C"]}`}
	generator := NewQuestionGenerator(stub, 0, zap.NewNop())

	questions, err := generator.GenerateQuestions(context.Background(), interview.QuestionRequest{ResumeText: "Go", MaxQuestions: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
}

func TestQuestionGeneratorRegenerateReusesRequest(t *testing.T) {
	stub := &stubGenerator{response: `["Why Go?"]`}
	generator := NewQuestionGenerator(stub, 0, zap.NewNop())
	ctx := context.Background()

	if _, err := generator.GenerateQuestions(ctx, interview.QuestionRequest{
		JobDescription: "Build payment services",
		ResumeText:     "Go",
		QuestionTypes:  []string{"job_based"},
		MaxQuestions:   3,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stub.lastPrompt = ""
	if _, err := generator.RegenerateQuestions(ctx, 7, "Go"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stub.lastPrompt, "Build payment services") || !strings.Contains(stub.lastPrompt, "types: job_based.") {
		t.Fatalf("expected previous request to be reused: %s", stub.lastPrompt)
	}

	if _, err := generator.RegenerateQuestions(ctx, 7, "Python"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stub.lastPrompt, "behavioral, resume_based, job_based") {
		t.Fatalf("expected default question types for unknown resume: %s", stub.lastPrompt)
	}
}

func TestQuestionGeneratorErrors(t *testing.T) {
	ctx := context.Background()

	generator := NewQuestionGenerator(&stubGenerator{response: `[]`}, 0, zap.NewNop())
	if _, err := generator.GenerateQuestions(ctx, interview.QuestionRequest{}); !errors.Is(err, interview.ErrMissingResumeText) {
		t.Fatalf("expected missing resume text, got %v", err)
	}
	if _, err := generator.RegenerateQuestions(ctx, 1, " "); !errors.Is(err, interview.ErrMissingResumeText) {
		t.Fatalf("expected missing resume text, got %v", err)
	}
	if _, err := generator.GenerateQuestions(ctx, interview.QuestionRequest{ResumeText: "Go"}); err == nil {
		t.Fatalf("expected error for empty question list")
	}

	generator = NewQuestionGenerator(&stubGenerator{err: errors.New("unavailable")}, 0, zap.NewNop())
	if _, err := generator.GenerateQuestions(ctx, interview.QuestionRequest{ResumeText: "Go"}); err == nil {
		t.Fatalf("expected generator error")
	}
}

func TestParseQuestions(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		count   int
		wantErr bool
	}{
		{name: "array of objects", raw: `[{"question": "A", "type": "behavioral"}]`, count: 1},
		{name: "wrapped", raw: `{"questions": [{"question": "A"}, {"question": "B"}]}`, count: 2},
		{name: "strings", raw: `["A", "", "B"]`, count: 2},
		{name: "fenced", raw: "```\n[\"A\"]\n```", count: 1},
		{name: "empty", raw: `[]`, wantErr: true},
		{name: "prose", raw: "Here are some questions", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			questions, err := parseQuestions(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(questions) != tt.count {
				t.Fatalf("expected %d questions, got %d", tt.count, len(questions))
			}
		})
	}
}

package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/spigell/hh-interviewer/internal/interview"
)

const (
	apiGenerateQuestionPath   = "/interview-ai/generate-question"
	apiRegenerateQuestionPath = "/interviews/questions/generate"
)

type generateQuestionRequest struct {
	JobDescription      string              `json:"job_description"`
	ResumeText          string              `json:"resume_text"`
	QuestionTypes       []string            `json:"question_types"`
	MaxQuestions        int                 `json:"max_questions"`
	InterviewID         int                 `json:"interview_id"`
	ConversationHistory []map[string]string `json:"conversation_history"`
}

type regenerateQuestionsRequest struct {
	JobID      int    `json:"job_id"`
	ResumeText string `json:"resume_text"`
}

func (c *Client) GenerateQuestions(ctx context.Context, req interview.QuestionRequest) ([]interview.Question, error) {
	body, err := json.Marshal(generateQuestionRequest{
		JobDescription:      req.JobDescription,
		ResumeText:          req.ResumeText,
		QuestionTypes:       req.QuestionTypes,
		MaxQuestions:        req.MaxQuestions,
		InterviewID:         req.InterviewID,
		ConversationHistory: []map[string]string{},
	})
	if err != nil {
		return nil, err
	}

	data, err := c.do(ctx, request{method: http.MethodPost, path: apiGenerateQuestionPath, body: body, contentType: contentType})
	if err != nil {
		return nil, err
	}

	return parseQuestions(data)
}

func (c *Client) RegenerateQuestions(ctx context.Context, jobID int, resumeText string) ([]interview.Question, error) {
	body, err := json.Marshal(regenerateQuestionsRequest{JobID: jobID, ResumeText: resumeText})
	if err != nil {
		return nil, err
	}

	data, err := c.do(ctx, request{method: http.MethodPost, path: apiRegenerateQuestionPath, body: body, contentType: contentType})
	if err != nil {
		return nil, err
	}

	return parseQuestions(data)
}

// parseQuestions accepts {"questions": [...]}, {"question": ...} and a bare
// array. Each question is either an object with question and type fields or
// a plain string.
func parseQuestions(data []byte) ([]interview.Question, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("questions response is not valid JSON")
	}

	root := gjson.ParseBytes(data)

	var items []gjson.Result
	switch {
	case root.IsArray():
		items = root.Array()
	case root.Get("questions").IsArray():
		items = root.Get("questions").Array()
	case root.Get("question").Exists():
		items = []gjson.Result{root.Get("question")}
	default:
		return nil, fmt.Errorf("unexpected questions response: %s", root.Raw)
	}

	questions := make([]interview.Question, 0, len(items))
	for _, item := range items {
		q := interview.Question{Text: item.String()}
		if item.IsObject() {
			q = interview.Question{
				Text: item.Get("question").String(),
				Type: item.Get("type").String(),
			}
		}

		q.Text = strings.TrimSpace(q.Text)
		if q.Text == "" {
			continue
		}
		questions = append(questions, q)
	}

	return questions, nil
}

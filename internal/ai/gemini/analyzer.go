package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/ai"
	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/utils"
)

const (
	analyzerSystem = "You are a helpful assistant that analyzes resume-job matches. You must return a valid JSON object."

	defaultMaxLogLength = 200
	maxMatchScore       = 100
)

//go:embed analyze_prompt.md
var analyzePromptTemplate string

//go:embed analysis_schema.json
var analysisSchemaJSON []byte

var analysisSchema = mustSchema(analysisSchemaJSON)

type attachmentGenerator interface {
	GenerateWithAttachment(ctx context.Context, system, message string, file ai.Attachment) (string, error)
	Model() string
}

// Analyzer reads a resume with Gemini and scores it against the job.
type Analyzer struct {
	generator attachmentGenerator
	logger    *zap.Logger
	maxLogLen int
}

var _ interview.ResumeSubmitter = (*Analyzer)(nil)

func NewAnalyzer(generator attachmentGenerator, maxLogLength int, logger *zap.Logger) *Analyzer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Analyzer{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (a *Analyzer) SubmitResume(ctx context.Context, job interview.JobContext, resume interview.Resume) (*interview.ResumeResult, error) {
	if len(resume.Content) == 0 {
		return nil, errors.New("resume file is empty")
	}

	prompt := buildAnalyzePrompt(job)
	file := ai.Attachment{
		Filename: resume.Filename,
		MIMEType: detectMIMEType(resume.Filename, resume.Content),
		Data:     resume.Content,
	}

	a.logger.Debug("gemini resume analysis request",
		zap.Int("job_id", job.JobID),
		zap.String("filename", file.Filename),
		zap.String("mime_type", file.MIMEType),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
	)

	raw, err := a.generator.GenerateWithAttachment(ctx, analyzerSystem, prompt, file)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("gemini resume analysis response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	if err := validateJSON(ctx, analysisSchema, extractJSON(raw)); err != nil {
		return nil, err
	}

	analysis, resumeText, err := parseAnalysis(raw)
	if err != nil {
		return nil, err
	}

	firstName, lastName, _ := strings.Cut(strings.TrimSpace(resume.Contact.Name), " ")

	return &interview.ResumeResult{
		Candidate: &interview.Candidate{
			FirstName: firstName,
			LastName:  lastName,
			Email:     resume.Contact.Email,
			Phone:     resume.Contact.Phone,
			Status:    "new",
		},
		Analysis:   *analysis,
		ResumeText: resumeText,
	}, nil
}

func buildAnalyzePrompt(job interview.JobContext) string {
	template := analyzePromptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Job: {{JOB_TITLE}} at {{COMPANY}}\n\n{{JOB_DESCRIPTION}}\n\nJSON Response:"
	}

	replacer := strings.NewReplacer(
		"{{JOB_TITLE}}", valueOrNone(sanitizeLine(job.Title)),
		"{{COMPANY}}", valueOrNone(sanitizeLine(job.CompanyName)),
		"{{JOB_DESCRIPTION}}", valueOrNone(strings.TrimSpace(job.Description)),
	)

	return replacer.Replace(template)
}

func parseAnalysis(raw string) (*interview.MatchAnalysis, string, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(extractJSON(raw)), &data); err != nil {
		return nil, "", fmt.Errorf("parse gemini response: %w", err)
	}

	score := coerceFloat(data["match_score"])
	if math.IsNaN(score) {
		return nil, "", errors.New("gemini response has no match score")
	}
	score = math.Max(0, math.Min(maxMatchScore, score))

	resumeText := coerceString(data["resume_text"])
	if resumeText == "" {
		return nil, "", errors.New("gemini response has no resume text")
	}

	return &interview.MatchAnalysis{
		MatchScore:   score,
		Feedback:     coerceString(data["feedback"]),
		Strengths:    coerceStrings(data["strengths"]),
		Improvements: coerceStrings(data["improvements"]),
	}, resumeText, nil
}

func detectMIMEType(filename string, content []byte) string {
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); byExt != "" {
		mediaType, _, err := mime.ParseMediaType(byExt)
		if err == nil {
			return mediaType
		}
	}

	mediaType, _, err := mime.ParseMediaType(http.DetectContentType(content))
	if err != nil {
		return "application/octet-stream"
	}
	return mediaType
}

func valueOrNone(value string) string {
	if value == "" {
		return "none"
	}
	return value
}

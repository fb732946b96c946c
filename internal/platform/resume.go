package platform

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/interview"
)

const (
	apiResumeUploadPath  = "/candidates/resume-upload"
	apiResumeAnalyzePath = "/candidates/resume/analyze"
)

type uploadResponse struct {
	FilePath    string `json:"file_path"`
	JobID       int    `json:"job_id"`
	CandidateID int    `json:"candidate_id"`
	ResumeText  string `json:"resume_text"`
}

type analyzeRequest struct {
	ResumeURL string `json:"resume_url"`
	JobID     int    `json:"job_id"`
}

type analyzeResponse struct {
	Candidate struct {
		ID     int    `json:"id"`
		Name   string `json:"name"`
		Email  string `json:"email"`
		Phone  string `json:"phone"`
		Status string `json:"status"`
	} `json:"candidate"`
	MatchAnalysis interview.MatchAnalysis `json:"match_analysis"`
}

// SubmitResume uploads the resume file and asks the API to analyze it against
// the job.
func (c *Client) SubmitResume(ctx context.Context, job interview.JobContext, resume interview.Resume) (*interview.ResumeResult, error) {
	var uploaded uploadResponse
	err := c.postMultipart(ctx, apiResumeUploadPath,
		map[string]string{"job_id": strconv.Itoa(job.JobID)},
		formFile{field: "file", filename: resume.Filename, content: resume.Content},
		&uploaded,
	)
	if err != nil {
		return nil, err
	}
	if uploaded.FilePath == "" {
		return nil, errors.New("resume upload returned no file path")
	}

	c.logger.Info("resume uploaded",
		zap.String("file_path", uploaded.FilePath),
		zap.Int("candidate_id", uploaded.CandidateID),
	)

	var analyzed analyzeResponse
	if err := c.postJSON(ctx, apiResumeAnalyzePath, analyzeRequest{
		ResumeURL: uploaded.FilePath,
		JobID:     job.JobID,
	}, &analyzed); err != nil {
		return nil, err
	}

	firstName, lastName, _ := strings.Cut(strings.TrimSpace(analyzed.Candidate.Name), " ")

	return &interview.ResumeResult{
		Candidate: &interview.Candidate{
			ID:        analyzed.Candidate.ID,
			FirstName: firstName,
			LastName:  lastName,
			Email:     analyzed.Candidate.Email,
			Phone:     analyzed.Candidate.Phone,
			Status:    analyzed.Candidate.Status,
		},
		Analysis:   analyzed.MatchAnalysis,
		ResumeText: resumeText(uploaded.ResumeText),
	}, nil
}

// resumeText unwraps the extracted details document the upload endpoint
// returns. Plain text is returned unchanged.
func resumeText(extracted string) string {
	if !gjson.Valid(extracted) {
		return extracted
	}

	if text := gjson.Get(extracted, "resume_text"); text.Type == gjson.String && text.String() != "" {
		return text.String()
	}

	return extracted
}

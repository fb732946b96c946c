package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/ai"
	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/platform"
	"github.com/spigell/hh-interviewer/internal/session"
)

func TestNewFlowDepsProviders(t *testing.T) {
	client := platform.New(zap.NewNop(), "http://127.0.0.1:0", nil)

	deps, err := newFlowDeps(context.Background(), &AIConfig{Provider: " Platform "}, client, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deps.Submitter != client || deps.Generator != client || deps.Regenerator != client {
		t.Fatalf("expected platform client for every collaborator: %+v", deps)
	}
	if deps.Resolver == nil {
		t.Fatalf("expected a resolver")
	}

	if _, err := newFlowDeps(context.Background(), &AIConfig{Provider: "openai"}, client, zap.NewNop()); err == nil || !strings.Contains(err.Error(), "unsupported ai provider") {
		t.Fatalf("expected unsupported provider error, got %v", err)
	}

	_, err = newFlowDeps(context.Background(), &AIConfig{Provider: ai.ProviderGemini, Gemini: &GeminiConfig{}}, client, zap.NewNop())
	if err == nil || !strings.Contains(err.Error(), "GEMINI_API_KEY_FILE") {
		t.Fatalf("expected missing api key hint, got %v", err)
	}
}

func TestFlowOptions(t *testing.T) {
	defaults := flowOptions(nil)
	if defaults.MaxQuestions != interview.DefaultMaxQuestions || !defaults.RegenerateOnAccept {
		t.Fatalf("unexpected defaults: %+v", defaults)
	}

	disabled := false
	opts := flowOptions(&InterviewConfig{
		QuestionTypes:      []string{interview.QuestionTypeJobBased},
		MaxQuestions:       3,
		RegenerateOnAccept: &disabled,
	})
	if len(opts.QuestionTypes) != 1 || opts.MaxQuestions != 3 || opts.RegenerateOnAccept {
		t.Fatalf("unexpected options: %+v", opts)
	}
}

func TestLoadSession(t *testing.T) {
	sess, err := loadSession(&APIConfig{}, zap.NewNop())
	if err != nil || sess != nil {
		t.Fatalf("expected no session without token file, got %v, %v", sess, err)
	}

	dir := t.TempDir()
	tokenFile := filepath.Join(dir, "token")
	refreshFile := filepath.Join(dir, "refresh")
	if err := os.WriteFile(tokenFile, []byte("access\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(refreshFile, []byte(""), 0o600); err != nil {
		t.Fatal(err)
	}

	sess, err = loadSession(&APIConfig{TokenFile: tokenFile}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token, _ := sess.Token(); token != "access" {
		t.Fatalf("unexpected token: %q", token)
	}

	if _, err := loadSession(&APIConfig{TokenFile: tokenFile, RefreshTokenFile: refreshFile}, zap.NewNop()); err == nil {
		t.Fatalf("expected error for empty refresh token file")
	}
}

func TestTerminalNotifierAndNavigator(t *testing.T) {
	var out bytes.Buffer
	notifier := newTerminalNotifier(&out)
	navigator := newTerminalNavigator(&out, "https://hire.example.com/", zap.NewNop())

	scheduler := interview.NewScheduler("AB12CD34", notifier, navigator)
	scheduler.ScheduleLater(context.Background())

	printed := out.String()
	if !strings.Contains(printed, "within 48 hours") {
		t.Fatalf("expected confirmation, got %q", printed)
	}
	if !strings.Contains(printed, "Continue at: https://hire.example.com/\n") {
		t.Fatalf("expected home route, got %q", printed)
	}
	if navigator.Last() != interview.HomeRoute {
		t.Fatalf("unexpected last route: %q", navigator.Last())
	}

	out.Reset()
	scheduler.ScheduleNow(context.Background())
	if out.String() != "Continue at: https://hire.example.com/interview/AB12CD34/setup\n" {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestTerminalMessage(t *testing.T) {
	tests := []struct {
		err    error
		expect string
	}{
		{err: interview.ErrExpiredLink, expect: "This interview link has expired."},
		{err: interview.ErrInactiveLink, expect: "This interview link is no longer active."},
		{err: errors.Join(interview.ErrInvalidLink, errors.New("lookup")), expect: "Invalid interview link."},
		{err: interview.ErrCompatibilityRejected, expect: "Unfortunately, your profile does not match the job requirements."},
		{err: errors.New("boom"), expect: "boom"},
	}

	for _, tt := range tests {
		if got := terminalMessage(tt.err); got != tt.expect {
			t.Fatalf("%v: expected %q, got %q", tt.err, tt.expect, got)
		}
	}
}

func TestReadResume(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/home/jo/cv.pdf", []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := fs.MkdirAll("/home/jo/docs", 0o755); err != nil {
		t.Fatal(err)
	}

	resume, err := readResume(fs, "/home/jo/cv.pdf", interview.Contact{Name: " Jo Doe ", Email: "jo@example.com", Phone: "1234567890"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resume.Filename != "cv.pdf" || string(resume.Content) != "%PDF-1.4" || resume.Contact.Name != "Jo Doe" {
		t.Fatalf("unexpected resume: %+v", resume)
	}
	if err := resume.Validate(); err != nil {
		t.Fatalf("expected a valid resume, got %v", err)
	}

	for _, path := range []string{"", "/home/jo/missing.pdf", "/home/jo/docs"} {
		if _, err := readResume(fs, path, interview.Contact{}); !errors.Is(err, errResumeFile) {
			t.Fatalf("%q: expected resume file error, got %v", path, err)
		}
	}
}

func TestResumeStageAsksAgainForUnreadableFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	form := &resumeForm{
		fs:      fs,
		path:    "/home/jo/missing.pdf",
		contact: interview.Contact{Name: "Jo Doe", Email: "jo@example.com", Phone: "1234567890"},
		stdin:   io.NopCloser(strings.NewReader("")),
	}

	// The form prompts for a new path once the bad one is cleared. The empty
	// input ends that prompt, which ends the stage with the prompt error.
	done := make(chan error, 1)
	go func() {
		done <- resumeStage(context.Background(), nil, form)
	}()

	select {
	case err := <-done:
		if errors.Is(err, errResumeFile) {
			t.Fatalf("unreadable resume file must not end the stage: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("resume stage did not ask for another file")
	}
	if form.path != "" {
		t.Fatalf("expected the bad path to be cleared, got %q", form.path)
	}
}

func TestIsValidationError(t *testing.T) {
	invalid := interview.Resume{Filename: "cv.pdf", Content: []byte("x"), Contact: interview.Contact{Name: "J"}}

	if !isValidationError(invalid.Validate()) {
		t.Fatalf("expected contact errors to be validation errors")
	}
	if !isValidationError((interview.Resume{}).Validate()) {
		t.Fatalf("expected missing file to be a validation error")
	}
	if isValidationError(interview.ErrBusy) {
		t.Fatalf("busy is not a validation error")
	}
}

func TestResultFromSnapshot(t *testing.T) {
	if resultFromSnapshot(interview.Snapshot{}) != nil {
		t.Fatalf("expected nil result without analysis")
	}

	result := resultFromSnapshot(interview.Snapshot{
		MatchAnalysis: &interview.MatchAnalysis{MatchScore: 75},
		ResumeText:    "Go",
	})
	if result == nil || result.Analysis.MatchScore != 75 || result.ResumeText != "Go" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestSaveTranscript(t *testing.T) {
	fs := afero.NewMemMapFs()
	input := `[
		{"speaker": "ai", "text": "Tell me about yourself.", "timestamp": "2024-05-01T14:03:07Z"},
		{"speaker": "candidate", "text": "I build services in Go.", "timestamp": "2024-05-01T14:03:30Z", "isEdited": true}
	]`
	if err := afero.WriteFile(fs, "/tmp/conversation.json", []byte(input), 0o644); err != nil {
		t.Fatal(err)
	}

	items, err := readTranscript(fs, "/tmp/conversation.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 || !items[1].IsEdited {
		t.Fatalf("unexpected items: %+v", items)
	}

	path, err := saveTranscript(fs, "/out", items, "Acme  Corp", time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != filepath.Join("/out", "acme-corp-interview-transcript.txt") {
		t.Fatalf("unexpected path: %q", path)
	}

	content, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatal(err)
	}
	expected := "[2:03:07 PM] Interviewer: Tell me about yourself.\n\n[2:03:30 PM] You: I build services in Go."
	if string(content) != expected {
		t.Fatalf("unexpected transcript:\n%s", content)
	}

	path, err = saveTranscript(fs, "/out", nil, "Acme", time.UTC)
	if err != nil || path != "" {
		t.Fatalf("expected nothing to be saved, got %q, %v", path, err)
	}

	if _, err := readTranscript(fs, "/tmp/missing.json"); err == nil {
		t.Fatalf("expected error for missing input")
	}
}

func TestStoreTokens(t *testing.T) {
	fs := afero.NewMemMapFs()
	config := &APIConfig{TokenFile: "/secrets/token", RefreshTokenFile: "/secrets/refresh"}

	if err := storeTokens(fs, config, &session.Tokens{Access: "a", Refresh: "r"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for path, expect := range map[string]string{"/secrets/token": "a\n", "/secrets/refresh": "r\n"} {
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != expect {
			t.Fatalf("%s: expected %q, got %q", path, expect, data)
		}
		info, err := fs.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != 0o600 {
			t.Fatalf("%s: unexpected mode %v", path, info.Mode())
		}
	}
}

package interview

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
)

const (
	SpeakerAI          = "ai"
	SpeakerInterviewer = "interviewer"
	SpeakerCandidate   = "candidate"

	transcriptSuffix = "interview-transcript.txt"
	transcriptTime   = "3:04:05 PM"
)

// TranscriptItem is one utterance of the interview conversation.
type TranscriptItem struct {
	Speaker      string `json:"speaker"`
	Text         string `json:"text"`
	Timestamp    string `json:"timestamp"`
	OriginalText string `json:"originalText,omitempty"`
	IsEdited     bool   `json:"isEdited,omitempty"`
}

// Artifact is a downloadable file.
type Artifact struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ExportTranscript renders items in their original order as plain text.
// It returns false and no artifact for an empty transcript.
func ExportTranscript(items []TranscriptItem, companyName string, loc *time.Location) (*Artifact, bool) {
	if len(items) == 0 {
		return nil, false
	}

	if loc == nil {
		loc = time.Local
	}

	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("[%s] %s: %s",
			transcriptTimestamp(item.Timestamp, loc),
			speakerLabel(item.Speaker),
			item.Text,
		))
	}

	return &Artifact{
		Filename:    TranscriptFilename(companyName),
		ContentType: "text/plain",
		Content:     []byte(strings.Join(lines, "\n\n")),
	}, true
}

// TranscriptFilename lowercases the company name and collapses whitespace
// runs into single hyphens. Other characters are kept as is.
func TranscriptFilename(companyName string) string {
	slug := strings.Join(strings.Fields(strings.ToLower(companyName)), "-")
	if slug == "" {
		return transcriptSuffix
	}
	return slug + "-" + transcriptSuffix
}

func speakerLabel(speaker string) string {
	switch strings.ToLower(strings.TrimSpace(speaker)) {
	case SpeakerAI, SpeakerInterviewer:
		return "Interviewer"
	default:
		return "You"
	}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func transcriptTimestamp(raw string, loc *time.Location) string {
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, raw, loc)
		if err == nil {
			return t.In(loc).Format(transcriptTime)
		}
	}
	return raw
}

// Saver stores artifacts in a directory, standing in for a browser download.
type Saver struct {
	fs  afero.Fs
	dir string
}

func NewSaver(fs afero.Fs, dir string) *Saver {
	if dir == "" {
		dir = "."
	}
	return &Saver{fs: fs, dir: dir}
}

// Save writes the artifact and returns its path.
func (s *Saver) Save(artifact *Artifact) (string, error) {
	if artifact == nil {
		return "", fmt.Errorf("nothing to save")
	}

	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", s.dir, err)
	}

	path := filepath.Join(s.dir, artifact.Filename)
	if err := afero.WriteFile(s.fs, path, artifact.Content, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	return path, nil
}

package ai

import "context"

// Providers of the resume analysis and question generation.
const (
	ProviderPlatform = "platform"
	ProviderGemini   = "gemini"
)

// Assistant is a text model answering a single message under a system
// instruction.
type Assistant interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
	Model() string
}

// Attachment is a file sent to the model alongside the message.
type Attachment struct {
	Filename string
	MIMEType string
	Data     []byte
}

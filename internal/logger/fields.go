package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldFlowID identifies a single interview flow instance.
	FieldFlowID = "flow_id"
	// FieldAccessCode is the access code of the public interview link.
	FieldAccessCode = "access_code"
	// FieldStage is the current stage of the interview flow.
	FieldStage = "stage"
	// FieldProvider is the structured log field key for the AI provider name.
	FieldProvider = "ai_provider"
	// FieldModel is the structured log field key for the AI model identifier.
	FieldModel = "ai_model"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches the provided fields to the logger, defaulting to a no-op
// logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// FlowFields returns the fields that tie log entries to one interview flow.
func FlowFields(flowID, accessCode string) []zap.Field {
	return StringFields(
		StringField{Key: FieldFlowID, Value: flowID},
		StringField{Key: FieldAccessCode, Value: accessCode},
	)
}

// WithFlowFields attaches the flow fields to the provided logger.
func WithFlowFields(logger *zap.Logger, flowID, accessCode string) *zap.Logger {
	return WithFields(logger, FlowFields(flowID, accessCode)...)
}

// AIFields returns standard zap fields that describe the AI provider and model.
func AIFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

// WithAIFields attaches the AI provider fields to the provided logger.
func WithAIFields(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, AIFields(provider, model)...)
}

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spigell/hh-interviewer/internal/ai"
	"github.com/spigell/hh-interviewer/internal/ai/gemini"
	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/logger"
	"github.com/spigell/hh-interviewer/internal/platform"
	"github.com/spigell/hh-interviewer/internal/secrets"
	"github.com/spigell/hh-interviewer/internal/session"

	"go.uber.org/zap"
)

// loadSession returns nil without an error when no token file is configured.
// The public interview endpoints do not need one.
func loadSession(config *APIConfig, logger *zap.Logger) (*session.Session, error) {
	tokenFile := strings.TrimSpace(config.TokenFile)
	if tokenFile == "" {
		return nil, nil
	}

	access, err := secrets.Load(secrets.Source{
		Name: "platform access token",
		File: tokenFile,
	})
	if err != nil {
		return nil, err
	}

	tokens := session.Tokens{Access: access}

	if refreshFile := strings.TrimSpace(config.RefreshTokenFile); refreshFile != "" {
		refresh, err := secrets.Load(secrets.Source{
			Name: "platform refresh token",
			File: refreshFile,
		})
		if err != nil {
			return nil, err
		}
		tokens.Refresh = refresh
	}

	return session.New(tokens, logger)
}

func newPlatformClient(ctx context.Context, config *APIConfig, logger *zap.Logger) (*platform.Client, error) {
	sess, err := loadSession(config, logger)
	if err != nil {
		return nil, fmt.Errorf("%w (set api.token-file or HH_INTERVIEWER_TOKEN_FILE)", err)
	}

	client := platform.New(logger, config.URL, sess)
	if config.UserAgent != "" {
		client.UserAgent = config.UserAgent
	}

	if sess != nil && sess.Expired() {
		logger.Info("access token is expired, refreshing", zap.Time("expires_at", sess.ExpiresAt()))
		if err := sess.Refresh(ctx, client); err != nil {
			// Public endpoints still work, so keep going anonymously.
			logger.Warn("continuing without a session", zap.Error(err))
			client.SetSession(nil)
		}
	}

	return client, nil
}

// newFlowDeps wires the remote collaborators of the interview flow for the
// configured provider. Link lookup always goes to the platform.
func newFlowDeps(ctx context.Context, config *AIConfig, client *platform.Client, log *zap.Logger) (interview.Deps, error) {
	deps := interview.Deps{
		Resolver: interview.NewResolver(client),
		Logger:   log,
	}

	provider := strings.TrimSpace(strings.ToLower(config.Provider))
	switch provider {
	case "", ai.ProviderPlatform:
		deps.Submitter = client
		deps.Generator = client
		deps.Regenerator = client
	case ai.ProviderGemini:
		generator, err := newGeminiGenerator(ctx, config.Gemini, log)
		if err != nil {
			return deps, err
		}

		aiLogger := logger.WithAIFields(log, ai.ProviderGemini, generator.Model())
		questions := gemini.NewQuestionGenerator(generator, config.Gemini.MaxLogLength, aiLogger)

		deps.Submitter = gemini.NewAnalyzer(generator, config.Gemini.MaxLogLength, aiLogger)
		deps.Generator = questions
		deps.Regenerator = questions
	default:
		return deps, fmt.Errorf("unsupported ai provider: %s", config.Provider)
	}

	return deps, nil
}

func newGeminiGenerator(ctx context.Context, config *GeminiConfig, log *zap.Logger) (*gemini.Generator, error) {
	if config == nil {
		config = &GeminiConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: config.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	genLogger := logger.WithAIFields(log, ai.ProviderGemini, config.Model).With(
		zap.Int("ai_retry_attempts", config.MaxRetries),
	)

	return gemini.NewGenerator(ctx, apiKey, config.Model, config.MaxRetries, genLogger)
}

func flowOptions(config *InterviewConfig) interview.Options {
	opts := interview.DefaultOptions()
	if config == nil {
		return opts
	}

	if len(config.QuestionTypes) > 0 {
		opts.QuestionTypes = config.QuestionTypes
	}
	if config.MaxQuestions > 0 {
		opts.MaxQuestions = config.MaxQuestions
	}
	if config.RegenerateOnAccept != nil {
		opts.RegenerateOnAccept = *config.RegenerateOnAccept
	}

	return opts
}

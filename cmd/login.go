package cmd

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/spigell/hh-interviewer/internal/logger"
	"github.com/spigell/hh-interviewer/internal/platform"
	"github.com/spigell/hh-interviewer/internal/session"

	"github.com/manifoldco/promptui"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the hiring platform and store the tokens",
	Run: func(cmd *cobra.Command, _ []string) {
		login(cmd)
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().StringP("username", "u", "", "account email")
	viper.BindPFlag("api.username", loginCmd.Flags().Lookup("username"))
}

func login(_ *cobra.Command) {
	ctx := context.Background()

	baseLogger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		baseLogger.Fatal("getting a config", zap.Error(err))
	}

	if strings.TrimSpace(config.API.TokenFile) == "" {
		baseLogger.Fatal("token file is not configured",
			zap.String("hint", "set HH_INTERVIEWER_TOKEN_FILE environment variable or the 'api.token-file' key in the configuration file"),
		)
	}

	username, password, err := askCredentials(config.API.Username)
	if err != nil {
		baseLogger.Info("exiting", zap.Error(err))
		return
	}

	client := platform.New(baseLogger, config.API.URL, nil)
	if config.API.UserAgent != "" {
		client.UserAgent = config.API.UserAgent
	}

	tokens, err := client.Login(ctx, username, password)
	if err != nil {
		baseLogger.Fatal("logging in", zap.Error(err))
	}

	sess, err := session.New(*tokens, baseLogger)
	if err != nil {
		baseLogger.Fatal("starting a session", zap.Error(err))
	}

	if err := storeTokens(afero.NewOsFs(), config.API, tokens); err != nil {
		baseLogger.Fatal("storing tokens", zap.Error(err))
	}

	baseLogger.Info("logged in",
		zap.String("username", username),
		zap.Time("expires_at", sess.ExpiresAt()),
		zap.String("token_file", config.API.TokenFile),
	)
}

func askCredentials(username string) (string, string, error) {
	if strings.TrimSpace(username) == "" {
		prompt := promptui.Prompt{
			Label: "Email",
			Validate: func(input string) error {
				if strings.TrimSpace(input) == "" {
					return errors.New("email is required")
				}
				return nil
			},
		}
		value, err := prompt.Run()
		if err != nil {
			return "", "", err
		}
		username = value
	}

	prompt := promptui.Prompt{
		Label: "Password",
		Mask:  '*',
	}
	password, err := prompt.Run()
	if err != nil {
		return "", "", err
	}

	return strings.TrimSpace(username), password, nil
}

func storeTokens(fs afero.Fs, config *APIConfig, tokens *session.Tokens) error {
	if err := afero.WriteFile(fs, config.TokenFile, []byte(tokens.Access+"\n"), 0o600); err != nil {
		return err
	}

	if config.RefreshTokenFile == "" || tokens.Refresh == "" {
		return nil
	}

	return afero.WriteFile(fs, config.RefreshTokenFile, []byte(tokens.Refresh+"\n"), 0o600)
}

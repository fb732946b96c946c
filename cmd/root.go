package cmd

import (
	"errors"
	"log"

	"github.com/spigell/hh-interviewer/internal/ai"
	"github.com/spigell/hh-interviewer/internal/platform"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "hh-interviewer"
)

type Config struct {
	API        *APIConfig        `mapstructure:"api"`
	AI         *AIConfig         `mapstructure:"ai"`
	Interview  *InterviewConfig  `mapstructure:"interview"`
	Transcript *TranscriptConfig `mapstructure:"transcript"`
}

type APIConfig struct {
	URL              string `mapstructure:"url"`
	UserAgent        string `mapstructure:"user-agent"`
	TokenFile        string `mapstructure:"token-file"`
	RefreshTokenFile string `mapstructure:"refresh-token-file"`
	Username         string `mapstructure:"username"`
}

type AIConfig struct {
	// Provider is either "platform" (the hiring API does the analysis) or "gemini".
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type InterviewConfig struct {
	QuestionTypes      []string `mapstructure:"question-types"`
	MaxQuestions       int      `mapstructure:"max-questions"`
	RegenerateOnAccept *bool    `mapstructure:"regenerate-on-accept"`
	// AppURL is prepended to the routes the flow hands off to.
	AppURL string `mapstructure:"app-url"`
}

type TranscriptConfig struct {
	Dir string `mapstructure:"dir"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "hh-interviewer walks a candidate through the public interview flow of the hiring platform",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envs := map[string]string{
		"api.url":                "HH_INTERVIEWER_API_URL",
		"api.token-file":         "HH_INTERVIEWER_TOKEN_FILE",
		"api.refresh-token-file": "HH_INTERVIEWER_REFRESH_TOKEN_FILE",
		"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
	}
	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("api.url", platform.DefaultAPIURL)
	viper.SetDefault("ai.provider", ai.ProviderPlatform)
	viper.SetDefault("transcript.dir", ".")

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is hh-interviewer.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("api-url", "", "base url of the hiring platform api")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("api.url", rootCmd.PersistentFlags().Lookup("api-url"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Every command works with defaults and env, so only an explicit --config must exist.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.API == nil {
		config.API = &APIConfig{URL: platform.DefaultAPIURL}
	}
	if config.AI == nil {
		config.AI = &AIConfig{Provider: ai.ProviderPlatform}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}
	if config.Interview == nil {
		config.Interview = &InterviewConfig{}
	}
	if config.Transcript == nil {
		config.Transcript = &TranscriptConfig{Dir: "."}
	}

	return config, nil
}

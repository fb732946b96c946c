package cmd

import (
	"context"
	"log"

	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Inspect public interview links",
}

var linkCheckCmd = &cobra.Command{
	Use:   "check <access-code>",
	Short: "Check that an access code points to an active interview",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		checkLink(args[0])
	},
}

func init() {
	linkCmd.AddCommand(linkCheckCmd)
	rootCmd.AddCommand(linkCmd)
}

func checkLink(accessCode string) {
	ctx := context.Background()

	baseLogger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		baseLogger.Fatal("getting a config", zap.Error(err))
	}

	client, err := newPlatformClient(ctx, config.API, baseLogger)
	if err != nil {
		baseLogger.Fatal("creating a platform client", zap.Error(err))
	}

	link, err := interview.NewResolver(client).Resolve(ctx, accessCode)
	if err != nil {
		baseLogger.Fatal("interview link is not usable",
			zap.String(logger.FieldAccessCode, accessCode),
			zap.Bool("terminal", interview.IsTerminal(err)),
			zap.Error(err),
		)
	}

	fields := []zap.Field{
		zap.String(logger.FieldAccessCode, link.AccessCode),
		zap.Int("job_id", link.JobID),
		zap.Int("interview_id", link.InterviewID),
		zap.String("job_title", link.JobTitle),
		zap.String("company", link.CompanyName),
	}
	if link.ExpiresAt != nil {
		fields = append(fields, zap.Time("expires_at", *link.ExpiresAt))
	}

	baseLogger.Info("interview link is valid", fields...)
}

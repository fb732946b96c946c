package cmd

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptScheduleNow   = "Start the interview now"
	PromptScheduleLater = "Schedule for later"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule <access-code>",
	Short: "Choose to take the interview now or later",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		schedule(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().Bool("now", false, "start the interview right away without asking")
	scheduleCmd.Flags().Bool("later", false, "get the interview link by email without asking")
	scheduleCmd.MarkFlagsMutuallyExclusive("now", "later")
}

func schedule(cmd *cobra.Command, accessCode string) {
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

	notifier := newTerminalNotifier(os.Stdout)
	navigator := newTerminalNavigator(os.Stdout, config.Interview.AppURL, baseLogger)

	// A deep link to this stage must not trust an earlier check.
	if _, err := interview.NewResolver(client).Resolve(ctx, accessCode); err != nil {
		showTerminal(notifier, navigator, err)
		return
	}

	action := PromptScheduleNow
	switch {
	case flagValue(cmd, "later") == "true":
		action = PromptScheduleLater
	case flagValue(cmd, "now") == "true":
	default:
		action, err = choose("When would you like to take the interview?", PromptScheduleNow, PromptScheduleLater)
		if err != nil {
			baseLogger.Info("exiting", zap.Error(err))
			return
		}
	}

	scheduler := interview.NewScheduler(accessCode, notifier, navigator)
	switch action {
	case PromptScheduleLater:
		scheduler.ScheduleLater(ctx)
		baseLogger.Info("interview scheduled for later",
			zap.String(logger.FieldAccessCode, accessCode),
			zap.Time("deadline", interview.Deadline(time.Now())),
		)
	default:
		scheduler.ScheduleNow(ctx)
	}
}

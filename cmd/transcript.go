package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/logger"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var transcriptCmd = &cobra.Command{
	Use:   "transcript",
	Short: "Work with interview transcripts",
}

var transcriptExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a recorded conversation as a plain text transcript",
	Run: func(cmd *cobra.Command, _ []string) {
		exportTranscript(cmd)
	},
}

func init() {
	transcriptCmd.AddCommand(transcriptExportCmd)
	rootCmd.AddCommand(transcriptCmd)

	transcriptExportCmd.Flags().StringP("input", "i", "", "json file with the conversation items")
	transcriptExportCmd.Flags().StringP("company", "c", "", "company name used for the file name")
	transcriptExportCmd.Flags().String("dir", "", "directory to save the transcript to")
	transcriptExportCmd.Flags().String("timezone", "", "IANA timezone for timestamps (default is local)")
	transcriptExportCmd.MarkFlagRequired("input")

	viper.BindPFlag("transcript.dir", transcriptExportCmd.Flags().Lookup("dir"))
}

func exportTranscript(cmd *cobra.Command) {
	baseLogger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		baseLogger.Fatal("getting a config", zap.Error(err))
	}

	loc := time.Local
	if tz := flagValue(cmd, "timezone"); tz != "" {
		loc, err = time.LoadLocation(tz)
		if err != nil {
			baseLogger.Fatal("loading timezone", zap.String("timezone", tz), zap.Error(err))
		}
	}

	fs := afero.NewOsFs()
	input := flagValue(cmd, "input")

	items, err := readTranscript(fs, input)
	if err != nil {
		baseLogger.Fatal("reading transcript", zap.String("input", input), zap.Error(err))
	}

	path, err := saveTranscript(fs, config.Transcript.Dir, items, flagValue(cmd, "company"), loc)
	if err != nil {
		baseLogger.Fatal("saving transcript", zap.Error(err))
	}

	if path == "" {
		baseLogger.Info("exiting", zap.String("reason", "transcript is empty"))
		return
	}

	baseLogger.Info("transcript exported", zap.String("filename", path), zap.Int("items", len(items)))
}

func readTranscript(fs afero.Fs, path string) ([]interview.TranscriptItem, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}

	var items []interview.TranscriptItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return items, nil
}

// saveTranscript returns an empty path when there was nothing to export.
func saveTranscript(fs afero.Fs, dir string, items []interview.TranscriptItem, company string, loc *time.Location) (string, error) {
	artifact, ok := interview.ExportTranscript(items, company, loc)
	if !ok {
		return "", nil
	}

	return interview.NewSaver(fs, dir).Save(artifact)
}

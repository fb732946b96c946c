package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/logger"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/manifoldco/promptui"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptRetryQuestions = "Retry question generation"
	PromptUploadAgain    = "Upload another resume"
	PromptRetry          = "Try again"
	PromptContinue       = "Continue to the interview"
	PromptExit           = "Exit"
)

var (
	errExit       = errors.New("exit requested")
	errResumeFile = errors.New("resume file is not readable")
)

var interviewCmd = &cobra.Command{
	Use:   "interview <access-code>",
	Short: "Upload a resume and pass the compatibility check for an interview link",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runInterview(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(interviewCmd)

	interviewCmd.Flags().StringP("resume", "r", "", "path to the resume file (asked interactively when empty)")
	interviewCmd.Flags().String("name", "", "candidate full name")
	interviewCmd.Flags().String("email", "", "candidate email")
	interviewCmd.Flags().String("phone", "", "candidate phone")
	interviewCmd.Flags().StringP("provider", "p", "", "ai provider for resume analysis and questions: platform or gemini")

	viper.BindPFlag("ai.provider", interviewCmd.Flags().Lookup("provider"))
}

func runInterview(cmd *cobra.Command, accessCode string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	baseLogger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		baseLogger.Fatal("getting a config", zap.Error(err))
	}

	baseLogger.Info("starting the hh-interviewer", zap.String("version", version))

	client, err := newPlatformClient(ctx, config.API, baseLogger)
	if err != nil {
		baseLogger.Fatal("creating a platform client", zap.Error(err))
	}

	deps, err := newFlowDeps(ctx, config.AI, client, baseLogger)
	if err != nil {
		baseLogger.Fatal("preparing the interview flow", zap.Error(err))
	}

	notifier := newTerminalNotifier(os.Stdout)
	navigator := newTerminalNavigator(os.Stdout, config.Interview.AppURL, baseLogger)
	deps.Notifier = notifier
	deps.Navigator = navigator

	controller := interview.NewController(accessCode, deps, flowOptions(config.Interview))
	defer controller.Close()

	flowLog := logger.WithFlowFields(baseLogger, controller.ID(), accessCode)

	if err := controller.Start(ctx); err != nil {
		showTerminal(notifier, navigator, err)
		flowLog.Info("exiting", zap.String("reason", "interview link is not usable"))
		return
	}

	showJob(controller.Snapshot().Link)

	form := &resumeForm{
		fs:   afero.NewOsFs(),
		path: flagValue(cmd, "resume"),
		contact: interview.Contact{
			Name:  flagValue(cmd, "name"),
			Email: flagValue(cmd, "email"),
			Phone: flagValue(cmd, "phone"),
		},
	}

	if err := resumeStage(ctx, controller, form); err != nil {
		if errors.Is(err, errExit) || errors.Is(err, promptui.ErrInterrupt) {
			flowLog.Info("exiting", zap.String("reason", "stopped on the resume stage"))
			return
		}
		flowLog.Fatal("resume stage failed", zap.Error(err))
	}

	if err := compatibilityStage(ctx, controller, notifier, navigator); err != nil {
		if errors.Is(err, errExit) || errors.Is(err, promptui.ErrInterrupt) {
			flowLog.Info("exiting", zap.String("reason", "stopped on the compatibility stage"))
			return
		}
		flowLog.Fatal("compatibility stage failed", zap.Error(err))
	}

	flowLog.Info("interview flow handed off", zap.String("route", navigator.Last()))
}

// resumeStage repeats the upload until the flow reaches the compatibility
// stage or the candidate gives up.
func resumeStage(ctx context.Context, controller *interview.Controller, form *resumeForm) error {
	for {
		resume, err := form.Run()
		if errors.Is(err, errResumeFile) {
			fmt.Printf("%s %s\n", errorStyle("✘"), err)
			form.path = ""
			continue
		}
		if err != nil {
			return err
		}

		err = controller.SubmitResume(ctx, resume)
		if err == nil {
			return nil
		}

		var questionErr *interview.QuestionGenerationError
		for errors.As(err, &questionErr) {
			action, selectErr := choose("Questions could not be prepared", PromptRetryQuestions, PromptUploadAgain, PromptExit)
			if selectErr != nil {
				return selectErr
			}

			switch action {
			case PromptRetryQuestions:
				err = controller.CompleteResumeStep(ctx, resultFromSnapshot(controller.Snapshot()))
				if err == nil {
					return nil
				}
			case PromptUploadAgain:
				err = nil
			default:
				return errExit
			}
		}

		if err == nil {
			form.path = ""
			continue
		}
		if !interview.IsRecoverable(err) && !isValidationError(err) {
			return err
		}

		action, selectErr := choose("Resume was not accepted", PromptRetry, PromptExit)
		if selectErr != nil {
			return selectErr
		}
		if action != PromptRetry {
			return errExit
		}
		form.path = ""
	}
}

func compatibilityStage(ctx context.Context, controller *interview.Controller, notifier *terminalNotifier, navigator *terminalNavigator) error {
	snapshot := controller.Snapshot()
	verdict := controller.Verdict()
	showAnalysis(snapshot.MatchAnalysis, verdict)

	if verdict == interview.VerdictIndeterminate {
		return errors.New("match analysis is not available")
	}

	if verdict == interview.VerdictReject {
		if err := controller.RejectCompatibility(); err != nil {
			return err
		}
		showTerminal(notifier, navigator, interview.ErrCompatibilityRejected)
		return nil
	}

	for {
		action, err := choose("You are a good match for this position", PromptContinue, PromptExit)
		if err != nil {
			return err
		}
		if action != PromptContinue {
			return errExit
		}

		err = controller.AcceptCompatibility(ctx)
		if err == nil {
			return nil
		}
		if !interview.IsRecoverable(err) {
			return err
		}
	}
}

func resultFromSnapshot(s interview.Snapshot) *interview.ResumeResult {
	if s.MatchAnalysis == nil {
		return nil
	}
	return &interview.ResumeResult{
		Candidate:  s.Candidate,
		Analysis:   *s.MatchAnalysis,
		ResumeText: s.ResumeText,
	}
}

// showTerminal renders a state with only the "return home" action left.
func showTerminal(notifier *terminalNotifier, navigator *terminalNavigator, err error) {
	notifier.Error(terminalMessage(err))
	navigator.Navigate(context.Background(), interview.HomeRoute)
}

func terminalMessage(err error) string {
	switch {
	case errors.Is(err, interview.ErrExpiredLink):
		return "This interview link has expired."
	case errors.Is(err, interview.ErrInactiveLink):
		return "This interview link is no longer active."
	case errors.Is(err, interview.ErrInvalidLink):
		return "Invalid interview link."
	case errors.Is(err, interview.ErrCompatibilityRejected):
		return "Unfortunately, your profile does not match the job requirements."
	default:
		return err.Error()
	}
}

func showJob(link *interview.InterviewLink) {
	if link == nil {
		return
	}

	fmt.Printf("\n%s\n", successStyle(link.JobTitle))
	if link.CompanyName != "" {
		fmt.Printf("%s\n", link.CompanyName)
	}
	if link.JobDescription != "" {
		fmt.Printf("\n%s\n", link.JobDescription)
	}
	fmt.Println()
}

func showAnalysis(analysis *interview.MatchAnalysis, verdict interview.Verdict) {
	if analysis == nil {
		return
	}

	style := errorStyle
	if verdict == interview.VerdictAccept {
		style = successStyle
	}

	fmt.Printf("\nMatch score: %s\n", style(fmt.Sprintf("%.0f%%", analysis.MatchScore)))
	if analysis.Feedback != "" {
		fmt.Printf("%s\n", analysis.Feedback)
	}
	printList("Strengths", analysis.Strengths)
	printList("Areas to improve", analysis.Improvements)
	fmt.Println()
}

func printList(title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", title)
	for _, item := range items {
		fmt.Printf("  - %s\n", item)
	}
}

func choose(label string, items ...string) (string, error) {
	prompt := promptui.Select{
		Label: label,
		Items: items,
	}
	_, selected, err := prompt.Run()
	return selected, err
}

// resumeForm is the upload form. Flag values are used as defaults and only
// the missing ones are asked.
type resumeForm struct {
	fs      afero.Fs
	path    string
	contact interview.Contact
	// stdin replaces the terminal input when set.
	stdin   io.ReadCloser
}

func (f *resumeForm) Run() (interview.Resume, error) {
	fields := []struct {
		label string
		field string
		value *string
	}{
		{label: "Full name", field: interview.ContactName, value: &f.contact.Name},
		{label: "Email", field: interview.ContactEmail, value: &f.contact.Email},
		{label: "Phone", field: interview.ContactPhone, value: &f.contact.Phone},
	}

	for _, field := range fields {
		if interview.ValidateContactField(field.field, *field.value) == nil {
			continue
		}

		name := field.field
		prompt := promptui.Prompt{
			Label:   field.label,
			Default: *field.value,
			Stdin:   f.stdin,
			Validate: func(input string) error {
				return interview.ValidateContactField(name, input)
			},
		}
		value, err := prompt.Run()
		if err != nil {
			return interview.Resume{}, err
		}
		*field.value = strings.TrimSpace(value)
	}

	if f.path == "" {
		prompt := promptui.Prompt{
			Label: "Resume file (PDF, DOC or DOCX)",
			Stdin: f.stdin,
			Validate: func(input string) error {
				return checkResumeFile(f.fs, input)
			},
		}
		path, err := prompt.Run()
		if err != nil {
			return interview.Resume{}, err
		}
		f.path = strings.TrimSpace(path)
	}

	return readResume(f.fs, f.path, f.contact)
}

func checkResumeFile(fs afero.Fs, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("%w: please upload your resume", errResumeFile)
	}

	info, err := fs.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: cannot open %s", errResumeFile, path)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", errResumeFile, path)
	}
	return nil
}

func readResume(fs afero.Fs, path string, contact interview.Contact) (interview.Resume, error) {
	if err := checkResumeFile(fs, path); err != nil {
		return interview.Resume{}, err
	}

	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return interview.Resume{}, fmt.Errorf("%w: %w", errResumeFile, err)
	}

	return interview.Resume{
		Filename: filepath.Base(path),
		Content:  content,
		Contact: interview.Contact{
			Name:  strings.TrimSpace(contact.Name),
			Email: strings.TrimSpace(contact.Email),
			Phone: strings.TrimSpace(contact.Phone),
		},
	}, nil
}

// isValidationError reports whether the upload form itself was rejected.
func isValidationError(err error) bool {
	var fieldErrs validation.Errors
	return errors.Is(err, interview.ErrEmptyResume) || errors.As(err, &fieldErrs)
}

func flagValue(cmd *cobra.Command, name string) string {
	flag := cmd.Flag(name)
	if flag == nil {
		return ""
	}
	return strings.TrimSpace(flag.Value.String())
}

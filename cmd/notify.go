package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/manifoldco/promptui"
	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/interview"
)

var (
	successStyle = promptui.Styler(promptui.FGGreen, promptui.FGBold)
	errorStyle   = promptui.Styler(promptui.FGRed, promptui.FGBold)
)

// terminalNotifier prints toasts to the terminal.
type terminalNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

func newTerminalNotifier(out io.Writer) *terminalNotifier {
	return &terminalNotifier{out: out}
}

func (n *terminalNotifier) Success(msg string) {
	n.print(successStyle("✔"), msg)
}

func (n *terminalNotifier) Error(msg string) {
	n.print(errorStyle("✘"), msg)
}

func (n *terminalNotifier) print(icon, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	// Notifications are fire-and-forget, a broken terminal is not reported.
	_, _ = fmt.Fprintf(n.out, "%s %s\n", icon, msg)
}

// terminalNavigator prints the page the candidate continues on.
type terminalNavigator struct {
	out    io.Writer
	appURL string
	logger *zap.Logger

	mu   sync.Mutex
	last string
}

func newTerminalNavigator(out io.Writer, appURL string, logger *zap.Logger) *terminalNavigator {
	return &terminalNavigator{
		out:    out,
		appURL: strings.TrimRight(appURL, "/"),
		logger: logger,
	}
}

func (n *terminalNavigator) Navigate(_ context.Context, route string) {
	target := n.appURL + route

	n.mu.Lock()
	n.last = route
	n.mu.Unlock()

	n.logger.Debug("navigating", zap.String("route", route))
	_, _ = fmt.Fprintf(n.out, "Continue at: %s\n", target)
}

// Last returns the last route navigated to.
func (n *terminalNavigator) Last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last
}

var (
	_ interview.Notifier  = (*terminalNotifier)(nil)
	_ interview.Navigator = (*terminalNavigator)(nil)
)

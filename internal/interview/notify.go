package interview

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Notifier is the toast surface. Calls are fire-and-forget: never awaited,
// never retried.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Navigator hands the candidate over to a route outside of this flow.
type Navigator interface {
	Navigate(ctx context.Context, route string)
}

// RecordingRoute is where an accepted candidate continues.
func RecordingRoute(accessCode string) string {
	return fmt.Sprintf("/interview/%s/setup", accessCode)
}

// HomeRoute is where a candidate goes after scheduling for later.
const HomeRoute = "/"

type logNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier returns a Notifier that only writes to the log.
func NewLogNotifier(logger *zap.Logger) Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &logNotifier{logger: logger}
}

func (n *logNotifier) Success(msg string) { n.logger.Info("notification", zap.String("message", msg)) }

func (n *logNotifier) Error(msg string) { n.logger.Warn("notification", zap.String("message", msg)) }

type logNavigator struct {
	logger *zap.Logger
}

// NewLogNavigator returns a Navigator that records the route in the log.
func NewLogNavigator(logger *zap.Logger) Navigator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &logNavigator{logger: logger}
}

func (n *logNavigator) Navigate(_ context.Context, route string) {
	n.logger.Info("navigating", zap.String("route", route))
}

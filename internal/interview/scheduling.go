package interview

import (
	"context"
	"time"
)

// CompletionWindow is how long a candidate has to finish an interview scheduled for later.
const CompletionWindow = 48 * time.Hour

const scheduleLaterMessage = "We'll send you an email with the interview link. Please complete it within 48 hours."

// Scheduler offers taking the interview now or later.
type Scheduler struct {
	accessCode string
	notifier   Notifier
	navigator  Navigator
}

func NewScheduler(accessCode string, notifier Notifier, navigator Navigator) *Scheduler {
	return &Scheduler{accessCode: accessCode, notifier: notifier, navigator: navigator}
}

// ScheduleNow hands off to the recording stage.
func (s *Scheduler) ScheduleNow(ctx context.Context) {
	s.navigator.Navigate(ctx, RecordingRoute(s.accessCode))
}

// ScheduleLater confirms the email handoff and leaves the flow. Delivery
// of the email is not tracked here.
func (s *Scheduler) ScheduleLater(ctx context.Context) {
	s.notifier.Success(scheduleLaterMessage)
	s.navigator.Navigate(ctx, HomeRoute)
}

// Deadline is the latest time an interview scheduled at now must be completed.
func Deadline(now time.Time) time.Time {
	return now.Add(CompletionWindow)
}

package interview

import "fmt"

// Stage is a phase of the public interview funnel. Stages are ordered and a
// flow only ever moves forward.
type Stage int

const (
	StageNone Stage = iota
	StageResume
	StageCompatibility
	StageScheduling
	StageRecording
	StageThankYou
)

func (s Stage) String() string {
	switch s {
	case StageNone:
		return "none"
	case StageResume:
		return "resume"
	case StageCompatibility:
		return "compatibility"
	case StageScheduling:
		return "scheduling"
	case StageRecording:
		return "recording"
	case StageThankYou:
		return "thank-you"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Status tags the variant of a State.
type Status int

const (
	// StatusIdle waits for a user action on the current stage.
	StatusIdle Status = iota
	// StatusLoading has a remote call in flight.
	StatusLoading
	// StatusHandedOff left this flow for Destination.
	StatusHandedOff
	// StatusTerminated ended with Err.
	StatusTerminated
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusHandedOff:
		return "handed-off"
	case StatusTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// State is the value of the stage machine. Destination is only set when
// handed off and Err only when terminated; use Transition to build states.
type State struct {
	Stage       Stage
	Status      Status
	Destination Stage
	Err         error
}

func (s State) IsLoading() bool { return s.Status == StatusLoading }

// Finished reports whether no further transition is possible.
func (s State) Finished() bool {
	return s.Status == StatusHandedOff || s.Status == StatusTerminated
}

func (s State) String() string {
	switch s.Status {
	case StatusHandedOff:
		return fmt.Sprintf("%s/%s->%s", s.Stage, s.Status, s.Destination)
	case StatusTerminated:
		return fmt.Sprintf("%s/%s(%v)", s.Stage, s.Status, s.Err)
	default:
		return fmt.Sprintf("%s/%s", s.Stage, s.Status)
	}
}

type EventKind int

const (
	EventStart EventKind = iota
	EventLinkResolved
	EventLinkFailed
	EventResumeSubmitted
	EventResumeSubmissionDone
	EventResumeCompleted
	EventQuestionsReady
	EventQuestionsFailed
	EventAcceptRequested
	EventInterviewReady
	EventInterviewFailed
	EventRejected
)

var eventNames = map[EventKind]string{
	EventStart:                "start",
	EventLinkResolved:         "link_resolved",
	EventLinkFailed:           "link_failed",
	EventResumeSubmitted:      "resume_submitted",
	EventResumeSubmissionDone: "resume_submission_done",
	EventResumeCompleted:      "resume_completed",
	EventQuestionsReady:       "questions_ready",
	EventQuestionsFailed:      "questions_failed",
	EventAcceptRequested:      "accept_requested",
	EventInterviewReady:       "interview_ready",
	EventInterviewFailed:      "interview_failed",
	EventRejected:             "rejected",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event drives Transition. Err is only read for EventLinkFailed.
type Event struct {
	Kind EventKind
	Err  error
}

// requests start a remote call; they are refused while another one runs.
func (k EventKind) request() bool {
	switch k {
	case EventStart, EventResumeSubmitted, EventResumeCompleted, EventAcceptRequested, EventRejected:
		return true
	default:
		return false
	}
}

// Transition computes the next state. It never moves to an earlier stage.
func Transition(s State, e Event) (State, error) {
	if s.Finished() {
		return s, ErrFlowFinished
	}

	if e.Kind.request() && s.IsLoading() {
		return s, ErrBusy
	}

	idle := s.Status == StatusIdle

	switch {
	case e.Kind == EventStart && s.Stage == StageNone && idle:
		return State{Stage: StageNone, Status: StatusLoading}, nil

	case e.Kind == EventLinkResolved && s.Stage == StageNone && s.IsLoading():
		return State{Stage: StageResume, Status: StatusIdle}, nil

	case e.Kind == EventLinkFailed && s.Stage == StageNone && s.IsLoading():
		err := e.Err
		if err == nil {
			err = ErrInvalidLink
		}
		return State{Stage: StageNone, Status: StatusTerminated, Err: err}, nil

	case e.Kind == EventResumeSubmitted && s.Stage == StageResume && idle:
		return State{Stage: StageResume, Status: StatusLoading}, nil

	case e.Kind == EventResumeSubmissionDone && s.Stage == StageResume && s.IsLoading():
		return State{Stage: StageResume, Status: StatusIdle}, nil

	case e.Kind == EventResumeCompleted && s.Stage == StageResume && idle:
		return State{Stage: StageResume, Status: StatusLoading}, nil

	case e.Kind == EventQuestionsReady && s.Stage == StageResume && s.IsLoading():
		return State{Stage: StageCompatibility, Status: StatusIdle}, nil

	case e.Kind == EventQuestionsFailed && s.Stage == StageResume && s.IsLoading():
		return State{Stage: StageResume, Status: StatusIdle}, nil

	case e.Kind == EventAcceptRequested && s.Stage == StageCompatibility && idle:
		return State{Stage: StageCompatibility, Status: StatusLoading}, nil

	case e.Kind == EventInterviewReady && s.Stage == StageCompatibility && s.IsLoading():
		return State{Stage: StageCompatibility, Status: StatusHandedOff, Destination: StageRecording}, nil

	case e.Kind == EventInterviewFailed && s.Stage == StageCompatibility && s.IsLoading():
		return State{Stage: StageCompatibility, Status: StatusIdle}, nil

	case e.Kind == EventRejected && s.Stage == StageCompatibility && idle:
		return State{Stage: StageCompatibility, Status: StatusTerminated, Err: ErrCompatibilityRejected}, nil
	}

	return s, fmt.Errorf("%w: %s on %s", ErrIllegalTransition, e.Kind, s)
}

package interview

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/logger"
)

const (
	msgResumeProcessed      = "Resume processed successfully!"
	msgResumeFailed         = "Error processing your resume. Please try again."
	msgQuestionsFailed      = "Failed to generate interview questions"
	msgInterviewStartFailed = "Failed to start interview"
)

// Deps aggregates the collaborators of a Controller.
type Deps struct {
	Resolver    *Resolver
	Submitter   ResumeSubmitter
	Generator   QuestionGenerator
	Regenerator QuestionRegenerator
	Notifier    Notifier
	Navigator   Navigator
	Logger      *zap.Logger
}

// Options tune question generation.
type Options struct {
	QuestionTypes []string
	MaxQuestions  int
	// RegenerateOnAccept asks for questions again when the candidate accepts
	// the compatibility result, even though they were generated after the
	// resume step already.
	RegenerateOnAccept bool
}

// DefaultOptions returns the question mix and limits used by the web flow.
func DefaultOptions() Options {
	return Options{
		QuestionTypes:      DefaultQuestionTypes(),
		MaxQuestions:       DefaultMaxQuestions,
		RegenerateOnAccept: true,
	}
}

// Snapshot is a copy of the controller state for rendering.
type Snapshot struct {
	State         State
	CurrentStage  Stage
	IsLoading     bool
	Err           error
	Link          *InterviewLink
	MatchAnalysis *MatchAnalysis
	ResumeText    string
	Candidate     *Candidate
	Questions     []Question
}

// Controller orchestrates one interview attempt for one access code. It owns
// its state exclusively; nothing is shared between controllers.
type Controller struct {
	id         string
	accessCode string
	deps       Deps
	opts       Options
	logger     *zap.Logger

	mu            sync.Mutex
	state         State
	closed        bool
	link          *InterviewLink
	analysis      *MatchAnalysis
	resumeText    string
	candidate     *Candidate
	questions     []Question
	generationKey string
	lastRequest   QuestionRequest
}

func NewController(accessCode string, deps Deps, opts Options) *Controller {
	if deps.Notifier == nil {
		deps.Notifier = NewLogNotifier(deps.Logger)
	}
	if deps.Navigator == nil {
		deps.Navigator = NewLogNavigator(deps.Logger)
	}
	if len(opts.QuestionTypes) == 0 {
		opts.QuestionTypes = DefaultQuestionTypes()
	}
	if opts.MaxQuestions <= 0 {
		opts.MaxQuestions = DefaultMaxQuestions
	}
	if deps.Regenerator == nil {
		if regenerator, ok := deps.Generator.(QuestionRegenerator); ok {
			deps.Regenerator = regenerator
		}
	}

	id := uuid.NewString()

	return &Controller{
		id:         id,
		accessCode: accessCode,
		deps:       deps,
		opts:       opts,
		logger:     logger.WithFlowFields(deps.Logger, id, accessCode),
	}
}

func (c *Controller) ID() string { return c.id }

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		State:        c.state,
		CurrentStage: c.state.Stage,
		IsLoading:    c.state.IsLoading(),
		Err:          c.state.Err,
		ResumeText:   c.resumeText,
		Questions:    append([]Question(nil), c.questions...),
	}
	if c.link != nil {
		link := *c.link
		snap.Link = &link
	}
	if c.analysis != nil {
		analysis := *c.analysis
		snap.MatchAnalysis = &analysis
	}
	if c.candidate != nil {
		candidate := *c.candidate
		snap.Candidate = &candidate
	}
	return snap
}

// Verdict evaluates the compatibility gate. It is indeterminate while no
// analysis exists or a call is in flight.
func (c *Controller) Verdict() Verdict {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.IsLoading() {
		return VerdictIndeterminate
	}
	return Evaluate(c.analysis)
}

// Close marks the owner of the controller as gone. Calls still in flight
// finish, but their results are dropped.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// Start resolves the access code and opens the resume stage.
func (c *Controller) Start(ctx context.Context) error {
	if err := c.begin(Event{Kind: EventStart}, nil); err != nil {
		return err
	}

	done := Event{Kind: EventLinkFailed, Err: ErrInvalidLink}
	var commit func()
	defer func() { c.end(done, commit) }()

	link, err := c.deps.Resolver.Resolve(ctx, c.accessCode)
	if err != nil {
		done.Err = err
		c.logger.Warn("interview link rejected", zap.Error(err))
		return err
	}

	done = Event{Kind: EventLinkResolved}
	commit = func() { c.link = link }

	c.logger.Info("interview link resolved",
		zap.Int("job_id", link.JobID),
		zap.Int("interview_id", link.InterviewID),
		zap.String("job_title", link.JobTitle),
		zap.String("company", link.CompanyName),
	)

	return nil
}

// SubmitResume sends the resume for analysis and continues with the
// question generation of CompleteResumeStep on success. The flow stays
// loading until both are done.
func (c *Controller) SubmitResume(ctx context.Context, resume Resume) error {
	if err := resume.Validate(); err != nil {
		c.notifyError(err.Error(), nil)
		return err
	}

	var job JobContext
	if err := c.begin(Event{Kind: EventResumeSubmitted}, func() error {
		job = c.link.Job()
		return nil
	}); err != nil {
		return err
	}

	result, err := c.submit(ctx, job, resume)
	if err != nil {
		c.end(Event{Kind: EventResumeSubmissionDone}, nil)
		return err
	}

	c.notifySuccess(msgResumeProcessed)

	return c.completeResumeStep(ctx, result, func(guard func() error) error {
		return c.hold(Event{Kind: EventResumeSubmissionDone}, guard)
	})
}

func (c *Controller) submit(ctx context.Context, job JobContext, resume Resume) (*ResumeResult, error) {
	result, err := c.deps.Submitter.SubmitResume(ctx, job, resume)
	if err == nil && result == nil {
		err = errors.New("empty analysis response")
	}
	if err != nil {
		c.logger.Warn("resume analysis failed", zap.Error(err))
		c.notifyError(msgResumeFailed, err)
		return nil, &ResumeAnalysisError{Err: err}
	}

	c.logger.Info("resume analyzed",
		zap.String("filename", resume.Filename),
		zap.Float64("match_score", result.Analysis.MatchScore),
	)

	return result, nil
}

// CompleteResumeStep stores the analysis and generates the first set of
// questions. The flow moves to the compatibility stage only when that
// generation succeeds; otherwise it stays on the resume stage.
func (c *Controller) CompleteResumeStep(ctx context.Context, result *ResumeResult) error {
	if result == nil {
		return &ResumeAnalysisError{Err: errors.New("no analysis result")}
	}

	return c.completeResumeStep(ctx, result, func(guard func() error) error {
		return c.begin(Event{Kind: EventResumeCompleted}, guard)
	})
}

// completeResumeStep runs the generation once start has put the flow into
// the loading resume stage.
func (c *Controller) completeResumeStep(ctx context.Context, result *ResumeResult, start func(guard func() error) error) error {
	var req QuestionRequest
	var key string
	if err := start(func() error {
		analysis := result.Analysis
		c.analysis = &analysis
		c.resumeText = result.ResumeText
		c.candidate = result.Candidate
		c.questions = nil

		req = QuestionRequest{
			JobDescription: c.link.JobDescription,
			ResumeText:     result.ResumeText,
			QuestionTypes:  append([]string(nil), c.opts.QuestionTypes...),
			MaxQuestions:   c.opts.MaxQuestions,
			InterviewID:    c.link.InterviewID,
		}
		key = generationKey(c.link.JobID, result.ResumeText)
		return nil
	}); err != nil {
		return err
	}

	done := Event{Kind: EventQuestionsFailed}
	var commit func()
	defer func() { c.end(done, commit) }()

	questions, err := c.generate(ctx, req)
	if err != nil {
		c.logger.Warn("question generation failed", zap.Error(err))
		c.notifyError(msgQuestionsFailed, nil)
		return err
	}

	c.logger.Info("questions generated",
		zap.Int("count", len(questions)),
		zap.String("generation_key", key),
	)

	done = Event{Kind: EventQuestionsReady}
	commit = func() {
		c.questions = questions
		c.generationKey = key
		c.lastRequest = req
	}

	return nil
}

func (c *Controller) generate(ctx context.Context, req QuestionRequest) ([]Question, error) {
	if req.ResumeText == "" {
		return nil, &QuestionGenerationError{Err: ErrMissingResumeText}
	}
	if req.InterviewID == 0 {
		return nil, &QuestionGenerationError{Err: ErrMissingInterviewID}
	}

	questions, err := c.deps.Generator.GenerateQuestions(ctx, req)
	if err != nil {
		return nil, &QuestionGenerationError{Err: err}
	}
	if len(questions) == 0 {
		return nil, &QuestionGenerationError{Err: errors.New("no questions returned")}
	}

	return questions, nil
}

// AcceptCompatibility generates questions again for the job and resume and
// hands the candidate over to the recording stage.
func (c *Controller) AcceptCompatibility(ctx context.Context) error {
	var jobID int
	var resumeText, previousKey string
	var lastRequest QuestionRequest
	if err := c.begin(Event{Kind: EventAcceptRequested}, func() error {
		if Evaluate(c.analysis) != VerdictAccept {
			return ErrNotCompatible
		}
		jobID = c.link.JobID
		resumeText = c.resumeText
		previousKey = c.generationKey
		lastRequest = c.lastRequest
		return nil
	}); err != nil {
		return err
	}

	done := Event{Kind: EventInterviewFailed}
	var commit func()
	defer func() {
		if c.end(done, commit) {
			c.deps.Navigator.Navigate(ctx, RecordingRoute(c.accessCode))
		}
	}()

	if !c.opts.RegenerateOnAccept {
		c.logger.Info("skipping question regeneration on accept")
		done = Event{Kind: EventInterviewReady}
		return nil
	}

	if resumeText == "" {
		c.notifyError(msgInterviewStartFailed, nil)
		return &QuestionGenerationError{Err: ErrMissingResumeText}
	}

	key := generationKey(jobID, resumeText)
	if key == previousKey {
		c.logger.Info("regenerating questions for an unchanged job and resume",
			zap.String("generation_key", key),
		)
	}

	var questions []Question
	var err error
	if c.deps.Regenerator != nil {
		questions, err = c.deps.Regenerator.RegenerateQuestions(ctx, jobID, resumeText)
	} else {
		questions, err = c.deps.Generator.GenerateQuestions(ctx, lastRequest)
	}
	if err == nil && len(questions) == 0 {
		err = errors.New("no questions returned")
	}
	if err != nil {
		c.logger.Warn("question regeneration failed", zap.Error(err))
		c.notifyError(msgInterviewStartFailed, nil)
		return &QuestionGenerationError{Err: err}
	}

	done = Event{Kind: EventInterviewReady}
	commit = func() {
		c.questions = questions
		c.generationKey = key
	}

	return nil
}

// RejectCompatibility ends the flow with ErrCompatibilityRejected.
func (c *Controller) RejectCompatibility() error {
	if err := c.begin(Event{Kind: EventRejected}, nil); err != nil {
		return err
	}
	c.logger.Info("candidate rejected by compatibility gate")
	return nil
}

// begin applies a request event. guard runs under the lock before the
// transition and may veto it.
func (c *Controller) begin(e Event, guard func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrFlowFinished
	}

	next, err := Transition(c.state, e)
	if err != nil {
		return err
	}

	if guard != nil {
		if err := guard(); err != nil {
			return err
		}
	}

	c.setState(next, e)
	return nil
}

// hold runs guard for a call that keeps the loading state of the request
// before it. A closed controller or a failed guard applies fallback instead.
func (c *Controller) hold(fallback Event, guard func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := ErrFlowFinished
	if !c.closed {
		err = guard()
	}
	if err == nil {
		return nil
	}

	if next, terr := Transition(c.state, fallback); terr == nil {
		c.setState(next, fallback)
	}
	return err
}

// end applies a completion event and runs commit unless the controller was
// closed meanwhile. It reports whether the result was kept.
func (c *Controller) end(e Event, commit func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := Transition(c.state, e)
	if err != nil {
		c.logger.Error("unexpected transition", zap.Error(err))
		return false
	}
	c.setState(next, e)

	if c.closed {
		c.logger.Debug("discarding result of a closed flow", zap.Stringer("event", e.Kind))
		return false
	}

	if commit != nil {
		commit()
	}
	return true
}

func (c *Controller) setState(next State, e Event) {
	prev := c.state
	c.state = next
	c.logger.Debug("transition",
		zap.Stringer("event", e.Kind),
		zap.Stringer("from", prev),
		zap.Stringer("to", next),
		zap.String(logger.FieldStage, next.Stage.String()),
	)
}

func (c *Controller) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Controller) notifySuccess(msg string) {
	if c.isClosed() {
		return
	}
	c.deps.Notifier.Success(msg)
}

// notifyError prefers the detail of err over fallback. Nothing is shown once
// the controller is closed.
func (c *Controller) notifyError(fallback string, err error) {
	if c.isClosed() {
		return
	}

	msg := fallback
	var detailed interface{ Detail() string }
	if errors.As(err, &detailed) && detailed.Detail() != "" {
		msg = detailed.Detail()
	}
	c.deps.Notifier.Error(msg)
}

// generationKey identifies the job and resume pair questions were generated for.
func generationKey(jobID int, resumeText string) string {
	sum := sha256.Sum256([]byte(strconv.Itoa(jobID) + "\x00" + resumeText))
	return fmt.Sprintf("%x", sum[:6])
}

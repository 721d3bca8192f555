package survey

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

var (
	// ErrUnanswered gates forward navigation and manual submission.
	ErrUnanswered = errors.New("question not answered")
	// ErrSubmitted: the attempt already reached its terminal state.
	ErrSubmitted = errors.New("attempt already submitted")
)

// Attempt is the in-progress response workflow: one question at a time,
// forward navigation gated by an answered predicate, a single terminal
// submission. A quiz attempt additionally runs a countdown that
// force-submits on expiry, bypassing the gate. That override is
// deliberate: the deadline wins over completeness.
type Attempt struct {
	mu        sync.Mutex
	questions []Question
	current   int
	answers   map[string]any
	submitted bool
	timer     *time.Timer

	onSubmit   func(answers map[string]any, timedOut bool) error
	onAutosave func(answers map[string]any)
}

type AttemptOptions struct {
	// TimeLimit starts the countdown when > 0.
	TimeLimit time.Duration
	// OnSubmit runs exactly once, on the single transition to Submitted.
	// Its error reaches the caller of Submit; the countdown path has no
	// caller and discards it.
	OnSubmit func(answers map[string]any, timedOut bool) error
	// OnAutosave runs after every recorded answer.
	OnAutosave func(answers map[string]any)
	// Restore pre-fills answers from a saved draft.
	Restore map[string]any
}

func NewAttempt(questions []Question, opts AttemptOptions) (*Attempt, error) {
	if len(questions) == 0 {
		return nil, errors.New("attempt needs at least one question")
	}

	a := &Attempt{
		questions:  questions,
		answers:    map[string]any{},
		onSubmit:   opts.OnSubmit,
		onAutosave: opts.OnAutosave,
	}
	for key, value := range opts.Restore {
		a.answers[key] = value
	}
	if opts.TimeLimit > 0 {
		a.timer = time.AfterFunc(opts.TimeLimit, a.expire)
	}
	return a, nil
}

// Current reports the 1-based question position and the total.
func (a *Attempt) Current() (n, total int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current + 1, len(a.questions)
}

func (a *Attempt) Question() Question {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.questions[a.current]
}

func (a *Attempt) Answers() map[string]any {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.copyAnswers()
}

// Answer records a value for the current question and autosaves.
func (a *Attempt) Answer(value any) error {
	a.mu.Lock()
	if a.submitted {
		a.mu.Unlock()
		return ErrSubmitted
	}
	a.answers[AnswerKey(a.questions[a.current].ID)] = value
	autosave := a.onAutosave
	answers := a.copyAnswers()
	a.mu.Unlock()

	if autosave != nil {
		autosave(answers)
	}
	return nil
}

// Next advances to the following question; the current one must be
// answered first.
func (a *Attempt) Next() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.submitted {
		return ErrSubmitted
	}
	q := a.questions[a.current]
	if !answered(a.answers[AnswerKey(q.ID)]) {
		return fmt.Errorf("%w: question %d", ErrUnanswered, a.current+1)
	}
	if a.current < len(a.questions)-1 {
		a.current++
	}
	return nil
}

// Prev moves back one question; backward navigation is never gated.
func (a *Attempt) Prev() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.submitted {
		return ErrSubmitted
	}
	if a.current > 0 {
		a.current--
	}
	return nil
}

// Submit ends the attempt. Every question must be answered; the countdown
// path is the only one that skips this check.
func (a *Attempt) Submit() error {
	a.mu.Lock()
	if a.submitted {
		a.mu.Unlock()
		return ErrSubmitted
	}
	for i, q := range a.questions {
		if !answered(a.answers[AnswerKey(q.ID)]) {
			a.mu.Unlock()
			return fmt.Errorf("%w: question %d", ErrUnanswered, i+1)
		}
	}
	return a.finish(false)
}

// Abandon discards the attempt without submitting. The countdown stops;
// the caller drops its draft.
func (a *Attempt) Abandon() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.submitted {
		return ErrSubmitted
	}
	a.submitted = true
	if a.timer != nil {
		a.timer.Stop()
	}
	return nil
}

// expire runs on the countdown goroutine. When it races a manual Submit,
// the submitted flag guarantees a single terminal transition.
func (a *Attempt) expire() {
	a.mu.Lock()
	if a.submitted {
		a.mu.Unlock()
		return
	}
	a.finish(true)
}

// finish must be entered with the lock held; it releases it.
func (a *Attempt) finish(timedOut bool) error {
	a.submitted = true
	if a.timer != nil {
		a.timer.Stop()
	}
	submit := a.onSubmit
	answers := a.copyAnswers()
	a.mu.Unlock()

	if submit != nil {
		return submit(answers, timedOut)
	}
	return nil
}

func (a *Attempt) copyAnswers() map[string]any {
	out := make(map[string]any, len(a.answers))
	for key, value := range a.answers {
		out[key] = value
	}
	return out
}

// answered is the completion predicate: a non-empty trimmed string, a
// non-empty selection list, or any other non-nil value.
func answered(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(v) != ""
	case []any:
		return len(v) > 0
	case []string:
		return len(v) > 0
	}
	return true
}

package survey

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func twoQuestions() []Question {
	return []Question{
		{ID: 1, Text: "uno", Type: TypeMultipleChoice},
		{ID: 2, Text: "dos", Type: TypeShortAnswer},
	}
}

func TestNextGatedByAnswer(t *testing.T) {
	a, err := NewAttempt(twoQuestions(), AttemptOptions{})
	if err != nil {
		t.Fatalf("new attempt: %v", err)
	}

	if err = a.Next(); !errors.Is(err, ErrUnanswered) {
		t.Fatalf("unanswered next: err = %v, want ErrUnanswered", err)
	}

	// whitespace-only text does not count as answered
	if err = a.Answer("   "); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if err = a.Next(); !errors.Is(err, ErrUnanswered) {
		t.Fatalf("blank next: err = %v, want ErrUnanswered", err)
	}

	if err = a.Answer("a"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if err = a.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	if n, total := a.Current(); n != 2 || total != 2 {
		t.Fatalf("position = %d/%d, want 2/2", n, total)
	}

	// backward navigation is never gated
	if err = a.Prev(); err != nil {
		t.Fatalf("prev: %v", err)
	}
	if n, _ := a.Current(); n != 1 {
		t.Fatalf("position = %d, want 1", n)
	}
}

func TestSubmitRequiresAllAnswers(t *testing.T) {
	submissions := 0
	a, err := NewAttempt(twoQuestions(), AttemptOptions{
		OnSubmit: func(map[string]any, bool) error { submissions++; return nil },
	})
	if err != nil {
		t.Fatalf("new attempt: %v", err)
	}

	if err = a.Answer("a"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if err = a.Submit(); !errors.Is(err, ErrUnanswered) {
		t.Fatalf("partial submit: err = %v, want ErrUnanswered", err)
	}

	if err = a.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	if err = a.Answer("texto"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if err = a.Submit(); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if submissions != 1 {
		t.Fatalf("OnSubmit ran %d times, want 1", submissions)
	}

	// terminal state: everything rejects from here on
	if err = a.Submit(); !errors.Is(err, ErrSubmitted) {
		t.Fatalf("resubmit: err = %v, want ErrSubmitted", err)
	}
	if err = a.Answer("x"); !errors.Is(err, ErrSubmitted) {
		t.Fatalf("answer after submit: err = %v, want ErrSubmitted", err)
	}
	if err = a.Next(); !errors.Is(err, ErrSubmitted) {
		t.Fatalf("next after submit: err = %v, want ErrSubmitted", err)
	}
}

func TestCountdownForceSubmits(t *testing.T) {
	var submissions int32
	done := make(chan struct{})
	var timedOut bool

	a, err := NewAttempt(twoQuestions(), AttemptOptions{
		TimeLimit: 20 * time.Millisecond,
		OnSubmit: func(_ map[string]any, to bool) error {
			timedOut = to
			atomic.AddInt32(&submissions, 1)
			close(done)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("new attempt: %v", err)
	}

	// no answers at all: the deadline wins over the answered gate
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("countdown never submitted")
	}

	if !timedOut {
		t.Fatal("expiry submission not flagged as timed out")
	}
	if err = a.Submit(); !errors.Is(err, ErrSubmitted) {
		t.Fatalf("submit after expiry: err = %v, want ErrSubmitted", err)
	}
	if n := atomic.LoadInt32(&submissions); n != 1 {
		t.Fatalf("OnSubmit ran %d times, want 1", n)
	}
}

func TestCountdownRacesManualSubmit(t *testing.T) {
	var submissions int32
	a, err := NewAttempt([]Question{{ID: 1, Type: TypeShortAnswer}}, AttemptOptions{
		TimeLimit: 10 * time.Millisecond,
		OnSubmit: func(map[string]any, bool) error {
			atomic.AddInt32(&submissions, 1)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("new attempt: %v", err)
	}
	if err = a.Answer("x"); err != nil {
		t.Fatalf("answer: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.Submit() // may lose the race to the timer, that's the point
	}()
	wg.Wait()
	time.Sleep(50 * time.Millisecond)

	if n := atomic.LoadInt32(&submissions); n != 1 {
		t.Fatalf("OnSubmit ran %d times, want exactly 1", n)
	}
}

func TestRestoreAndAutosave(t *testing.T) {
	var saved map[string]any
	a, err := NewAttempt(twoQuestions(), AttemptOptions{
		Restore:    map[string]any{"1": "a"},
		OnAutosave: func(answers map[string]any) { saved = answers },
	})
	if err != nil {
		t.Fatalf("new attempt: %v", err)
	}

	// the restored answer already satisfies the gate
	if err = a.Next(); err != nil {
		t.Fatalf("next with restored answer: %v", err)
	}

	if err = a.Answer("texto"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if saved == nil || saved["2"] != "texto" || saved["1"] != "a" {
		t.Fatalf("autosave = %v, want both answers", saved)
	}
}

func TestAbandonStopsAttempt(t *testing.T) {
	var submissions int32
	a, err := NewAttempt(twoQuestions(), AttemptOptions{
		TimeLimit: 10 * time.Millisecond,
		OnSubmit: func(map[string]any, bool) error {
			atomic.AddInt32(&submissions, 1)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("new attempt: %v", err)
	}

	if err = a.Abandon(); err != nil {
		t.Fatalf("abandon: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	if n := atomic.LoadInt32(&submissions); n != 0 {
		t.Fatalf("abandoned attempt submitted %d times", n)
	}
}

package survey

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmorenog/bancalocal/draft"
	"github.com/dmorenog/bancalocal/log"
	"github.com/dmorenog/bancalocal/store"
)

// AttemptManager owns the live attempts. Answers autosave into the draft
// slot keyed by owner slug and submitter; the draft is dropped on
// submission or abandonment. Quiz attempts run the configured countdown.
type AttemptManager struct {
	mu       sync.Mutex
	svc      *Service
	drafts   *draft.Slot
	limit    time.Duration
	attempts map[string]*liveAttempt
}

type liveAttempt struct {
	attempt   *Attempt
	kind      Kind
	ownerName string
	submitter string
}

func NewAttemptManager(svc *Service, drafts *draft.Slot, quizTimeLimit time.Duration) *AttemptManager {
	return &AttemptManager{
		svc:      svc,
		drafts:   drafts,
		limit:    quizTimeLimit,
		attempts: map[string]*liveAttempt{},
	}
}

func draftKey(k Kind, name, submitter string) string {
	return "draft:" + k.Name + ":" + name + ":" + submitter
}

// Start opens an attempt against the named survey or quiz, restoring any
// saved draft for the same submitter.
func (am *AttemptManager) Start(ctx context.Context, k Kind, name, submitter string) (string, *Attempt, error) {
	owner, err := am.svc.GetByName(ctx, k, name)
	if err != nil {
		return "", nil, err
	}
	questions, err := am.svc.Questions(ctx, k, owner.ID)
	if err != nil {
		return "", nil, err
	}
	if len(questions) == 0 {
		return "", nil, fmt.Errorf("%w: %s %q has no questions", store.ErrValidationFailed, k.Name, name)
	}

	var restored map[string]any
	if _, err = am.drafts.Get(draftKey(k, name, submitter), &restored); err != nil {
		return "", nil, err
	}
	// A draft can outlive its questions; answers for deleted ones are dropped.
	if len(restored) > 0 {
		known := make(map[string]bool, len(questions))
		for _, q := range questions {
			known[AnswerKey(q.ID)] = true
		}
		for key := range restored {
			if !known[key] {
				delete(restored, key)
			}
		}
	}

	id := uuid.NewString()

	limit := time.Duration(0)
	if k.Graded {
		limit = am.limit
		if owner.TimeLimitMin > 0 {
			limit = time.Duration(owner.TimeLimitMin) * time.Minute
		}
	}

	attempt, err := NewAttempt(questions, AttemptOptions{
		TimeLimit: limit,
		Restore:   restored,
		OnAutosave: func(answers map[string]any) {
			if err := am.drafts.Put(draftKey(k, name, submitter), answers); err != nil {
				log.Errorf("attempt.autosave %s: %s", id, err)
			}
		},
		OnSubmit: func(answers map[string]any, timedOut bool) error {
			return am.complete(id, k, name, submitter, answers, timedOut)
		},
	})
	if err != nil {
		return "", nil, err
	}

	am.mu.Lock()
	am.attempts[id] = &liveAttempt{attempt: attempt, kind: k, ownerName: name, submitter: submitter}
	am.mu.Unlock()

	return id, attempt, nil
}

func (am *AttemptManager) Get(id string) (*Attempt, Kind, error) {
	am.mu.Lock()
	defer am.mu.Unlock()

	live, ok := am.attempts[id]
	if !ok {
		return nil, Kind{}, fmt.Errorf("%w: attempt %s", store.ErrNotFound, id)
	}
	return live.attempt, live.kind, nil
}

// Abandon discards a live attempt and its draft.
func (am *AttemptManager) Abandon(id string) error {
	am.mu.Lock()
	live, ok := am.attempts[id]
	delete(am.attempts, id)
	am.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: attempt %s", store.ErrNotFound, id)
	}
	if err := live.attempt.Abandon(); err != nil {
		return err
	}
	return am.drafts.Delete(draftKey(live.kind, live.ownerName, live.submitter))
}

// complete runs on the single Submitted transition, whether user-driven or
// countdown-driven. The timer path has no request context and no caller to
// report to, so a failed submit is logged there; the user-driven path gets
// the error back. Either way the attempt is terminal and leaves the map,
// but the draft survives a failed submit.
func (am *AttemptManager) complete(id string, k Kind, name, submitter string, answers map[string]any, timedOut bool) error {
	ctx := context.Background()

	am.mu.Lock()
	delete(am.attempts, id)
	am.mu.Unlock()

	if _, err := am.svc.Submit(ctx, k, name, submitter, answers); err != nil {
		if timedOut {
			log.Errorf("attempt.submit %s: %s", id, err)
		}
		return err
	}
	if timedOut {
		log.Infof("attempt.submit %s: countdown expired, submitted as-is", id)
	}

	if err := am.drafts.Delete(draftKey(k, name, submitter)); err != nil {
		log.Errorf("attempt.submit.drop_draft %s: %s", id, err)
	}
	return nil
}

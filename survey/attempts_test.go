package survey

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmorenog/bancalocal/draft"
	"github.com/dmorenog/bancalocal/store"
)

func testAttemptManager(t *testing.T) (*AttemptManager, *Service, *draft.Slot) {
	t.Helper()
	svc, _ := testService(t)
	drafts, err := draft.Open(filepath.Join(t.TempDir(), "drafts.json"))
	if err != nil {
		t.Fatalf("draft slot: %v", err)
	}
	return NewAttemptManager(svc, drafts, time.Minute), svc, drafts
}

func TestSubmitSurfacesPersistenceError(t *testing.T) {
	am, svc, drafts := testAttemptManager(t)
	ctx := context.Background()
	quiz := buildQuiz(t, svc, "quiz_borrado")

	id, attempt, err := am.Start(ctx, Quizzes, "quiz_borrado", "ana")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err = attempt.Answer("b"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if err = attempt.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	if err = attempt.Answer("true"); err != nil {
		t.Fatalf("answer: %v", err)
	}

	// the quiz disappears underneath the live attempt
	if err = svc.Delete(ctx, Quizzes, quiz.ID); err != nil {
		t.Fatalf("delete quiz: %v", err)
	}

	if err = attempt.Submit(); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("submit against deleted quiz: err = %v, want ErrNotFound", err)
	}

	// the attempt is terminal and gone from the manager either way
	if _, _, err = am.Get(id); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("get after failed submit: err = %v, want ErrNotFound", err)
	}
	recs, err := svc.store.GetAll(ctx, Quizzes.Responses)
	if err != nil {
		t.Fatalf("get responses: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("responses = %d, want 0", len(recs))
	}

	// the draft outlives the failed submit; the answers are not lost
	var kept map[string]any
	found, err := drafts.Get(draftKey(Quizzes, "quiz_borrado", "ana"), &kept)
	if err != nil {
		t.Fatalf("get draft: %v", err)
	}
	if !found || len(kept) != 2 {
		t.Fatalf("draft after failed submit = (%v, %v), want both answers kept", found, kept)
	}
}

func TestStartPrunesStaleDraftAnswers(t *testing.T) {
	am, svc, drafts := testAttemptManager(t)
	ctx := context.Background()
	quiz := buildQuiz(t, svc, "quiz_viejo")

	questions, err := svc.Questions(ctx, Quizzes, quiz.ID)
	if err != nil {
		t.Fatalf("questions: %v", err)
	}
	live := AnswerKey(questions[0].ID)

	// a saved draft referencing a question that no longer exists
	err = drafts.Put(draftKey(Quizzes, "quiz_viejo", "ana"), map[string]any{
		live:     "b",
		"999999": "sobrante",
	})
	if err != nil {
		t.Fatalf("put draft: %v", err)
	}

	_, attempt, err := am.Start(ctx, Quizzes, "quiz_viejo", "ana")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	answers := attempt.Answers()
	if answers[live] != "b" {
		t.Fatalf("restored answer = %v, want b", answers[live])
	}
	if _, ok := answers["999999"]; ok {
		t.Fatal("answer for deleted question survived the restore")
	}
}

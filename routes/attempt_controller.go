package routes

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/dmorenog/bancalocal/app"
	"github.com/dmorenog/bancalocal/httpx"
	"github.com/dmorenog/bancalocal/log"
	"github.com/dmorenog/bancalocal/survey"
)

func attemptKind(r *http.Request) survey.Kind {
	if chi.URLParam(r, "kind") == "quizzes" {
		return survey.Quizzes
	}
	return survey.Surveys
}

func attemptState(id string, a *survey.Attempt) map[string]any {
	n, total := a.Current()
	return map[string]any{
		"id":         id,
		"pregunta":   a.Question(),
		"actual":     n,
		"total":      total,
		"respuestas": a.Answers(),
	}
}

func StartAttempt(app app.App) http.HandlerFunc {
	type body struct {
		Submitter string `json:"usuario" validate:"required"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		b := body{}
		if err := render.DecodeJSON(r.Body, &b); err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if err := validate.Struct(b); err != nil {
			httpx.LogStatusMsg(w, http.StatusUnprocessableEntity, log.DebugLevel, "request.validate", "%s", err)
			return
		}

		id, attempt, err := app.Attempts.Start(r.Context(), attemptKind(r), chi.URLParam(r, "name"), b.Submitter)
		if err != nil {
			httpx.WriteStoreError(w, "attempt.start", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, attemptState(id, attempt))
	}
}

func GetAttempt(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		attempt, _, err := app.Attempts.Get(id)
		if err != nil {
			httpx.WriteStoreError(w, "attempt.get", err)
			return
		}
		render.JSON(w, r, attemptState(id, attempt))
	}
}

func AnswerAttempt(app app.App) http.HandlerFunc {
	type body struct {
		Value any `json:"valor"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		attempt, _, err := app.Attempts.Get(id)
		if err != nil {
			httpx.WriteStoreError(w, "attempt.answer", err)
			return
		}

		b := body{}
		if err = render.DecodeJSON(r.Body, &b); err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		if err = attempt.Answer(b.Value); err != nil {
			writeAttemptError(w, "attempt.answer", err)
			return
		}
		render.JSON(w, r, attemptState(id, attempt))
	}
}

func MoveAttempt(app app.App, forward bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		attempt, _, err := app.Attempts.Get(id)
		if err != nil {
			httpx.WriteStoreError(w, "attempt.move", err)
			return
		}

		if forward {
			err = attempt.Next()
		} else {
			err = attempt.Prev()
		}
		if err != nil {
			writeAttemptError(w, "attempt.move", err)
			return
		}
		render.JSON(w, r, attemptState(id, attempt))
	}
}

func SubmitAttempt(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		attempt, _, err := app.Attempts.Get(id)
		if err != nil {
			httpx.WriteStoreError(w, "attempt.submit", err)
			return
		}

		if err = attempt.Submit(); err != nil {
			writeAttemptError(w, "attempt.submit", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func AbandonAttempt(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := app.Attempts.Abandon(chi.URLParam(r, "id")); err != nil {
			httpx.WriteStoreError(w, "attempt.abandon", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeAttemptError(w http.ResponseWriter, code string, err error) {
	switch {
	case errors.Is(err, survey.ErrUnanswered):
		httpx.LogStatusMsg(w, http.StatusConflict, log.DebugLevel, code, "%s", err)
	case errors.Is(err, survey.ErrSubmitted):
		httpx.LogStatusMsg(w, http.StatusGone, log.DebugLevel, code, "%s", err)
	default:
		httpx.WriteStoreError(w, code, err)
	}
}

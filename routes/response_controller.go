package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/dmorenog/bancalocal/app"
	"github.com/dmorenog/bancalocal/httpx"
	"github.com/dmorenog/bancalocal/log"
	"github.com/dmorenog/bancalocal/survey"
)

// SubmitResponse records a direct (non-attempt) submission: the full answer
// map in one request. Quiz submissions come back graded, unconfirmed.
func SubmitResponse(app app.App, k survey.Kind) http.HandlerFunc {
	type body struct {
		Submitter string         `json:"usuario" validate:"required"`
		Answers   map[string]any `json:"respuestas"`
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

		resp, err := app.Surveys.Submit(r.Context(), k, chi.URLParam(r, "name"), b.Submitter, b.Answers)
		if err != nil {
			httpx.WriteStoreError(w, "db.insert_response", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, resp)
	}
}

func ListResponses(app app.App, k survey.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses, err := app.Surveys.Responses(r.Context(), k, chi.URLParam(r, "name"))
		if err != nil {
			httpx.WriteStoreError(w, "db.get_responses", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"responses": responses,
		})
	}
}

// ConfirmGrade finalizes a quiz response's score. One way, no undo;
// confirming an already-confirmed response is a no-op.
func ConfirmGrade(app app.App, k survey.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := app.Surveys.ConfirmGrade(r.Context(), k, chi.URLParam(r, "rid"))
		if err != nil {
			httpx.WriteStoreError(w, "db.confirm_grade", err)
			return
		}

		render.JSON(w, r, resp)
	}
}

package routes

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/dmorenog/bancalocal/app"
	"github.com/dmorenog/bancalocal/httpx"
	"github.com/dmorenog/bancalocal/log"
)

// Role-to-survey and role-to-quiz assignment maps, plus the currently
// selected role. All of it lives in the draft slot: it is ephemeral
// console state, not structured data.

const currentRoleKey = "current_role"

func roleKey(role, kind string) string {
	return "role:" + role + ":" + kind
}

func GetCurrentRole(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := ""
		if _, err := app.Drafts.Get(currentRoleKey, &role); err != nil {
			httpx.LogInternalError(w, "drafts.get_current_role", err)
			return
		}
		render.JSON(w, r, map[string]any{"role": role})
	}
}

func PutCurrentRole(app app.App) http.HandlerFunc {
	type body struct {
		Role string `json:"role" validate:"required"`
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

		if err := app.Drafts.Put(currentRoleKey, b.Role); err != nil {
			httpx.LogInternalError(w, "drafts.put_current_role", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func GetRoleAssignments(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names := []string{}
		if _, err := app.Drafts.Get(roleKey(chi.URLParam(r, "role"), chi.URLParam(r, "kind")), &names); err != nil {
			httpx.LogInternalError(w, "drafts.get_role", err)
			return
		}
		render.JSON(w, r, map[string]any{"names": names})
	}
}

func PutRoleAssignments(app app.App) http.HandlerFunc {
	type body struct {
		Names []string `json:"names"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		b := body{}
		if err := render.DecodeJSON(r.Body, &b); err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		if err := app.Drafts.Put(roleKey(chi.URLParam(r, "role"), chi.URLParam(r, "kind")), b.Names); err != nil {
			httpx.LogInternalError(w, "drafts.put_role", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func ListDrafts(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]any{"keys": app.Drafts.Keys()})
	}
}

func GetDraft(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var value json.RawMessage
		ok, err := app.Drafts.Get(chi.URLParam(r, "key"), &value)
		if err != nil {
			httpx.LogInternalError(w, "drafts.get", err)
			return
		}
		if !ok {
			httpx.LogNotFound(w, "drafts.get", chi.URLParam(r, "key"))
			return
		}
		render.JSON(w, r, map[string]any{"value": value})
	}
}

func PutDraft(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var value json.RawMessage
		if err := render.DecodeJSON(r.Body, &value); err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		if err := app.Drafts.Put(chi.URLParam(r, "key"), value); err != nil {
			httpx.LogInternalError(w, "drafts.put", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteDraft(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := app.Drafts.Delete(chi.URLParam(r, "key")); err != nil {
			httpx.LogInternalError(w, "drafts.delete", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

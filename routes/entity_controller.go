package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/dmorenog/bancalocal/app"
	"github.com/dmorenog/bancalocal/entity"
	"github.com/dmorenog/bancalocal/httpx"
	"github.com/dmorenog/bancalocal/log"
)

func manager(app app.App, w http.ResponseWriter, r *http.Request) (*entity.Manager, bool) {
	name := chi.URLParam(r, "entity")
	m, ok := app.Registry.Lookup(name)
	if !ok {
		httpx.LogNotFound(w, "entity.lookup", name)
		return nil, false
	}
	return m, true
}

func ListEntities(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]any{
			"entities": app.Registry.Names(),
		})
	}
}

// ListEntity returns raw records plus their per-field display strings, in
// insertion order.
func ListEntity(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, ok := manager(app, w, r)
		if !ok {
			return
		}

		records, err := m.List(r.Context())
		if err != nil {
			httpx.WriteStoreError(w, "db.get_records", err)
			return
		}

		display := make([]map[string]string, len(records))
		for i, rec := range records {
			display[i] = m.Format(rec)
		}

		render.JSON(w, r, map[string]any{
			"records": records,
			"display": display,
		})
	}
}

func GetEntity(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, ok := manager(app, w, r)
		if !ok {
			return
		}

		rec, err := m.Get(r.Context(), chi.URLParam(r, "key"))
		if err != nil {
			httpx.WriteStoreError(w, "db.get_record", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"record":  rec,
			"display": m.Format(rec),
		})
	}
}

// CreateEntity converts raw form string values to the entity's declared
// field types and inserts the record. Bad numerics reject the submission.
func CreateEntity(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, ok := manager(app, w, r)
		if !ok {
			return
		}

		form := map[string]string{}
		if err := render.DecodeJSON(r.Body, &form); err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		key, err := m.Create(r.Context(), form)
		if err != nil {
			httpx.WriteStoreError(w, "db.create_record", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"key": key,
		})
	}
}

func UpdateEntity(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, ok := manager(app, w, r)
		if !ok {
			return
		}

		form := map[string]string{}
		if err := render.DecodeJSON(r.Body, &form); err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		key, err := m.Update(r.Context(), chi.URLParam(r, "key"), form)
		if err != nil {
			httpx.WriteStoreError(w, "db.update_record", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"key": key,
		})
	}
}

// DeleteEntity issues the delete. The confirm prompt lives in the console
// client; by the time this endpoint is hit the user already said yes.
func DeleteEntity(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, ok := manager(app, w, r)
		if !ok {
			return
		}

		if err := m.Delete(r.Context(), chi.URLParam(r, "key")); err != nil {
			httpx.WriteStoreError(w, "db.delete_record", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

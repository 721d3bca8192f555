package routes

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/dmorenog/bancalocal/app"
	"github.com/dmorenog/bancalocal/httpx"
	"github.com/dmorenog/bancalocal/log"
	"github.com/dmorenog/bancalocal/survey"
)

var validate = validator.New()

func urlID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil {
		httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param."+param)
		return 0, false
	}
	return id, true
}

func CreateOwner(app app.App, k survey.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sv := survey.Survey{}
		if err := render.DecodeJSON(r.Body, &sv); err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if err := validate.Struct(sv); err != nil {
			httpx.LogStatusMsg(w, http.StatusUnprocessableEntity, log.DebugLevel, "request.validate", "%s", err)
			return
		}

		created, err := app.Surveys.Create(r.Context(), k, sv)
		if err != nil {
			httpx.WriteStoreError(w, "db.insert_"+k.Name, err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, created)
	}
}

func ListOwners(app app.App, k survey.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owners, err := app.Surveys.List(r.Context(), k)
		if err != nil {
			httpx.WriteStoreError(w, "db.get_"+k.Name, err)
			return
		}

		render.JSON(w, r, map[string]any{
			k.Name + "s": owners,
		})
	}
}

// GetOwner returns the survey/quiz with its questions and their options
// nested, the way the console's detail pages consume it.
func GetOwner(app app.App, k survey.Kind) http.HandlerFunc {
	type question struct {
		survey.Question
		Options []survey.Option `json:"opciones"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r, "id")
		if !ok {
			return
		}

		owner, err := app.Surveys.Get(r.Context(), k, id)
		if err != nil {
			httpx.WriteStoreError(w, "db.get_"+k.Name, err)
			return
		}

		questions, err := app.Surveys.Questions(r.Context(), k, id)
		if err != nil {
			httpx.WriteStoreError(w, "db.get_"+k.Name+".questions", err)
			return
		}

		nested := []question{}
		for _, q := range questions {
			options, err := app.Surveys.Options(r.Context(), k, q.ID)
			if err != nil {
				httpx.WriteStoreError(w, "db.get_"+k.Name+".options", err)
				return
			}
			nested = append(nested, question{Question: q, Options: options})
		}

		render.JSON(w, r, map[string]any{
			k.Name:      owner,
			"preguntas": nested,
		})
	}
}

func UpdateOwner(app app.App, k survey.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r, "id")
		if !ok {
			return
		}

		sv := survey.Survey{}
		if err := render.DecodeJSON(r.Body, &sv); err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		sv.ID = id
		// the slug is immutable; only the editable fields get validated
		if err := validate.StructPartial(sv, "Title"); err != nil {
			httpx.LogStatusMsg(w, http.StatusUnprocessableEntity, log.DebugLevel, "request.validate", "%s", err)
			return
		}

		if err := app.Surveys.Update(r.Context(), k, sv); err != nil {
			httpx.WriteStoreError(w, "db.update_"+k.Name, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteOwner(app app.App, k survey.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r, "id")
		if !ok {
			return
		}

		if err := app.Surveys.Delete(r.Context(), k, id); err != nil {
			httpx.WriteStoreError(w, "db.delete_"+k.Name, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func AddQuestion(app app.App, k survey.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r, "id")
		if !ok {
			return
		}

		q := survey.Question{}
		if err := render.DecodeJSON(r.Body, &q); err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		q.OwnerID = id
		if err := validate.Struct(q); err != nil {
			httpx.LogStatusMsg(w, http.StatusUnprocessableEntity, log.DebugLevel, "request.validate", "%s", err)
			return
		}

		created, err := app.Surveys.AddQuestion(r.Context(), k, q)
		if err != nil {
			httpx.WriteStoreError(w, "db.insert_question", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, created)
	}
}

func DeleteQuestion(app app.App, k survey.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qid, ok := urlID(w, r, "qid")
		if !ok {
			return
		}

		if err := app.Surveys.DeleteQuestion(r.Context(), k, qid); err != nil {
			httpx.WriteStoreError(w, "db.delete_question", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func AddOption(app app.App, k survey.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qid, ok := urlID(w, r, "qid")
		if !ok {
			return
		}

		o := survey.Option{}
		if err := render.DecodeJSON(r.Body, &o); err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		o.QuestionID = qid
		if err := validate.Struct(o); err != nil {
			httpx.LogStatusMsg(w, http.StatusUnprocessableEntity, log.DebugLevel, "request.validate", "%s", err)
			return
		}

		created, err := app.Surveys.AddOption(r.Context(), k, o)
		if err != nil {
			httpx.WriteStoreError(w, "db.insert_option", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, created)
	}
}

func DeleteOption(app app.App, k survey.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		oid, ok := urlID(w, r, "oid")
		if !ok {
			return
		}

		if err := app.Surveys.DeleteOption(r.Context(), k, oid); err != nil {
			httpx.WriteStoreError(w, "db.delete_option", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

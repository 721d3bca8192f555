package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmorenog/bancalocal/app"
	"github.com/dmorenog/bancalocal/survey"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Mount("/api", apiRouter(app))
	root.Mount("/", serveConsoleFiles())

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	// CRUD banking entities
	api.Get("/entities", ListEntities(app))
	api.Route("/entities/{entity}", func(r chi.Router) {
		r.Get("/", ListEntity(app))
		r.Post("/", CreateEntity(app))
		r.Get("/{key}", GetEntity(app))
		r.Put("/{key}", UpdateEntity(app))
		r.Delete("/{key}", DeleteEntity(app))
	})

	api.Route("/surveys", kindRouter(app, survey.Surveys))
	api.Route("/quizzes", kindRouter(app, survey.Quizzes))

	// in-progress attempt workflow
	api.Route("/attempts", func(r chi.Router) {
		r.Post("/{kind:^(surveys|quizzes)$}/{name}", StartAttempt(app))
		r.Get("/{id}", GetAttempt(app))
		r.Post("/{id}/answer", AnswerAttempt(app))
		r.Post("/{id}/next", MoveAttempt(app, true))
		r.Post("/{id}/prev", MoveAttempt(app, false))
		r.Post("/{id}/submit", SubmitAttempt(app))
		r.Delete("/{id}", AbandonAttempt(app))
	})

	// role assignment maps and the raw draft slot
	api.Get("/roles/current", GetCurrentRole(app))
	api.Put("/roles/current", PutCurrentRole(app))
	api.Get("/roles/{role}/{kind:^(surveys|quizzes)$}", GetRoleAssignments(app))
	api.Put("/roles/{role}/{kind:^(surveys|quizzes)$}", PutRoleAssignments(app))

	api.Get("/drafts", ListDrafts(app))
	api.Get("/drafts/{key}", GetDraft(app))
	api.Put("/drafts/{key}", PutDraft(app))
	api.Delete("/drafts/{key}", DeleteDraft(app))

	return api
}

// kindRouter wires the survey/quiz CRUD surface; both variants share the
// same handlers parameterized by kind.
func kindRouter(app app.App, k survey.Kind) func(chi.Router) {
	return func(r chi.Router) {
		r.Post("/", CreateOwner(app, k))
		r.Get("/", ListOwners(app, k))
		r.Get(`/{id:^\d+$}`, GetOwner(app, k))
		r.Put(`/{id:^\d+$}`, UpdateOwner(app, k))
		r.Delete(`/{id:^\d+$}`, DeleteOwner(app, k))

		r.Post(`/{id:^\d+$}/questions`, AddQuestion(app, k))
		r.Delete(`/{id:^\d+$}/questions/{qid:^\d+$}`, DeleteQuestion(app, k))
		r.Post(`/{id:^\d+$}/questions/{qid:^\d+$}/options`, AddOption(app, k))
		r.Delete(`/{id:^\d+$}/questions/{qid:^\d+$}/options/{oid:^\d+$}`, DeleteOption(app, k))

		r.Post("/{name}/responses", SubmitResponse(app, k))
		r.Get("/{name}/responses", ListResponses(app, k))
		if k.Graded {
			r.Post("/responses/{rid}/confirm", ConfirmGrade(app, k))
		}
	}
}

func serveConsoleFiles() http.Handler {
	return http.FileServer(http.Dir("public"))
}

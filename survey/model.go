// Package survey implements the survey and quiz module: owner/question/
// option collections, response submission with grading, the grade
// confirmation step, and the in-progress attempt workflow.
package survey

import (
	"encoding/json"
	"time"

	"github.com/dmorenog/bancalocal/store"
)

// Kind selects the survey or quiz variant of the module. Both share the
// same record shapes but live in separate collections; only quizzes are
// graded and timed.
type Kind struct {
	Name       string
	Owners     string
	OwnerKey   string
	OwnerField string
	Questions  string
	Options    string
	Responses  string
	Graded     bool
}

var (
	Surveys = Kind{
		Name:       "encuesta",
		Owners:     "ENCUESTAS",
		OwnerKey:   "id_encuesta",
		OwnerField: "nombre_encuesta",
		Questions:  "PREGUNTAS_ENCUESTA",
		Options:    "OPCIONES_PREGUNTA",
		Responses:  "RESPUESTAS_ENCUESTA",
	}
	Quizzes = Kind{
		Name:       "cuestionario",
		Owners:     "CUESTIONARIOS",
		OwnerKey:   "id_cuestionario",
		OwnerField: "nombre_cuestionario",
		Questions:  "PREGUNTAS_CUESTIONARIO",
		Options:    "OPCIONES_CUESTIONARIO",
		Responses:  "RESPUESTAS_CUESTIONARIO",
		Graded:     true,
	}
)

// Collections lists every store collection the module needs, for schema
// assembly at startup.
func Collections() []store.Collection {
	cols := []store.Collection{}
	for _, k := range []Kind{Surveys, Quizzes} {
		cols = append(cols,
			store.Collection{Name: k.Owners, KeyField: k.OwnerKey, AutoKey: true},
			store.Collection{Name: k.Questions, KeyField: "id_pregunta", AutoKey: true},
			store.Collection{Name: k.Options, KeyField: "id_opcion", AutoKey: true},
			store.Collection{Name: k.Responses, KeyField: "id", AutoKey: false},
		)
	}
	return cols
}

const (
	TypeMultipleChoice = "multiple_choice"
	TypeTrueFalse      = "true_false"
	TypeShortAnswer    = "short_answer"
)

type Survey struct {
	ID             int64  `json:"id,omitempty"`
	Name           string `json:"nombre" validate:"required"`
	Title          string `json:"titulo" validate:"required"`
	Description    string `json:"descripcion"`
	Representation string `json:"representacion,omitempty"`
	TimeLimitMin   int    `json:"tiempo_limite,omitempty"`
}

type Question struct {
	ID      int64  `json:"id_pregunta,omitempty"`
	OwnerID int64  `json:"-"`
	Text    string `json:"texto" validate:"required"`
	Type    string `json:"tipo" validate:"oneof=multiple_choice true_false short_answer"`
}

type Option struct {
	ID         int64  `json:"id_opcion,omitempty"`
	QuestionID int64  `json:"id_pregunta"`
	Text       string `json:"texto" validate:"required"`
	Value      string `json:"valor" validate:"required"`
	Correct    bool   `json:"es_correcta,omitempty"`
}

// Results is the derived grading sub-record of a quiz response.
// GradeConfirmed starts false and only ConfirmGrade flips it, one way.
type Results struct {
	TotalQuestions int  `json:"total_preguntas"`
	TotalCorrect   int  `json:"total_correctas"`
	Percentage     int  `json:"porcentaje"`
	GradeConfirmed bool `json:"calificacion_confirmada"`
}

type Response struct {
	ID          string         `json:"id"`
	OwnerName   string         `json:"-"`
	Submitter   string         `json:"usuario"`
	SubmittedAt time.Time      `json:"fecha_envio"`
	Answers     map[string]any `json:"respuestas"`
	Results     *Results       `json:"resultados,omitempty"`
}

// Record conversion goes through JSON so the stored shape matches the
// declared collection fields; kind-dependent fields (the owner key on
// questions, the owner name on responses) are spliced in afterwards.

func toRecord(v any, splice map[string]any) (store.Record, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	rec := store.Record{}
	if err = json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	for field, value := range splice {
		rec[field] = value
	}
	return rec, nil
}

func fromRecord(rec store.Record, out any) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func recInt(rec store.Record, field string) int64 {
	switch n := rec[field].(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	}
	return 0
}

func recString(rec store.Record, field string) string {
	s, _ := rec[field].(string)
	return s
}

package survey

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/dmorenog/bancalocal/store"
)

// Service runs both module variants over one injected store gateway.
type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

func (s *Service) Create(ctx context.Context, k Kind, sv Survey) (Survey, error) {
	existing, err := s.store.Query(ctx, k.Owners, map[string]any{"nombre": sv.Name})
	if err != nil {
		return Survey{}, err
	}
	if len(existing) > 0 {
		return Survey{}, fmt.Errorf("%w: %s %q already exists", store.ErrDuplicateKey, k.Name, sv.Name)
	}

	rec, err := toRecord(sv, nil)
	if err != nil {
		return Survey{}, err
	}
	delete(rec, "id")
	key, err := s.store.Create(ctx, k.Owners, rec)
	if err != nil {
		return Survey{}, err
	}
	sv.ID = key.(int64)
	return sv, nil
}

func (s *Service) List(ctx context.Context, k Kind) ([]Survey, error) {
	recs, err := s.store.GetAll(ctx, k.Owners)
	if err != nil {
		return nil, err
	}
	return s.owners(k, recs)
}

func (s *Service) Get(ctx context.Context, k Kind, id int64) (Survey, error) {
	rec, err := s.store.Get(ctx, k.Owners, id)
	if err != nil {
		return Survey{}, err
	}
	return s.owner(k, rec)
}

func (s *Service) GetByName(ctx context.Context, k Kind, name string) (Survey, error) {
	recs, err := s.store.Query(ctx, k.Owners, map[string]any{"nombre": name})
	if err != nil {
		return Survey{}, err
	}
	if len(recs) == 0 {
		return Survey{}, fmt.Errorf("%w: %s %q", store.ErrNotFound, k.Name, name)
	}
	return s.owner(k, recs[0])
}

// Update replaces title, description and the representation hint. The slug
// and the key stay what they were.
func (s *Service) Update(ctx context.Context, k Kind, sv Survey) error {
	current, err := s.Get(ctx, k, sv.ID)
	if err != nil {
		return err
	}
	sv.Name = current.Name

	rec, err := toRecord(sv, map[string]any{k.OwnerKey: sv.ID})
	if err != nil {
		return err
	}
	delete(rec, "id")
	_, err = s.store.Update(ctx, k.Owners, rec)
	return err
}

// Delete cascades: options, then questions, then responses, then the owner
// itself, each step awaited in order. The sequence is not atomic; a
// mid-sequence failure reports with the prior deletes left in effect.
func (s *Service) Delete(ctx context.Context, k Kind, id int64) error {
	owner, err := s.Get(ctx, k, id)
	if err != nil {
		return err
	}

	questions, err := s.Questions(ctx, k, id)
	if err != nil {
		return err
	}
	for _, q := range questions {
		if err = s.DeleteQuestion(ctx, k, q.ID); err != nil {
			return err
		}
	}

	responses, err := s.store.Query(ctx, k.Responses, map[string]any{k.OwnerField: owner.Name})
	if err != nil {
		return err
	}
	for _, rec := range responses {
		if err = s.store.Delete(ctx, k.Responses, recString(rec, "id")); err != nil {
			return err
		}
	}

	return s.store.Delete(ctx, k.Owners, id)
}

func (s *Service) AddQuestion(ctx context.Context, k Kind, q Question) (Question, error) {
	if _, err := s.Get(ctx, k, q.OwnerID); err != nil {
		return Question{}, err
	}

	rec, err := toRecord(q, map[string]any{k.OwnerKey: q.OwnerID})
	if err != nil {
		return Question{}, err
	}
	key, err := s.store.Create(ctx, k.Questions, rec)
	if err != nil {
		return Question{}, err
	}
	q.ID = key.(int64)
	return q, nil
}

func (s *Service) Questions(ctx context.Context, k Kind, ownerID int64) ([]Question, error) {
	recs, err := s.store.Query(ctx, k.Questions, map[string]any{k.OwnerKey: ownerID})
	if err != nil {
		return nil, err
	}

	questions := []Question{}
	for _, rec := range recs {
		var q Question
		if err = fromRecord(rec, &q); err != nil {
			return nil, err
		}
		q.OwnerID = recInt(rec, k.OwnerKey)
		questions = append(questions, q)
	}
	return questions, nil
}

// DeleteQuestion removes the question's options first, then the question.
func (s *Service) DeleteQuestion(ctx context.Context, k Kind, id int64) error {
	options, err := s.Options(ctx, k, id)
	if err != nil {
		return err
	}
	for _, o := range options {
		if err = s.store.Delete(ctx, k.Options, o.ID); err != nil {
			return err
		}
	}
	return s.store.Delete(ctx, k.Questions, id)
}

func (s *Service) AddOption(ctx context.Context, k Kind, o Option) (Option, error) {
	if _, err := s.store.Get(ctx, k.Questions, o.QuestionID); err != nil {
		return Option{}, err
	}

	rec, err := toRecord(o, nil)
	if err != nil {
		return Option{}, err
	}
	key, err := s.store.Create(ctx, k.Options, rec)
	if err != nil {
		return Option{}, err
	}
	o.ID = key.(int64)
	return o, nil
}

func (s *Service) Options(ctx context.Context, k Kind, questionID int64) ([]Option, error) {
	recs, err := s.store.Query(ctx, k.Options, map[string]any{"id_pregunta": questionID})
	if err != nil {
		return nil, err
	}

	options := []Option{}
	for _, rec := range recs {
		var o Option
		if err = fromRecord(rec, &o); err != nil {
			return nil, err
		}
		options = append(options, o)
	}
	return options, nil
}

func (s *Service) DeleteOption(ctx context.Context, k Kind, id int64) error {
	return s.store.Delete(ctx, k.Options, id)
}

// Submit records a response. Quiz answers are graded against each
// question's recorded correct option; GradeConfirmed always starts false.
func (s *Service) Submit(ctx context.Context, k Kind, name, submitter string, answers map[string]any) (Response, error) {
	owner, err := s.GetByName(ctx, k, name)
	if err != nil {
		return Response{}, err
	}

	resp := Response{
		ID:          uuid.NewString(),
		OwnerName:   owner.Name,
		Submitter:   submitter,
		SubmittedAt: time.Now().UTC(),
		Answers:     answers,
	}
	if resp.Answers == nil {
		resp.Answers = map[string]any{}
	}

	if k.Graded {
		questions, err := s.Questions(ctx, k, owner.ID)
		if err != nil {
			return Response{}, err
		}
		options := map[int64][]Option{}
		for _, q := range questions {
			if options[q.ID], err = s.Options(ctx, k, q.ID); err != nil {
				return Response{}, err
			}
		}
		results := Grade(questions, options, resp.Answers)
		resp.Results = &results
	}

	rec, err := toRecord(resp, map[string]any{k.OwnerField: resp.OwnerName})
	if err != nil {
		return Response{}, err
	}
	if _, err = s.store.Create(ctx, k.Responses, rec); err != nil {
		return Response{}, err
	}
	return resp, nil
}

func (s *Service) Responses(ctx context.Context, k Kind, name string) ([]Response, error) {
	recs, err := s.store.Query(ctx, k.Responses, map[string]any{k.OwnerField: name})
	if err != nil {
		return nil, err
	}

	responses := []Response{}
	for _, rec := range recs {
		resp, err := s.response(k, rec)
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

func (s *Service) GetResponse(ctx context.Context, k Kind, id string) (Response, error) {
	rec, err := s.store.Get(ctx, k.Responses, id)
	if err != nil {
		return Response{}, err
	}
	return s.response(k, rec)
}

// ConfirmGrade is the only mutation path for GradeConfirmed: one way,
// false to true, idempotent, no undo.
func (s *Service) ConfirmGrade(ctx context.Context, k Kind, id string) (Response, error) {
	if !k.Graded {
		return Response{}, fmt.Errorf("%w: %s responses carry no grade", store.ErrValidationFailed, k.Name)
	}

	resp, err := s.GetResponse(ctx, k, id)
	if err != nil {
		return Response{}, err
	}
	if resp.Results == nil {
		return Response{}, fmt.Errorf("%w: response %s has no results", store.ErrValidationFailed, id)
	}
	if resp.Results.GradeConfirmed {
		return resp, nil
	}

	resp.Results.GradeConfirmed = true
	rec, err := toRecord(resp, map[string]any{k.OwnerField: resp.OwnerName})
	if err != nil {
		return Response{}, err
	}
	if _, err = s.store.Update(ctx, k.Responses, rec); err != nil {
		return Response{}, err
	}
	return resp, nil
}

func (s *Service) owner(k Kind, rec store.Record) (Survey, error) {
	var sv Survey
	if err := fromRecord(rec, &sv); err != nil {
		return Survey{}, err
	}
	sv.ID = recInt(rec, k.OwnerKey)
	return sv, nil
}

func (s *Service) owners(k Kind, recs []store.Record) ([]Survey, error) {
	surveys := []Survey{}
	for _, rec := range recs {
		sv, err := s.owner(k, rec)
		if err != nil {
			return nil, err
		}
		surveys = append(surveys, sv)
	}
	return surveys, nil
}

func (s *Service) response(k Kind, rec store.Record) (Response, error) {
	var resp Response
	if err := fromRecord(rec, &resp); err != nil {
		return Response{}, err
	}
	resp.OwnerName = recString(rec, k.OwnerField)
	return resp, nil
}

// AnswerKey is the respuestas map key for a question.
func AnswerKey(questionID int64) string {
	return strconv.FormatInt(questionID, 10)
}

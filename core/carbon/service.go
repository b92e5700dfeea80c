package carbon

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/caplc/backend/core"
)

var (
	ErrModelNotFound   = errors.New("carbon model not found")
	ErrAlreadyAnswered = errors.New("participant has already answered the carbon form")
)

type (
	Repository interface {
		CreateModel(ctx context.Context, m Model) (Model, error)
		// GetLatestModel returns the most recently created Model or ErrModelNotFound.
		GetLatestModel(ctx context.Context) (Model, error)
		GetModel(ctx context.Context, id string) (Model, error)

		InsertPersonas(ctx context.Context, drop bool, personas ...Persona) error
		QueryPersonas(ctx context.Context, ids ...string) ([]Persona, error)

		// CreateFormAnswers returns ErrAlreadyAnswered if the participant already answered for the workshop.
		CreateFormAnswers(ctx context.Context, fa FormAnswers) (FormAnswers, error)
		QueryFormAnswers(ctx context.Context, workshopID string) ([]FormAnswers, error)
		// DeleteFormAnswers deletes the answers of participantID (of every participant if empty) for workshopID.
		DeleteFormAnswers(ctx context.Context, workshopID, participantID string) error
	}

	Service interface {
		LatestModel(ctx context.Context) (Model, error)
		GetModel(ctx context.Context, id string) (Model, error)
		ImportModels(ctx context.Context, models ...Model) error
		ImportPersonas(ctx context.Context, drop bool, personas ...Persona) error
		QueryPersonas(ctx context.Context, ids ...string) ([]Persona, error)

		SaveFormAnswers(ctx context.Context, fa FormAnswers) (FormAnswers, error)
		QueryFormAnswers(ctx context.Context, workshopID string) ([]FormAnswers, error)
		DeleteFormAnswers(ctx context.Context, workshopID, participantID string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) LatestModel(ctx context.Context) (Model, error) {
	return svc.repo.GetLatestModel(ctx)
}

func (svc *service) GetModel(ctx context.Context, id string) (Model, error) {
	return svc.repo.GetModel(ctx, id)
}

// ImportModels validates then stores models in order; the last one becomes the latest.
func (svc *service) ImportModels(ctx context.Context, models ...Model) error {
	for i, m := range models {
		if err := ValidateModel(m); err != nil {
			return errors.Wrapf(err, "model %d", i)
		}
	}
	// strictly increasing timestamps, so the last model of the batch becomes the latest one
	now := core.Now()
	for i, m := range models {
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now.Add(time.Duration(i) * time.Millisecond)
		}
		if _, err := svc.repo.CreateModel(ctx, m); err != nil {
			return errors.Wrap(err, "creating model")
		}
	}
	return nil
}

// ValidateModel checks that every footprint leaf names a variable that has a formula or a global value.
func ValidateModel(m Model) error {
	var check func(node interface{}, path string) error
	check = func(node interface{}, path string) error {
		if sub, ok := asMap(node); ok {
			for k, v := range sub {
				if err := check(v, path+"."+k); err != nil {
					return err
				}
			}
			return nil
		}
		field := "footprintStructure" + path
		name, ok := node.(string)
		if !ok {
			msg := "leaves must be variable names"
			return core.NewValidationError(fmt.Errorf("%s: %s", field, msg), core.FieldError{Field: field, Error: msg})
		}
		if _, ok := m.VariableFormulas[name]; ok {
			return nil
		}
		if _, ok := m.GlobalCarbonVariables[name]; ok {
			return nil
		}
		msg := fmt.Sprintf("variable %q has no formula", name)
		return core.NewValidationError(fmt.Errorf("%s: %s", field, msg), core.FieldError{Field: field, Error: msg})
	}
	return check(m.FootprintStructure, "")
}

func (svc *service) ImportPersonas(ctx context.Context, drop bool, personas ...Persona) error {
	return svc.repo.InsertPersonas(ctx, drop, personas...)
}

func (svc *service) QueryPersonas(ctx context.Context, ids ...string) ([]Persona, error) {
	if len(ids) == 0 {
		return []Persona{}, nil
	}
	return svc.repo.QueryPersonas(ctx, ids...)
}

func (svc *service) SaveFormAnswers(ctx context.Context, fa FormAnswers) (FormAnswers, error) {
	fa.CreatedAt = core.Now()
	return svc.repo.CreateFormAnswers(ctx, fa)
}

func (svc *service) QueryFormAnswers(ctx context.Context, workshopID string) ([]FormAnswers, error) {
	return svc.repo.QueryFormAnswers(ctx, workshopID)
}

func (svc *service) DeleteFormAnswers(ctx context.Context, workshopID, participantID string) error {
	return svc.repo.DeleteFormAnswers(ctx, workshopID, participantID)
}

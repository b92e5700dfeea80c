package inmemdb

import (
	"context"
	"sort"

	"github.com/caplc/backend/core/carbon"
)

type carbonRepository struct {
	models      *modelTable
	personas    *personaTable
	formAnswers *formAnswersTable
}

var _ carbon.Repository = (*carbonRepository)(nil)

func NewCarbonRepository(db *DB) carbon.Repository {
	return &carbonRepository{models: db.model, personas: db.persona, formAnswers: db.formAnswers}
}

func (repo *carbonRepository) CreateModel(_ context.Context, m carbon.Model) (carbon.Model, error) {
	repo.models.Lock()
	defer repo.models.Unlock()

	if m.ID == "" {
		m.ID = newID()
	}
	m.PersonaIDs = copyStrings(m.PersonaIDs)
	repo.models.table = append(repo.models.table, m)
	return m, nil
}

func (repo *carbonRepository) GetLatestModel(context.Context) (carbon.Model, error) {
	repo.models.RLock()
	defer repo.models.RUnlock()

	var (
		latest carbon.Model
		found  bool
	)
	for _, m := range repo.models.table {
		if !found || !m.CreatedAt.Before(latest.CreatedAt) {
			latest, found = m, true
		}
	}
	if !found {
		return carbon.Model{}, carbon.ErrModelNotFound
	}
	return latest, nil
}

func (repo *carbonRepository) GetModel(_ context.Context, id string) (carbon.Model, error) {
	repo.models.RLock()
	defer repo.models.RUnlock()

	for _, m := range repo.models.table {
		if m.ID == id {
			return m, nil
		}
	}
	return carbon.Model{}, carbon.ErrModelNotFound
}

func (repo *carbonRepository) InsertPersonas(_ context.Context, drop bool, personas ...carbon.Persona) error {
	repo.personas.Lock()
	defer repo.personas.Unlock()

	if drop {
		repo.personas.table = make(map[string]*carbon.Persona)
	}
	for _, p := range personas {
		if p.ID == "" {
			p.ID = newID()
		}
		cp := p
		repo.personas.table[cp.ID] = &cp
	}
	return nil
}

func (repo *carbonRepository) QueryPersonas(_ context.Context, ids ...string) ([]carbon.Persona, error) {
	repo.personas.RLock()
	defer repo.personas.RUnlock()

	personas := make([]carbon.Persona, 0, len(ids))
	for _, id := range ids {
		if p, ok := repo.personas.table[id]; ok {
			personas = append(personas, *p)
		}
	}
	return personas, nil
}

func (repo *carbonRepository) CreateFormAnswers(_ context.Context, fa carbon.FormAnswers) (carbon.FormAnswers, error) {
	repo.formAnswers.Lock()
	defer repo.formAnswers.Unlock()

	for _, existing := range repo.formAnswers.table {
		if existing.WorkshopID == fa.WorkshopID && existing.ParticipantID == fa.ParticipantID {
			return carbon.FormAnswers{}, carbon.ErrAlreadyAnswered
		}
	}
	if fa.ID == "" {
		fa.ID = newID()
	}
	repo.formAnswers.table[fa.ID] = &fa
	return fa, nil
}

func (repo *carbonRepository) QueryFormAnswers(_ context.Context, workshopID string) ([]carbon.FormAnswers, error) {
	repo.formAnswers.RLock()
	defer repo.formAnswers.RUnlock()

	answers := make([]carbon.FormAnswers, 0)
	for _, fa := range repo.formAnswers.table {
		if fa.WorkshopID == workshopID {
			answers = append(answers, *fa)
		}
	}
	sort.Slice(answers, func(i, j int) bool { return answers[i].CreatedAt.Before(answers[j].CreatedAt) })
	return answers, nil
}

func (repo *carbonRepository) DeleteFormAnswers(_ context.Context, workshopID, participantID string) error {
	repo.formAnswers.Lock()
	defer repo.formAnswers.Unlock()

	for id, fa := range repo.formAnswers.table {
		if fa.WorkshopID == workshopID && (participantID == "" || fa.ParticipantID == participantID) {
			delete(repo.formAnswers.table, id)
		}
	}
	return nil
}

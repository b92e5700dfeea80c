package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/caplc/backend/core"
	"github.com/caplc/backend/core/workshop"
)

type workshopRepository struct {
	db *workshopTable
}

var _ workshop.Repository = (*workshopRepository)(nil)

func NewWorkshopRepository(db *DB) workshop.Repository {
	return &workshopRepository{db: db.workshop}
}

func cloneWorkshop(w workshop.Workshop) workshop.Workshop {
	participants := make([]workshop.Participant, len(w.Participants))
	copy(participants, w.Participants)
	w.Participants = participants

	rounds := make([]workshop.Round, len(w.Rounds))
	copy(rounds, w.Rounds)
	w.Rounds = rounds
	return w
}

func (repo *workshopRepository) CreateWorkshop(_ context.Context, w workshop.Workshop) (workshop.Workshop, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if w.ID == "" {
		w.ID = newID()
	}
	w = cloneWorkshop(w)
	repo.db.table[w.ID] = &w
	return cloneWorkshop(w), nil
}

func (repo *workshopRepository) GetWorkshop(_ context.Context, id string) (workshop.Workshop, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if w, ok := repo.db.table[id]; ok {
		return cloneWorkshop(*w), nil
	}
	return workshop.Workshop{}, workshop.ErrNotFound
}

func (repo *workshopRepository) QueryWorkshops(
	_ context.Context,
	filter workshop.QueryFilter,
	orderings ...core.DBOrdering,
) ([]workshop.Workshop, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	workshops := make([]workshop.Workshop, 0, len(repo.db.table))
	for _, w := range repo.db.table {
		if filter.CoachID != "" && w.CoachID != filter.CoachID {
			continue
		}
		workshops = append(workshops, cloneWorkshop(*w))
	}

	sort.SliceStable(workshops, func(i, j int) bool {
		a, b := workshops[i], workshops[j]
		for _, ord := range orderings {
			var c int
			switch ord.Field {
			case "name":
				c = strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
			case "city":
				c = strings.Compare(a.City, b.City)
			case "startAt":
				c = compareTimes(a.StartAt, b.StartAt)
			case "createdAt":
				c = compareTimes(a.CreatedAt, b.CreatedAt)
			}
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return workshops, nil
}

func (repo *workshopRepository) UpdateWorkshop(_ context.Context, w workshop.Workshop) (workshop.Workshop, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[w.ID]; !ok {
		return workshop.Workshop{}, workshop.ErrNotFound
	}
	w = cloneWorkshop(w)
	repo.db.table[w.ID] = &w
	return cloneWorkshop(w), nil
}

func (repo *workshopRepository) DeleteWorkshop(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return workshop.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}

package inmemdb

import (
	"context"
	"sort"

	"github.com/caplc/backend/core/actioncard"
)

type actionCardRepository struct {
	cards   *cardTable
	batches *batchTable
}

var _ actioncard.Repository = (*actionCardRepository)(nil)

func NewActionCardRepository(db *DB) actioncard.Repository {
	return &actionCardRepository{cards: db.card, batches: db.batch}
}

func cloneCard(c actioncard.Card) actioncard.Card {
	ops := make([]actioncard.Operation, len(c.Operations))
	copy(ops, c.Operations)
	c.Operations = ops
	return c
}

func cloneBatch(b actioncard.Batch) actioncard.Batch {
	b.ActionCardIDs = copyStrings(b.ActionCardIDs)
	if b.ActionCardIDs == nil {
		b.ActionCardIDs = []string{}
	}
	return b
}

func (repo *actionCardRepository) QueryCards(context.Context) ([]actioncard.Card, error) {
	repo.cards.RLock()
	defer repo.cards.RUnlock()

	cards := make([]actioncard.Card, 0, len(repo.cards.table))
	for _, c := range repo.cards.table {
		cards = append(cards, cloneCard(*c))
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].Number < cards[j].Number })
	return cards, nil
}

func (repo *actionCardRepository) InsertCards(_ context.Context, drop bool, cards ...actioncard.Card) error {
	repo.cards.Lock()
	defer repo.cards.Unlock()

	if drop {
		repo.cards.table = make(map[string]*actioncard.Card)
	}
	for _, c := range cards {
		if c.ID == "" {
			c.ID = newID()
		}
		cp := cloneCard(c)
		repo.cards.table[cp.ID] = &cp
	}
	return nil
}

func (repo *actionCardRepository) QueryBatches(_ context.Context, filter actioncard.BatchFilter) ([]actioncard.Batch, error) {
	repo.batches.RLock()
	defer repo.batches.RUnlock()

	batches := make([]actioncard.Batch, 0)
	for _, id := range repo.batches.order {
		b := repo.batches.table[id]
		switch {
		case filter.DefaultOnly && !b.IsDefault():
			continue
		case filter.CoachID != "" && b.CoachID != filter.CoachID:
			continue
		}
		batches = append(batches, cloneBatch(*b))
	}
	return batches, nil
}

func (repo *actionCardRepository) insertBatches(batches []actioncard.Batch) {
	for _, b := range batches {
		if b.ID == "" {
			b.ID = newID()
		}
		cp := cloneBatch(b)
		if _, ok := repo.batches.table[cp.ID]; !ok {
			repo.batches.order = append(repo.batches.order, cp.ID)
		}
		repo.batches.table[cp.ID] = &cp
	}
}

func (repo *actionCardRepository) deleteBatches(keep func(actioncard.Batch) bool) {
	order := make([]string, 0, len(repo.batches.order))
	for _, id := range repo.batches.order {
		if keep(*repo.batches.table[id]) {
			order = append(order, id)
		} else {
			delete(repo.batches.table, id)
		}
	}
	repo.batches.order = order
}

func (repo *actionCardRepository) InsertBatches(_ context.Context, drop bool, batches ...actioncard.Batch) error {
	repo.batches.Lock()
	defer repo.batches.Unlock()

	if drop {
		repo.batches.table = make(map[string]*actioncard.Batch)
		repo.batches.order = nil
	}
	repo.insertBatches(batches)
	return nil
}

func (repo *actionCardRepository) ReplaceCoachBatches(_ context.Context, coachID string, batches []actioncard.Batch) error {
	repo.batches.Lock()
	defer repo.batches.Unlock()

	repo.deleteBatches(func(b actioncard.Batch) bool { return b.CoachID != coachID })
	repo.insertBatches(batches)
	return nil
}

func (repo *actionCardRepository) DeleteCoachBatches(_ context.Context, coachID string) error {
	repo.batches.Lock()
	defer repo.batches.Unlock()

	repo.deleteBatches(func(b actioncard.Batch) bool { return b.CoachID != coachID })
	return nil
}

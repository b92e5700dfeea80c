package actioncard

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/caplc/backend/core"
)

type (
	Repository interface {
		// QueryCards returns the whole catalog sorted by card number.
		QueryCards(ctx context.Context) ([]Card, error)
		// InsertCards inserts cards, dropping the catalog first if drop is set.
		InsertCards(ctx context.Context, drop bool, cards ...Card) error
		QueryBatches(ctx context.Context, filter BatchFilter) ([]Batch, error)
		// InsertBatches inserts batches, dropping all batches first if drop is set.
		InsertBatches(ctx context.Context, drop bool, batches ...Batch) error
		// ReplaceCoachBatches deletes the batches of coachID and inserts batches instead.
		ReplaceCoachBatches(ctx context.Context, coachID string, batches []Batch) error
		DeleteCoachBatches(ctx context.Context, coachID string) error
	}

	Service interface {
		QueryCards(ctx context.Context) ([]Card, error)
		ImportCards(ctx context.Context, drop bool, cards ...Card) error
		QueryBatches(ctx context.Context, coachID string) ([]Batch, error)
		ImportBatches(ctx context.Context, drop bool, batches ...Batch) error
		ReplaceCoachBatches(ctx context.Context, coachID string, batches []NewBatch) ([]Batch, error)
		CopyDefaultBatches(ctx context.Context, coachID string) error
		DeleteCoachBatches(ctx context.Context, coachID string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) QueryCards(ctx context.Context) ([]Card, error) {
	return svc.repo.QueryCards(ctx)
}

func (svc *service) ImportCards(ctx context.Context, drop bool, cards ...Card) error {
	for i, card := range cards {
		if !core.StringInSlice(card.Type, Types) {
			return errors.Errorf("card %d (%s): invalid type %q", card.Number, card.Name, card.Type)
		}
		if cards[i].Operations == nil {
			cards[i].Operations = []Operation{}
		}
	}
	return svc.repo.InsertCards(ctx, drop, cards...)
}

func (svc *service) QueryBatches(ctx context.Context, coachID string) ([]Batch, error) {
	return svc.repo.QueryBatches(ctx, BatchFilter{CoachID: coachID})
}

func (svc *service) ImportBatches(ctx context.Context, drop bool, batches ...Batch) error {
	for _, b := range batches {
		if !core.StringInSlice(b.Type, Types) {
			return errors.Errorf("batch %s: invalid type %q", b.Name, b.Type)
		}
	}
	return svc.repo.InsertBatches(ctx, drop, batches...)
}

// ReplaceCoachBatches validates batches against the catalog and, if valid, makes them the coach's only batches.
func (svc *service) ReplaceCoachBatches(ctx context.Context, coachID string, batches []NewBatch) ([]Batch, error) {
	cards, err := svc.repo.QueryCards(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying cards")
	}
	if err = checkBatches(cards, batches); err != nil {
		return nil, err
	}

	newBatches := make([]Batch, 0, len(batches))
	for _, nb := range batches {
		newBatches = append(newBatches, Batch{
			Name:          nb.Name,
			Type:          nb.Type,
			ActionCardIDs: nb.ActionCardIDs,
			CoachID:       coachID,
		})
	}
	if err = svc.repo.ReplaceCoachBatches(ctx, coachID, newBatches); err != nil {
		return nil, errors.Wrap(err, "replacing batches")
	}
	return svc.QueryBatches(ctx, coachID)
}

// checkBatches ensures that:
// - every card exists
// - cards within a batch share the batch type
// - every card of the catalog is in a batch
func checkBatches(cards []Card, batches []NewBatch) error {
	byID := make(map[string]Card, len(cards))
	for _, c := range cards {
		byID[c.ID] = c
	}

	seen := make(map[string]bool, len(cards))
	for _, b := range batches {
		batchType := b.Type
		for _, id := range b.ActionCardIDs {
			card, ok := byID[id]
			if !ok {
				return core.NewInvalidDataError(fmt.Sprintf("actionCardId %s does not exist. (%s)", id, b.Name))
			}
			if card.Type != batchType {
				return core.NewInvalidDataError(
					fmt.Sprintf("Action cards within the same batch must be of the same type. (%s)", b.Name),
				)
			}
			seen[id] = true
		}
	}

	var missing []Card
	for _, c := range cards {
		if !seen[c.ID] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		sort.Slice(missing, func(i, j int) bool { return missing[i].Number < missing[j].Number })
		ids := make([]string, 0, len(missing))
		for _, c := range missing {
			ids = append(ids, c.ID)
		}
		return core.NewInvalidDataError("All actions cards need to be present. Missing " + strings.Join(ids, ", "))
	}
	return nil
}

// ValidateBatches validates every submitted batch.
func ValidateBatches(validate *validator.Validate, batches []NewBatch) error {
	for i := range batches {
		batches[i].Name = core.CleanString(batches[i].Name)
		batches[i].Type = core.CleanString(batches[i].Type, true /* lower */)
		if err := validate.Struct(&batches[i]); err != nil {
			return err
		}
	}
	return nil
}

// CopyDefaultBatches gives coachID its own copy of every default batch.
func (svc *service) CopyDefaultBatches(ctx context.Context, coachID string) error {
	defaults, err := svc.repo.QueryBatches(ctx, BatchFilter{DefaultOnly: true})
	if err != nil {
		return errors.Wrap(err, "querying default batches")
	}
	if len(defaults) == 0 {
		return nil
	}

	copies := make([]Batch, 0, len(defaults))
	for _, b := range defaults {
		ids := make([]string, len(b.ActionCardIDs))
		copy(ids, b.ActionCardIDs)
		copies = append(copies, Batch{Name: b.Name, Type: b.Type, ActionCardIDs: ids, CoachID: coachID})
	}
	return svc.repo.ReplaceCoachBatches(ctx, coachID, copies)
}

func (svc *service) DeleteCoachBatches(ctx context.Context, coachID string) error {
	return svc.repo.DeleteCoachBatches(ctx, coachID)
}

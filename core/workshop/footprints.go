package workshop

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/caplc/backend/core"
	"github.com/caplc/backend/core/actioncard"
	"github.com/caplc/backend/core/carbon"
)

// ComputeRoundFootprints computes the footprint of every participant of the round of year with
// the workshop carbon model, then stores them in the round.
// Participant variables come from the round, or from the participant's carbon form answers.
func (svc *service) ComputeRoundFootprints(ctx context.Context, workshopID string, year int) (Round, error) {
	w, err := svc.Get(ctx, workshopID)
	if err != nil {
		return Round{}, err
	}
	idx := w.Round(year)
	if idx < 0 {
		return Round{}, core.ErrEntityNotFound
	}
	round := w.Rounds[idx]

	model, err := svc.carbon.GetModel(ctx, w.ModelID)
	if err != nil {
		if errors.Cause(err) == carbon.ErrModelNotFound {
			return Round{}, errNoModel
		}
		return Round{}, errors.Wrap(err, "getting model")
	}

	cards, err := svc.cards.QueryCards(ctx)
	if err != nil {
		return Round{}, errors.Wrap(err, "querying action cards")
	}
	cardsByID := make(map[string]actioncard.Card, len(cards))
	for _, c := range cards {
		cardsByID[c.ID] = c
	}

	answers, err := svc.carbon.QueryFormAnswers(ctx, w.ID)
	if err != nil {
		return Round{}, errors.Wrap(err, "querying form answers")
	}
	variables := make(map[string]map[string]interface{}, len(w.Participants))
	for _, fa := range answers {
		variables[fa.ParticipantID] = fa.Answers
	}
	for _, cv := range round.CarbonVariables {
		variables[cv.ParticipantID] = cv.Variables
	}

	var collectiveIDs []string
	if round.CollectiveChoices != nil {
		collectiveIDs = round.CollectiveChoices.ActionCardIDs
	}
	collectiveOps, err := operations(cardsByID, collectiveIDs)
	if err != nil {
		return Round{}, err
	}

	footprints := make([]ParticipantFootprint, 0, len(w.Participants))
	for _, p := range w.Participants {
		vars, ok := variables[p.UserID]
		if !ok {
			continue
		}
		var individualIDs []string
		for _, ic := range round.IndividualChoices {
			if ic.ParticipantID == p.UserID {
				individualIDs = append(individualIDs, ic.ActionCardIDs...)
			}
		}
		ops, err := operations(cardsByID, individualIDs)
		if err != nil {
			return Round{}, err
		}

		fp, _, err := model.Footprint(round.GlobalCarbonVariables, vars, append(ops, collectiveOps...))
		if err != nil {
			return Round{}, core.NewInvalidDataError(
				fmt.Sprintf("Cannot compute the footprint of participant %s : %v", p.UserID, err),
			)
		}
		footprints = append(footprints, ParticipantFootprint{ParticipantID: p.UserID, Footprint: fp})
	}

	w.Rounds[idx].CarbonFootprints = footprints
	w.UpdatedAt = core.Now()
	if w, err = svc.repo.UpdateWorkshop(ctx, w); err != nil {
		return Round{}, errors.Wrap(err, "updating workshop")
	}
	return w.Rounds[idx], nil
}

// operations returns the operations of the cards ids, in order.
func operations(cardsByID map[string]actioncard.Card, ids []string) ([]actioncard.Operation, error) {
	var ops []actioncard.Operation
	for _, id := range ids {
		card, ok := cardsByID[id]
		if !ok {
			return nil, core.NewInvalidDataError(fmt.Sprintf("actionCardId %s does not exist.", id))
		}
		ops = append(ops, card.Operations...)
	}
	return ops, nil
}

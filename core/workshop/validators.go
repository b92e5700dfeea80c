package workshop

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/caplc/backend/core"
)

func (nw *NewWorkshop) Validate(validate *validator.Validate) error {
	nw.clean()
	return validate.Struct(nw)
}

func (uw *UpdateWorkshop) Validate(validate *validator.Validate) error {
	uw.clean()
	return validate.Struct(uw)
}

func (np *NewParticipant) Validate(validate *validator.Validate) error {
	np.Email = core.CleanString(np.Email, true /* lower */)
	np.FirstName = core.CleanString(np.FirstName)
	np.LastName = core.CleanString(np.LastName)
	return validate.Struct(np)
}

// checkRounds ensures round years are unique and that rounds only reference enrolled participants.
// checkYears validates the year range of w once the update has been merged in.
func checkYears(w Workshop) error {
	if w.EndYear < w.StartYear {
		return core.NewInvalidDataError(
			fmt.Sprintf("End year must be greater than or equal to start year : %d < %d", w.EndYear, w.StartYear),
		)
	}
	return nil
}

func checkRounds(w Workshop, rounds []Round) error {
	years := make(map[int]bool, len(rounds))
	for _, r := range rounds {
		if years[r.Year] {
			return core.NewInvalidDataError(fmt.Sprintf("Round years must be unique : %d", r.Year))
		}
		years[r.Year] = true

		invalid := func(field, id string) error {
			return core.NewInvalidDataError(
				fmt.Sprintf("Invalid participant id in round %d's %s : %s", r.Year, field, id),
			)
		}
		for _, cv := range r.CarbonVariables {
			if !w.HasParticipant(cv.ParticipantID) {
				return invalid("carbonVariables", cv.ParticipantID)
			}
		}
		for _, cf := range r.CarbonFootprints {
			if !w.HasParticipant(cf.ParticipantID) {
				return invalid("carbonFootprints", cf.ParticipantID)
			}
		}
		for _, ic := range r.IndividualChoices {
			if !w.HasParticipant(ic.ParticipantID) {
				return invalid("individualChoices", ic.ParticipantID)
			}
		}
	}
	return nil
}

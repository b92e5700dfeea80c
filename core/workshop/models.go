package workshop

import (
	"time"

	"github.com/caplc/backend/core"
	"github.com/caplc/backend/core/actioncard"
	"github.com/caplc/backend/core/carbon"
)

// Participant statuses
const (
	StatusCreated  = "created"  // the user was created (or became a participant) when enrolled
	StatusExisting = "existing" // the user already was a participant
	StatusFormSent = "formsent" // the carbon form was sent
	StatusToCheck  = "tocheck"  // the carbon form was answered
	StatusReady    = "ready"
)

var Statuses = []string{StatusCreated, StatusExisting, StatusFormSent, StatusToCheck, StatusReady}

const (
	defaultStartYear     = 2020
	defaultEndYear       = 2050
	defaultYearIncrement = 5
)

type Participant struct {
	UserID string `json:"id" bson:"user"`
	Status string `json:"status" bson:"status"`
}

type (
	ParticipantVariables struct {
		ParticipantID string                 `json:"participantId" bson:"participantId" validate:"required"`
		Variables     map[string]interface{} `json:"variables" bson:"variables"`
	}

	ParticipantFootprint struct {
		ParticipantID string                 `json:"participantId" bson:"participantId" validate:"required"`
		Footprint     map[string]interface{} `json:"footprint" bson:"footprint"`
	}

	RoundConfig struct {
		ActionCardType     string   `json:"actionCardType" bson:"actionCardType" validate:"omitempty,oneof=individual collective"`
		TargetedYear       int      `json:"targetedYear" bson:"targetedYear"`
		Budget             float64  `json:"budget" bson:"budget" validate:"gte=0"`
		ActionCardBatchIDs []string `json:"actionCardBatchIds" bson:"actionCardBatchIds"`
	}

	IndividualChoices struct {
		ParticipantID string   `json:"participantId" bson:"participantId" validate:"required"`
		ActionCardIDs []string `json:"actionCardIds" bson:"actionCardIds"`
	}

	CollectiveChoices struct {
		ActionCardIDs []string `json:"actionCardIds" bson:"actionCardIds"`
	}

	// Round is one year of a workshop.
	Round struct {
		Year                  int                    `json:"year" bson:"year" validate:"required"`
		CarbonVariables       []ParticipantVariables `json:"carbonVariables" bson:"carbonVariables" validate:"dive"`
		CarbonFootprints      []ParticipantFootprint `json:"carbonFootprints" bson:"carbonFootprints" validate:"dive"`
		RoundConfig           *RoundConfig           `json:"roundConfig,omitempty" bson:"roundConfig,omitempty"`
		GlobalCarbonVariables map[string]interface{} `json:"globalCarbonVariables,omitempty" bson:"globalCarbonVariables,omitempty"`
		IndividualChoices     []IndividualChoices    `json:"individualChoices" bson:"individualChoices" validate:"dive"`
		CollectiveChoices     *CollectiveChoices     `json:"collectiveChoices,omitempty" bson:"collectiveChoices,omitempty"`
	}
)

type Workshop struct {
	ID            string        `json:"id" bson:"_id"`
	Name          string        `json:"name" bson:"name"`
	StartAt       time.Time     `json:"startAt" bson:"startAt"`
	CreatorID     string        `json:"creatorId" bson:"creatorId"`
	CoachID       string        `json:"coachId" bson:"coachId"`
	City          string        `json:"city" bson:"city"`
	Address       string        `json:"address" bson:"address"`
	EventURL      string        `json:"eventUrl" bson:"eventUrl"`
	ModelID       string        `json:"modelId" bson:"modelId"`
	StartYear     int           `json:"startYear" bson:"startYear"`
	EndYear       int           `json:"endYear" bson:"endYear"`
	YearIncrement int           `json:"yearIncrement" bson:"yearIncrement"`
	Participants  []Participant `json:"participants" bson:"participants"`
	Rounds        []Round       `json:"rounds" bson:"rounds"`
	CreatedAt     time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// Participant returns the enrolled participant with userID.
func (w *Workshop) Participant(userID string) (Participant, bool) {
	for _, p := range w.Participants {
		if p.UserID == userID {
			return p, true
		}
	}
	return Participant{}, false
}

func (w *Workshop) HasParticipant(userID string) bool {
	_, ok := w.Participant(userID)
	return ok
}

func (w *Workshop) SetParticipantStatus(userID, status string) {
	for i := range w.Participants {
		if w.Participants[i].UserID == userID {
			w.Participants[i].Status = status
			return
		}
	}
}

func (w *Workshop) RemoveParticipant(userID string) bool {
	for i, p := range w.Participants {
		if p.UserID == userID {
			w.Participants = append(w.Participants[:i], w.Participants[i+1:]...)
			return true
		}
	}
	return false
}

// Round returns the index of the round of year, -1 if there is none.
func (w *Workshop) Round(year int) int {
	for i, r := range w.Rounds {
		if r.Year == year {
			return i
		}
	}
	return -1
}

// NewWorkshop contains information needed to create a Workshop.
type NewWorkshop struct {
	Name     string    `json:"name" validate:"required,min=1,max=128"`
	StartAt  time.Time `json:"startAt" validate:"required"`
	CoachID  string    `json:"coachId" validate:"required"`
	City     string    `json:"city" validate:"required,max=128"`
	Address  string    `json:"address" validate:"max=512"`
	EventURL string    `json:"eventUrl" validate:"omitempty,max=1024,url"`
}

// UpdateWorkshop defines what information may be provided to modify an existing Workshop.
type UpdateWorkshop struct {
	Name          string    `json:"name" validate:"required,min=1,max=128"`
	StartAt       time.Time `json:"startAt" validate:"required"`
	CoachID       string    `json:"coachId" validate:"required"`
	City          string    `json:"city" validate:"required,max=128"`
	Address       string    `json:"address" validate:"max=512"`
	EventURL      string    `json:"eventUrl" validate:"omitempty,max=1024,url"`
	StartYear     int       `json:"startYear" validate:"omitempty,gte=1900"`
	EndYear       int       `json:"endYear" validate:"omitempty,gtefield=StartYear"`
	YearIncrement int       `json:"yearIncrement" validate:"omitempty,gte=1"`
	Rounds        []Round   `json:"rounds" validate:"dive"`
}

// NewParticipant is a participant to enroll in a workshop.
type NewParticipant struct {
	Email     string `json:"email" validate:"required,email,max=256"`
	FirstName string `json:"firstName" validate:"required,min=1,max=64"`
	LastName  string `json:"lastName" validate:"required,min=1,max=64"`
}

func (nw *NewWorkshop) clean() {
	nw.Name = core.CleanString(nw.Name)
	nw.CoachID = core.CleanString(nw.CoachID)
	nw.City = core.CleanString(nw.City)
	nw.Address = core.CleanString(nw.Address)
	nw.EventURL = core.CleanString(nw.EventURL)
	nw.StartAt = nw.StartAt.UTC()
}

func (uw *UpdateWorkshop) clean() {
	uw.Name = core.CleanString(uw.Name)
	uw.CoachID = core.CleanString(uw.CoachID)
	uw.City = core.CleanString(uw.City)
	uw.Address = core.CleanString(uw.Address)
	uw.EventURL = core.CleanString(uw.EventURL)
	uw.StartAt = uw.StartAt.UTC()
	for i := range uw.Rounds {
		if cfg := uw.Rounds[i].RoundConfig; cfg != nil {
			cfg.ActionCardType = core.CleanString(cfg.ActionCardType, true /* lower */)
		}
	}
}

type QueryFilter struct {
	CoachID string
}

// ParticipantDetail is an enrolled participant, with their carbon form answers if any.
type ParticipantDetail struct {
	ID              string                 `json:"id"`
	FirstName       string                 `json:"firstName"`
	LastName        string                 `json:"lastName"`
	Email           string                 `json:"email"`
	Status          string                 `json:"status"`
	SurveyVariables map[string]interface{} `json:"surveyVariables"`
}

// ModelDetail is the carbon model of a workshop along with the cards, batches and personas it uses.
type ModelDetail struct {
	ID                    string                 `json:"id"`
	FootprintStructure    map[string]interface{} `json:"footprintStructure"`
	GlobalCarbonVariables map[string]interface{} `json:"globalCarbonVariables"`
	VariableFormulas      map[string]interface{} `json:"variableFormulas"`
	ActionCards           []actioncard.Card      `json:"actionCards"`
	ActionCardBatches     []actioncard.Batch     `json:"actionCardBatches"`
	Personas              []carbon.Persona       `json:"personas"`
}

type Detail struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	StartAt       time.Time           `json:"startAt"`
	CreatorID     string              `json:"creatorId"`
	CoachID       string              `json:"coachId"`
	City          string              `json:"city"`
	Address       string              `json:"address"`
	EventURL      string              `json:"eventUrl"`
	StartYear     int                 `json:"startYear"`
	EndYear       int                 `json:"endYear"`
	YearIncrement int                 `json:"yearIncrement"`
	Participants  []ParticipantDetail `json:"participants"`
	Model         ModelDetail         `json:"model"`
	Rounds        []Round             `json:"rounds"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

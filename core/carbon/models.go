package carbon

import "time"

// Model is a versioned bundle of formulas used to compute footprints.
type Model struct {
	ID                    string                 `json:"id" bson:"_id"`
	FootprintStructure    map[string]interface{} `json:"footprintStructure" bson:"footprintStructure"`
	GlobalCarbonVariables map[string]interface{} `json:"globalCarbonVariables" bson:"globalCarbonVariables"`
	VariableFormulas      map[string]interface{} `json:"variableFormulas" bson:"variableFormulas"`
	PersonaIDs            []string               `json:"personas" bson:"personas"`
	CreatedAt             time.Time              `json:"createdAt" bson:"createdAt"`
}

type Persona struct {
	ID          string                 `json:"id" bson:"_id" mapstructure:"id"`
	FirstName   string                 `json:"firstName" bson:"firstName" mapstructure:"firstName"`
	LastName    string                 `json:"lastName" bson:"lastName" mapstructure:"lastName"`
	Description string                 `json:"description" bson:"description" mapstructure:"description"`
	Answers     map[string]interface{} `json:"answers" bson:"answers" mapstructure:"answers"`
}

// FormAnswers are the carbon form answers of a workshop participant.
type FormAnswers struct {
	ID            string                 `json:"id" bson:"_id"`
	WorkshopID    string                 `json:"workshopId" bson:"workshop"`
	ParticipantID string                 `json:"participantId" bson:"participant"`
	Answers       map[string]interface{} `json:"answers" bson:"answers"`
	CreatedAt     time.Time              `json:"-" bson:"createdAt"`
}

// NewFormAnswers is a carbon form submission.
type NewFormAnswers struct {
	Email   string                 `json:"email" validate:"required,email"`
	Answers map[string]interface{} `json:"answers" validate:"required,scalars"`
}

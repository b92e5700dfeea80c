package actioncard

// Card types
const (
	TypeIndividual = "individual"
	TypeCollective = "collective"
)

// Card categories
const (
	CategoryEcoFriendlyAction = "eco-friendly action"
	CategoryAwareness         = "awareness"
	CategorySystem            = "system"
)

var (
	Types      = []string{TypeIndividual, TypeCollective}
	Categories = []string{CategoryEcoFriendlyAction, CategoryAwareness, CategorySystem}
)

// Operation describes how choosing a card changes a footprint variable:
// Variable takes the value of the Operation formula.
type Operation struct {
	Variable  string      `json:"variable" bson:"variable" mapstructure:"variable"`
	Operation interface{} `json:"operation" bson:"operation" mapstructure:"operation"`
}

type Card struct {
	ID         string      `json:"id" bson:"_id" mapstructure:"id"`
	Number     int         `json:"cardNumber" bson:"number" mapstructure:"cardNumber"`
	Name       string      `json:"name" bson:"name" mapstructure:"name"`
	Category   string      `json:"category" bson:"category" mapstructure:"category"`
	Type       string      `json:"type" bson:"type" mapstructure:"type"`
	Key        string      `json:"key" bson:"key" mapstructure:"key"`
	Sector     string      `json:"sector" bson:"sector" mapstructure:"sector"`
	Cost       float64     `json:"cost" bson:"cost" mapstructure:"cost"`
	ImpactType string      `json:"impactType" bson:"impactType" mapstructure:"impactType"`
	Operations []Operation `json:"operations" bson:"operations" mapstructure:"operations"`
}

// Batch is a named group of cards of the same type.
// Batches without CoachID are the default batches copied to every new coach.
type Batch struct {
	ID            string   `json:"id" bson:"_id" mapstructure:"id"`
	Name          string   `json:"name" bson:"name" mapstructure:"name"`
	Type          string   `json:"type" bson:"type" mapstructure:"type"`
	ActionCardIDs []string `json:"actionCardIds" bson:"actionCardIds" mapstructure:"actionCardIds"`
	CoachID       string   `json:"coachId,omitempty" bson:"coachId,omitempty" mapstructure:"coachId"`
}

func (b Batch) IsDefault() bool { return b.CoachID == "" }

// NewBatch is a batch submitted by a coach.
type NewBatch struct {
	Name          string   `json:"name" validate:"required,min=1,max=128"`
	Type          string   `json:"type" validate:"required,oneof=individual collective"`
	ActionCardIDs []string `json:"actionCardIds" validate:"required"`
}

type BatchFilter struct {
	CoachID     string
	DefaultOnly bool
}

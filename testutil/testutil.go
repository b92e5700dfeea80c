package testutil

import (
	"context"
	"io"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/caplc/backend/core"
	"github.com/caplc/backend/core/actioncard"
	"github.com/caplc/backend/core/carbon"
	"github.com/caplc/backend/core/user"
	"github.com/caplc/backend/core/workshop"
	emailsvc "github.com/caplc/backend/services/email"
	logsvc "github.com/caplc/backend/services/logger"
	inmemdb "github.com/caplc/backend/storage/database/inmem"
)

// Env bundles the in-memory repositories and the services built on top of them.
type Env struct {
	Conf       *core.Config
	Logger     core.Logger
	DB         *inmemdb.DB
	Mail       *emailsvc.ConsoleServiceMock
	Validate   *validator.Validate
	Translator ut.Translator

	UserRepo     user.Repository
	CardRepo     actioncard.Repository
	CarbonRepo   carbon.Repository
	WorkshopRepo workshop.Repository

	UserSvc     user.Service
	CardSvc     actioncard.Service
	CarbonSvc   carbon.Service
	WorkshopSvc workshop.Service
}

func NewLogger(conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(logsvc.NewStdLogger(io.Discard, conf), conf)
}

// NewEnv returns a fresh Env backed by an empty in-memory database.
func NewEnv() *Env {
	conf := core.NewTestConfig()
	logger := NewLogger(conf)
	db := inmemdb.Open()
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator, conf.Cities)

	env := &Env{
		Conf:         conf,
		Logger:       logger,
		DB:           db,
		Mail:         mailSvc,
		Validate:     validate,
		Translator:   translator,
		UserRepo:     inmemdb.NewUserRepository(db),
		CardRepo:     inmemdb.NewActionCardRepository(db),
		CarbonRepo:   inmemdb.NewCarbonRepository(db),
		WorkshopRepo: inmemdb.NewWorkshopRepository(db),
	}
	env.CardSvc = actioncard.NewService(env.CardRepo)
	env.CarbonSvc = carbon.NewService(env.CarbonRepo)
	env.UserSvc = user.NewServiceMock(conf, logger, env.UserRepo, inmemdb.NewTokenBlacklist(db), mailSvc, env.CardSvc)
	env.WorkshopSvc = workshop.NewService(logger, env.WorkshopRepo, env.UserSvc, env.CardSvc, env.CarbonSvc, mailSvc)
	return env
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	firstName, lastName, email, pwd string,
	roles []string,
	createdAt ...time.Time,
) user.User {
	tstamp := core.Now()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		FirstName:              firstName,
		LastName:               lastName,
		Email:                  email,
		Roles:                  roles,
		WorkshopParticipations: []string{},
		CreatedAt:              tstamp,
		UpdatedAt:              tstamp,
	}
	if user.RolePriority(usr.MaxRole()) >= user.RolePriority(user.RoleCoach) {
		usr.City = "Paris"
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// SeedCards imports a small catalog: two individual cards and one collective card, with one default batch per type.
func SeedCards(t *testing.T, svc actioncard.Service) []actioncard.Card {
	cards := []actioncard.Card{
		{
			ID: "card-1", Number: 1, Name: "Eat less meat", Category: actioncard.CategoryEcoFriendlyAction,
			Type: actioncard.TypeIndividual, Key: "meat", Sector: "food", Cost: 1,
			Operations: []actioncard.Operation{
				{Variable: "meat", Operation: map[string]interface{}{"*": []interface{}{map[string]interface{}{"var": "meat"}, 0.5}}},
			},
		},
		{
			ID: "card-2", Number: 2, Name: "Ride a bike", Category: actioncard.CategoryEcoFriendlyAction,
			Type: actioncard.TypeIndividual, Key: "bike", Sector: "transport", Cost: 2,
			Operations: []actioncard.Operation{
				{Variable: "km", Operation: map[string]interface{}{"-": []interface{}{map[string]interface{}{"var": "km"}, 1000}}},
			},
		},
		{
			ID: "card-3", Number: 3, Name: "Clean energy", Category: actioncard.CategorySystem,
			Type: actioncard.TypeCollective, Key: "energy", Sector: "energy", Cost: 3,
			Operations: []actioncard.Operation{
				{Variable: "carFactor", Operation: 0.1},
			},
		},
	}
	ctx := context.Background()
	if err := svc.ImportCards(ctx, true, cards...); err != nil {
		t.Fatalf("SeedCards() failed: %v", err)
	}
	batches := []actioncard.Batch{
		{ID: "batch-1", Name: "Individual", Type: actioncard.TypeIndividual, ActionCardIDs: []string{"card-1", "card-2"}},
		{ID: "batch-2", Name: "Collective", Type: actioncard.TypeCollective, ActionCardIDs: []string{"card-3"}},
	}
	if err := svc.ImportBatches(ctx, true, batches...); err != nil {
		t.Fatalf("SeedCards() failed: %v", err)
	}
	return cards
}

// NewModel returns a model whose footprint is {food: meat * meatFactor, transport: {car: km * carFactor}}.
func NewModel() carbon.Model {
	return carbon.Model{
		FootprintStructure: map[string]interface{}{
			"food":      "foodFootprint",
			"transport": map[string]interface{}{"car": "carFootprint"},
		},
		GlobalCarbonVariables: map[string]interface{}{
			"meatFactor": 2.0,
			"carFactor":  0.2,
		},
		VariableFormulas: map[string]interface{}{
			"foodFootprint": map[string]interface{}{
				"*": []interface{}{map[string]interface{}{"var": "meat"}, map[string]interface{}{"var": "meatFactor"}},
			},
			"carFootprint": map[string]interface{}{
				"*": []interface{}{map[string]interface{}{"var": "km"}, map[string]interface{}{"var": "carFactor"}},
			},
		},
		PersonaIDs: []string{"persona-1"},
	}
}

// SeedModel imports NewModel() and its persona, and returns the stored model.
func SeedModel(t *testing.T, svc carbon.Service) carbon.Model {
	ctx := context.Background()
	persona := carbon.Persona{
		ID: "persona-1", FirstName: "Ada", LastName: "Lovelace", Description: "average",
		Answers: map[string]interface{}{"meat": 100.0, "km": 10000.0},
	}
	if err := svc.ImportPersonas(ctx, true, persona); err != nil {
		t.Fatalf("SeedModel() failed: %v", err)
	}
	if err := svc.ImportModels(ctx, NewModel()); err != nil {
		t.Fatalf("SeedModel() failed: %v", err)
	}
	m, err := svc.LatestModel(ctx)
	if err != nil {
		t.Fatalf("SeedModel() failed: %v", err)
	}
	return m
}

package echoapi_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caplc/backend/core"
	"github.com/caplc/backend/core/carbon"
	"github.com/caplc/backend/core/user"
	"github.com/caplc/backend/core/workshop"
	"github.com/caplc/backend/testutil"
)

var startAt = time.Date(2030, time.January, 2, 10, 0, 0, 0, time.UTC)

func workshopJSON(w workshop.Workshop) map[string]interface{} {
	return map[string]interface{}{
		"id":        w.ID,
		"name":      w.Name,
		"startAt":   w.StartAt,
		"city":      w.City,
		"address":   w.Address,
		"eventUrl":  w.EventURL,
		"coachId":   w.CoachID,
		"creatorId": w.CreatorID,
	}
}

func createWorkshop(t *testing.T, env *testutil.Env, creatorID, coachID, name string) workshop.Workshop {
	t.Helper()
	w, err := env.WorkshopSvc.Create(context.Background(), creatorID, workshop.NewWorkshop{
		Name: name, StartAt: startAt, CoachID: coachID, City: "Paris",
	})
	require.NoError(t, err)
	return w
}

func Test_workshopApi_create(t *testing.T) {
	app, env := setup(t)
	testutil.SeedCards(t, env.CardSvc)
	coach := testutil.CreateUser(t, env.UserRepo, "Zoe", "Coach", "zoe@caplc.fr", "", []string{user.RoleCoach})
	moderator := testutil.CreateUser(t, env.UserRepo, "Mod", "Moore", "mod@caplc.fr", "", []string{user.RoleModerator})
	coachToken := getToken(t, env.Conf, coach)

	body := func(name, coachID, city, eventURL string) []byte {
		return marshallObj(t, workshop.NewWorkshop{
			Name: name, StartAt: startAt, CoachID: coachID, City: city, Address: "1 rue de la Paix", EventURL: eventURL,
		})
	}
	post := func(name string, body []byte, token string, wantCode int, wantData []byte) httpTest {
		return httpTest{
			name: name, method: http.MethodPost, path: "/api/v1/workshops", body: body, token: token,
			wantCode: wantCode, wantData: wantData,
		}
	}

	t.Run("no model", func(t *testing.T) {
		serve(t, app, post("", body("W1", coach.ID, "Paris", ""), coachToken, http.StatusBadRequest,
			marshallObj(t, newHttpErr(core.NewInvalidDataError("No carbon model available")))))
	})

	model := testutil.SeedModel(t, env.CarbonSvc)

	tests := []httpTest{
		post("auth required", body("W1", coach.ID, "Paris", ""), "", http.StatusUnauthorized, nil),
		post("coach required", body("W1", coach.ID, "Paris", ""), getToken(t, env.Conf, moderator), http.StatusForbidden, nil),
		post("empty body", nil, coachToken, http.StatusBadRequest, marshallObj(t, newHttpErr(core.ErrEmptyBody))),
		post("invalid data", marshallObj(t, map[string]string{"eventUrl": "lol"}), coachToken, http.StatusBadRequest,
			marshallObj(t, newHttpErr(core.ErrInvalidData, map[string]string{
				"name":     "this field is required",
				"startAt":  "this field is required",
				"coachId":  "this field is required",
				"city":     "this field is required",
				"eventUrl": "eventUrl must be a valid URL",
			}))),
		post("unknown coach", body("W1", "lol", "Paris", ""), coachToken, http.StatusBadRequest,
			marshallObj(t, newHttpErr(core.NewInvalidDataError("Coach does not exist : lol")))),
		post("moderator as coach", body("W1", moderator.ID, "Paris", ""), coachToken, http.StatusBadRequest,
			marshallObj(t, newHttpErr(core.NewInvalidDataError("Coach does not exist : "+moderator.ID)))),
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serve(t, app, tt)
		})
	}

	t.Run("success", func(t *testing.T) {
		rec := serve(t, app, post("", body("  My workshop ", coach.ID, "Lyon", "https://meet.caplc.fr/w1"), coachToken, http.StatusOK, nil))
		var got map[string]interface{}
		decode(t, rec, &got)

		w, err := env.WorkshopSvc.Get(context.Background(), got["id"].(string))
		require.NoError(t, err)
		assert.Equal(t, "My workshop", w.Name)
		assert.Equal(t, coach.ID, w.CreatorID)
		assert.Equal(t, coach.ID, w.CoachID)
		assert.Equal(t, model.ID, w.ModelID)
		assert.Equal(t, 2020, w.StartYear)
		assert.Equal(t, 2050, w.EndYear)
		assert.Equal(t, 5, w.YearIncrement)
		assert.True(t, startAt.Equal(w.StartAt))
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marshallObj(t, workshopJSON(w))}, rec)
	})
}

func Test_workshopApi_queryAndDetail(t *testing.T) {
	app, env := setup(t)
	testutil.SeedCards(t, env.CardSvc)
	model := testutil.SeedModel(t, env.CarbonSvc)
	coach := testutil.CreateUser(t, env.UserRepo, "Zoe", "Coach", "zoe@caplc.fr", "", []string{user.RoleCoach})
	other := testutil.CreateUser(t, env.UserRepo, "Otto", "Coach", "otto@caplc.fr", "", []string{user.RoleCoach})
	ctx := context.Background()
	require.NoError(t, env.CardSvc.CopyDefaultBatches(ctx, coach.ID))

	w1 := createWorkshop(t, env, coach.ID, coach.ID, "Beta")
	time.Sleep(2 * time.Millisecond)
	w2 := createWorkshop(t, env, coach.ID, other.ID, "Alpha")
	token := getToken(t, env.Conf, coach)

	tests := []httpTest{
		{name: "auth required", path: "/api/v1/workshops", wantCode: http.StatusUnauthorized},
		{
			name: "default ordering", path: "/api/v1/workshops", token: token, wantCode: http.StatusOK,
			wantData: marshallList(t, workshopJSON(w1), workshopJSON(w2)),
		},
		{
			name: "order by name", path: "/api/v1/workshops?ordering=name", token: token, wantCode: http.StatusOK,
			wantData: marshallList(t, workshopJSON(w2), workshopJSON(w1)),
		},
		{
			name: "filter by coach", path: "/api/v1/workshops?coachId=" + other.ID, token: token, wantCode: http.StatusOK,
			wantData: marshallList(t, workshopJSON(w2)),
		},
		{
			name: "unknown workshop", path: "/api/v1/workshops/lol", token: token, wantCode: http.StatusNotFound,
			wantData: marshallObj(t, newHttpErr(core.ErrEntityNotFound)),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serve(t, app, tt)
		})
	}

	t.Run("detail", func(t *testing.T) {
		_, err := env.WorkshopSvc.AddParticipant(ctx, w1.ID, workshop.NewParticipant{
			Email: "paul@caplc.fr", FirstName: "Paul", LastName: "Participant",
		})
		require.NoError(t, err)
		_, err = env.WorkshopSvc.SubmitCarbonForm(ctx, w1.ID, carbon.NewFormAnswers{
			Email: "paul@caplc.fr", Answers: map[string]interface{}{"meat": 100.0},
		})
		require.NoError(t, err)

		rec := serve(t, app, httpTest{path: "/api/v1/workshops/" + w1.ID, token: token, wantCode: http.StatusOK})
		var got workshop.Detail
		decode(t, rec, &got)

		assert.Equal(t, w1.ID, got.ID)
		assert.Equal(t, 2020, got.StartYear)
		assert.Empty(t, got.Rounds)
		require.Len(t, got.Participants, 1)
		assert.Equal(t, "paul@caplc.fr", got.Participants[0].Email)
		assert.Equal(t, workshop.StatusToCheck, got.Participants[0].Status)
		assert.Equal(t, map[string]interface{}{"meat": 100.0}, got.Participants[0].SurveyVariables)

		assert.Equal(t, model.ID, got.Model.ID)
		assert.Equal(t, model.GlobalCarbonVariables, got.Model.GlobalCarbonVariables)
		assert.Len(t, got.Model.ActionCards, 3)
		require.Len(t, got.Model.ActionCardBatches, 2)
		assert.Equal(t, coach.ID, got.Model.ActionCardBatches[0].CoachID)
		require.Len(t, got.Model.Personas, 1)
		assert.Equal(t, "Ada", got.Model.Personas[0].FirstName)
	})
}

func Test_workshopApi_update(t *testing.T) {
	app, env := setup(t)
	testutil.SeedCards(t, env.CardSvc)
	testutil.SeedModel(t, env.CarbonSvc)
	coach := testutil.CreateUser(t, env.UserRepo, "Zoe", "Coach", "zoe@caplc.fr", "", []string{user.RoleCoach})
	other := testutil.CreateUser(t, env.UserRepo, "Otto", "Coach", "otto@caplc.fr", "", []string{user.RoleCoach})
	ctx := context.Background()

	w := createWorkshop(t, env, coach.ID, coach.ID, "W1")
	p, err := env.WorkshopSvc.AddParticipant(ctx, w.ID, workshop.NewParticipant{
		Email: "paul@caplc.fr", FirstName: "Paul", LastName: "Participant",
	})
	require.NoError(t, err)

	path := "/api/v1/workshops/" + w.ID
	token := getToken(t, env.Conf, coach)
	update := func(coachID string, rounds ...workshop.Round) workshop.UpdateWorkshop {
		return workshop.UpdateWorkshop{
			Name: "W1 updated", StartAt: startAt, CoachID: coachID, City: "Lille",
			StartYear: 2020, EndYear: 2040, YearIncrement: 10, Rounds: rounds,
		}
	}
	round := func(year int, participantID string) workshop.Round {
		return workshop.Round{
			Year:              year,
			CarbonVariables:   []workshop.ParticipantVariables{{ParticipantID: participantID, Variables: map[string]interface{}{"km": 5000.0}}},
			CarbonFootprints:  []workshop.ParticipantFootprint{},
			IndividualChoices: []workshop.IndividualChoices{{ParticipantID: participantID, ActionCardIDs: []string{"card-1"}}},
			RoundConfig:       &workshop.RoundConfig{ActionCardType: "Individual", TargetedYear: year + 10, Budget: 4},
		}
	}

	tests := []httpTest{
		{name: "empty body", wantCode: http.StatusBadRequest, wantData: marshallObj(t, newHttpErr(core.ErrEmptyBody))},
		{
			name: "unknown workshop", path: "/api/v1/workshops/lol", body: marshallObj(t, update(coach.ID)),
			wantCode: http.StatusNotFound, wantData: marshallObj(t, newHttpErr(core.ErrEntityNotFound)),
		},
		{
			name: "invalid years", body: marshallObj(t, workshop.UpdateWorkshop{
				Name: "W1", StartAt: startAt, CoachID: coach.ID, City: "Lille", StartYear: 2050, EndYear: 2040,
			}),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, newHttpErr(core.ErrInvalidData, map[string]string{
				"endYear": "endYear must be greater than or equal to StartYear",
			})),
		},
		{
			name: "start year after stored end year", body: marshallObj(t, workshop.UpdateWorkshop{
				Name: "W1", StartAt: startAt, CoachID: coach.ID, City: "Lille", StartYear: 2060,
			}),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, newHttpErr(core.NewInvalidDataError(
				"End year must be greater than or equal to start year : 2050 < 2060",
			))),
		},
		{
			name: "end year before stored start year", body: marshallObj(t, workshop.UpdateWorkshop{
				Name: "W1", StartAt: startAt, CoachID: coach.ID, City: "Lille", EndYear: 2010,
			}),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, newHttpErr(core.NewInvalidDataError(
				"End year must be greater than or equal to start year : 2010 < 2020",
			))),
		},
		{
			name: "duplicate round years", body: marshallObj(t, update(coach.ID, round(2020, p.ID), round(2020, p.ID))),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, newHttpErr(core.NewInvalidDataError("Round years must be unique : 2020"))),
		},
		{
			name: "unknown participant", body: marshallObj(t, update(coach.ID, round(2020, p.ID), round(2030, "lol"))),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, newHttpErr(core.NewInvalidDataError("Invalid participant id in round 2030's carbonVariables : lol"))),
		},
		{
			name: "unknown coach", body: marshallObj(t, update("lol")),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, newHttpErr(core.NewInvalidDataError("Coach does not exist : lol"))),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPut
		if tt.path == "" {
			tt.path = path
		}
		tt.token = token
		t.Run(tt.name, func(t *testing.T) {
			serve(t, app, tt)
		})
	}

	t.Run("success", func(t *testing.T) {
		rec := serve(t, app, httpTest{
			method: http.MethodPut, path: path, token: token, wantCode: http.StatusOK,
			body: marshallObj(t, update(other.ID, round(2020, p.ID), round(2030, p.ID))),
		})
		var got workshop.Detail
		decode(t, rec, &got)
		assert.Equal(t, "W1 updated", got.Name)
		assert.Equal(t, other.ID, got.CoachID)
		assert.Equal(t, coach.ID, got.CreatorID)
		assert.Equal(t, 2040, got.EndYear)
		assert.Equal(t, 10, got.YearIncrement)
		require.Len(t, got.Rounds, 2)
		assert.Equal(t, "individual", got.Rounds[0].RoundConfig.ActionCardType)

		stored, err := env.WorkshopSvc.Get(ctx, w.ID)
		require.NoError(t, err)
		assert.Equal(t, "Lille", stored.City)
		assert.Len(t, stored.Rounds, 2)
		assert.Len(t, stored.Participants, 1)
	})
}

func Test_workshopApi_participants(t *testing.T) {
	app, env := setup(t)
	testutil.SeedCards(t, env.CardSvc)
	testutil.SeedModel(t, env.CarbonSvc)
	coach := testutil.CreateUser(t, env.UserRepo, "Zoe", "Coach", "zoe@caplc.fr", "", []string{user.RoleCoach})
	ctx := context.Background()

	w1 := createWorkshop(t, env, coach.ID, coach.ID, "W1")
	w2 := createWorkshop(t, env, coach.ID, coach.ID, "W2")
	token := getToken(t, env.Conf, coach)

	body := func(email, firstName, lastName string) []byte {
		return marshallObj(t, workshop.NewParticipant{Email: email, FirstName: firstName, LastName: lastName})
	}
	enroll := func(w workshop.Workshop, body []byte, wantCode int) map[string]interface{} {
		rec := serve(t, app, httpTest{
			method: http.MethodPost, path: "/api/v1/workshops/" + w.ID + "/participants", body: body, token: token,
			wantCode: wantCode,
		})
		var got map[string]interface{}
		decode(t, rec, &got)
		return got
	}

	t.Run("enroll", func(t *testing.T) {
		got := enroll(w1, body(" Paul@caplc.fr", "Paul", "Participant"), http.StatusOK)
		assert.Equal(t, workshop.StatusCreated, got["status"])
		assert.Equal(t, "paul@caplc.fr", got["email"])

		paul, err := env.UserSvc.GetByEmail(ctx, "paul@caplc.fr")
		require.NoError(t, err)
		assert.Equal(t, []string{user.RoleParticipant}, []string(paul.Roles))
		assert.Equal(t, []string{w1.ID}, paul.WorkshopParticipations)

		got = enroll(w1, body("paul@caplc.fr", "Paul", "Participant"), http.StatusBadRequest)
		assert.Equal(t, "Invalid Data Error: Participant already registered for this workshop", got["msg"])

		got = enroll(w2, body("paul@caplc.fr", "Paul", "Participant"), http.StatusOK)
		assert.Equal(t, workshop.StatusExisting, got["status"])

		// a coach may take part in a workshop
		got = enroll(w1, body(coach.Email, "Zoe", "Coach"), http.StatusOK)
		assert.Equal(t, workshop.StatusCreated, got["status"])
		usr, err := env.UserSvc.GetByID(ctx, coach.ID)
		require.NoError(t, err)
		assert.True(t, usr.IsParticipant())
		assert.Equal(t, user.RoleCoach, usr.MaxRole())

		got = enroll(w1, body("lol", "", "Doe"), http.StatusBadRequest)
		assert.Equal(t, map[string]interface{}{
			"email":     "email must be a valid email address",
			"firstName": "this field is required",
		}, got["details"])

		w, err := env.WorkshopSvc.Get(ctx, w1.ID)
		require.NoError(t, err)
		assert.Equal(t, []workshop.Participant{
			{UserID: paul.ID, Status: workshop.StatusCreated},
			{UserID: coach.ID, Status: workshop.StatusCreated},
		}, w.Participants)
	})

	t.Run("send carbon form", func(t *testing.T) {
		paul, err := env.UserSvc.GetByEmail(ctx, "paul@caplc.fr")
		require.NoError(t, err)
		env.Mail.Reset()

		path := "/api/v1/workshops/" + w1.ID + "/participants/" + paul.ID + "/carbon_form"
		serve(t, app, httpTest{method: http.MethodPost, path: path, token: token, wantCode: http.StatusNoContent})
		serve(t, app, httpTest{
			method: http.MethodPost, path: "/api/v1/workshops/" + w1.ID + "/participants/lol/carbon_form", token: token,
			wantCode: http.StatusNotFound,
		})

		msgs := env.Mail.SentMessages()
		require.Len(t, msgs, 1)
		assert.Equal(t, "carbon_form", msgs[0].TemplateName)
		assert.Equal(t, paul.Email, msgs[0].To[0].Address)
		assert.Contains(t, msgs[0].TextContent, w1.ID)

		w, err := env.WorkshopSvc.Get(ctx, w1.ID)
		require.NoError(t, err)
		p, ok := w.Participant(paul.ID)
		require.True(t, ok)
		assert.Equal(t, workshop.StatusFormSent, p.Status)
	})

	t.Run("remove", func(t *testing.T) {
		paul, err := env.UserSvc.GetByEmail(ctx, "paul@caplc.fr")
		require.NoError(t, err)
		_, err = env.WorkshopSvc.SubmitCarbonForm(ctx, w1.ID, carbon.NewFormAnswers{
			Email: paul.Email, Answers: map[string]interface{}{"meat": 1.0},
		})
		require.NoError(t, err)

		path := "/api/v1/workshops/" + w1.ID + "/participants/" + paul.ID
		serve(t, app, httpTest{method: http.MethodDelete, path: path, token: token, wantCode: http.StatusNoContent})
		serve(t, app, httpTest{
			method: http.MethodDelete, path: path, token: token, wantCode: http.StatusNotFound,
			wantData: marshallObj(t, newHttpErr(core.ErrEntityNotFound)),
		})

		paul, err = env.UserSvc.GetByID(ctx, paul.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{w2.ID}, paul.WorkshopParticipations)

		answers, err := env.CarbonSvc.QueryFormAnswers(ctx, w1.ID)
		require.NoError(t, err)
		assert.Empty(t, answers)
	})
}

func Test_workshopApi_delete(t *testing.T) {
	app, env := setup(t)
	testutil.SeedModel(t, env.CarbonSvc)
	coach := testutil.CreateUser(t, env.UserRepo, "Zoe", "Coach", "zoe@caplc.fr", "", []string{user.RoleCoach})
	ctx := context.Background()

	w := createWorkshop(t, env, coach.ID, coach.ID, "W1")
	p, err := env.WorkshopSvc.AddParticipant(ctx, w.ID, workshop.NewParticipant{
		Email: "paul@caplc.fr", FirstName: "Paul", LastName: "Participant",
	})
	require.NoError(t, err)
	_, err = env.WorkshopSvc.SubmitCarbonForm(ctx, w.ID, carbon.NewFormAnswers{
		Email: "paul@caplc.fr", Answers: map[string]interface{}{"meat": 1.0},
	})
	require.NoError(t, err)

	token := getToken(t, env.Conf, coach)
	path := "/api/v1/workshops/" + w.ID
	serve(t, app, httpTest{method: http.MethodDelete, path: path, token: token, wantCode: http.StatusNoContent})
	serve(t, app, httpTest{
		method: http.MethodDelete, path: path, token: token, wantCode: http.StatusNotFound,
		wantData: marshallObj(t, newHttpErr(core.ErrEntityNotFound)),
	})

	paul, err := env.UserSvc.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, paul.WorkshopParticipations)

	answers, err := env.CarbonSvc.QueryFormAnswers(ctx, w.ID)
	require.NoError(t, err)
	assert.Empty(t, answers)
}

func Test_workshopApi_footprints(t *testing.T) {
	app, env := setup(t)
	testutil.SeedCards(t, env.CardSvc)
	testutil.SeedModel(t, env.CarbonSvc)
	coach := testutil.CreateUser(t, env.UserRepo, "Zoe", "Coach", "zoe@caplc.fr", "", []string{user.RoleCoach})
	ctx := context.Background()

	w := createWorkshop(t, env, coach.ID, coach.ID, "W1")
	paul, err := env.WorkshopSvc.AddParticipant(ctx, w.ID, workshop.NewParticipant{
		Email: "paul@caplc.fr", FirstName: "Paul", LastName: "Participant",
	})
	require.NoError(t, err)
	jane, err := env.WorkshopSvc.AddParticipant(ctx, w.ID, workshop.NewParticipant{
		Email: "jane@caplc.fr", FirstName: "Jane", LastName: "Participant",
	})
	require.NoError(t, err)
	_, err = env.WorkshopSvc.SubmitCarbonForm(ctx, w.ID, carbon.NewFormAnswers{
		Email: paul.Email, Answers: map[string]interface{}{"meat": 100.0, "km": 10000.0},
	})
	require.NoError(t, err)

	_, err = env.WorkshopSvc.Update(ctx, w.ID, workshop.UpdateWorkshop{
		Name: w.Name, StartAt: w.StartAt, CoachID: w.CoachID, City: w.City,
		Rounds: []workshop.Round{
			{Year: 2020},
			{
				Year: 2025,
				CarbonVariables: []workshop.ParticipantVariables{
					{ParticipantID: jane.ID, Variables: map[string]interface{}{"meat": 10.0, "km": 20000.0}},
				},
				IndividualChoices: []workshop.IndividualChoices{
					{ParticipantID: paul.ID, ActionCardIDs: []string{"card-1"}},
				},
				CollectiveChoices: &workshop.CollectiveChoices{ActionCardIDs: []string{"card-3"}},
			},
			{Year: 2030, CollectiveChoices: &workshop.CollectiveChoices{ActionCardIDs: []string{"lol"}}},
		},
	})
	require.NoError(t, err)

	token := getToken(t, env.Conf, coach)
	path := func(year string) string { return "/api/v1/workshops/" + w.ID + "/rounds/" + year + "/footprints" }

	tests := []httpTest{
		{name: "unknown round", path: path("2021"), wantCode: http.StatusNotFound},
		{name: "invalid year", path: path("lol"), wantCode: http.StatusNotFound},
		{
			name: "unknown card", path: path("2030"), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, newHttpErr(core.NewInvalidDataError("actionCardId lol does not exist."))),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.token = token
		t.Run(tt.name, func(t *testing.T) {
			serve(t, app, tt)
		})
	}

	footprint := func(round workshop.Round, participantID string) map[string]interface{} {
		for _, fp := range round.CarbonFootprints {
			if fp.ParticipantID == participantID {
				return fp.Footprint
			}
		}
		t.Fatalf("no footprint for %s", participantID)
		return nil
	}
	car := func(fp map[string]interface{}) float64 {
		return fp["transport"].(map[string]interface{})["car"].(float64)
	}

	t.Run("first round", func(t *testing.T) {
		rec := serve(t, app, httpTest{method: http.MethodPost, path: path("2020"), token: token, wantCode: http.StatusOK})
		var round workshop.Round
		decode(t, rec, &round)

		// jane has no variables yet
		require.Len(t, round.CarbonFootprints, 1)
		fp := footprint(round, paul.ID)
		assert.InDelta(t, 200, fp["food"], 1e-9)
		assert.InDelta(t, 2000, car(fp), 1e-9)
	})

	t.Run("choices", func(t *testing.T) {
		rec := serve(t, app, httpTest{method: http.MethodPost, path: path("2025"), token: token, wantCode: http.StatusOK})
		var round workshop.Round
		decode(t, rec, &round)
		require.Len(t, round.CarbonFootprints, 2)

		fp := footprint(round, paul.ID)
		assert.InDelta(t, 100, fp["food"], 1e-9)
		assert.InDelta(t, 1000, car(fp), 1e-9)

		fp = footprint(round, jane.ID)
		assert.InDelta(t, 20, fp["food"], 1e-9)
		assert.InDelta(t, 2000, car(fp), 1e-9)

		stored, err := env.WorkshopSvc.Get(ctx, w.ID)
		require.NoError(t, err)
		assert.Len(t, stored.Rounds[1].CarbonFootprints, 2)
	})
}

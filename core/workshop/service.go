package workshop

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/caplc/backend/core"
	"github.com/caplc/backend/core/actioncard"
	"github.com/caplc/backend/core/carbon"
	"github.com/caplc/backend/core/user"
)

var (
	// errors
	ErrNotFound = errors.New("workshop not found")

	errNoModel             = core.NewInvalidDataError("No carbon model available")
	errAlreadyRegistered   = core.NewInvalidDataError("Participant already registered for this workshop")
	errNotAParticipant     = core.NewInvalidDataError("This email does not belong to one of the workshop's participants")
	errAlreadyAnsweredForm = core.NewInvalidDataError("Participant has already answered to the carbon form for this workshop")
)

type (
	Repository interface {
		// CreateWorkshop assigns an ID to w if it has none.
		CreateWorkshop(ctx context.Context, w Workshop) (Workshop, error)
		GetWorkshop(ctx context.Context, id string) (Workshop, error)
		QueryWorkshops(ctx context.Context, filter QueryFilter, orderings ...core.DBOrdering) ([]Workshop, error)
		UpdateWorkshop(ctx context.Context, w Workshop) (Workshop, error)
		DeleteWorkshop(ctx context.Context, id string) error
	}

	Service interface {
		Create(ctx context.Context, creatorID string, nw NewWorkshop) (Workshop, error)
		Query(ctx context.Context, filter QueryFilter, orderings ...core.DBOrdering) ([]Workshop, error)
		Get(ctx context.Context, id string) (Workshop, error)
		GetDetail(ctx context.Context, id string) (Detail, error)
		Update(ctx context.Context, id string, uw UpdateWorkshop) (Detail, error)
		Delete(ctx context.Context, id string) error

		AddParticipant(ctx context.Context, workshopID string, np NewParticipant) (ParticipantDetail, error)
		RemoveParticipant(ctx context.Context, workshopID, participantID string) error
		SendCarbonForm(ctx context.Context, workshopID, participantID string) error
		SubmitCarbonForm(ctx context.Context, workshopID string, nfa carbon.NewFormAnswers) (carbon.FormAnswers, error)

		ComputeRoundFootprints(ctx context.Context, workshopID string, year int) (Round, error)
	}

	service struct {
		repo    Repository
		users   user.Service
		cards   actioncard.Service
		carbon  carbon.Service
		mailSvc core.EmailService
		logger  core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(
	logger core.Logger,
	repo Repository,
	users user.Service,
	cards actioncard.Service,
	carbonSvc carbon.Service,
	mailSvc core.EmailService,
) Service {
	return &service{
		repo:    repo,
		users:   users,
		cards:   cards,
		carbon:  carbonSvc,
		mailSvc: mailSvc,
		logger:  logger,
	}
}

func notFoundAs(err error, target error) error {
	switch errors.Cause(err) {
	case ErrNotFound, user.ErrNotFound:
		return target
	}
	return err
}

// Create creates a workshop coached by nw.CoachID and bound to the latest carbon model.
func (svc *service) Create(ctx context.Context, creatorID string, nw NewWorkshop) (Workshop, error) {
	if _, err := svc.users.GetCoach(ctx, nw.CoachID); err != nil {
		if errors.Is(err, core.ErrEntityNotFound) {
			return Workshop{}, core.NewInvalidDataError("Coach does not exist : " + nw.CoachID)
		}
		return Workshop{}, errors.Wrap(err, "getting coach")
	}

	model, err := svc.carbon.LatestModel(ctx)
	if err != nil {
		if errors.Cause(err) == carbon.ErrModelNotFound {
			return Workshop{}, errNoModel
		}
		return Workshop{}, errors.Wrap(err, "getting latest model")
	}

	now := core.Now()
	w := Workshop{
		Name:          nw.Name,
		StartAt:       nw.StartAt,
		CreatorID:     creatorID,
		CoachID:       nw.CoachID,
		City:          nw.City,
		Address:       nw.Address,
		EventURL:      nw.EventURL,
		ModelID:       model.ID,
		StartYear:     defaultStartYear,
		EndYear:       defaultEndYear,
		YearIncrement: defaultYearIncrement,
		Participants:  []Participant{},
		Rounds:        []Round{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	w, err = svc.repo.CreateWorkshop(ctx, w)
	return w, errors.Wrap(err, "creating workshop")
}

func (svc *service) Query(ctx context.Context, filter QueryFilter, orderings ...core.DBOrdering) ([]Workshop, error) {
	return svc.repo.QueryWorkshops(ctx, filter, orderings...)
}

func (svc *service) Get(ctx context.Context, id string) (Workshop, error) {
	w, err := svc.repo.GetWorkshop(ctx, id)
	return w, notFoundAs(err, core.ErrEntityNotFound)
}

func (svc *service) GetDetail(ctx context.Context, id string) (Detail, error) {
	w, err := svc.Get(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	return svc.detail(ctx, w)
}

// detail assembles the participants (with their form answers) and the carbon model of w.
func (svc *service) detail(ctx context.Context, w Workshop) (Detail, error) {
	answers, err := svc.carbon.QueryFormAnswers(ctx, w.ID)
	if err != nil {
		return Detail{}, errors.Wrap(err, "querying form answers")
	}
	answersByUser := make(map[string]map[string]interface{}, len(answers))
	for _, fa := range answers {
		answersByUser[fa.ParticipantID] = fa.Answers
	}

	participants := make([]ParticipantDetail, 0, len(w.Participants))
	for _, p := range w.Participants {
		usr, err := svc.users.GetByID(ctx, p.UserID)
		if err != nil {
			if errors.Cause(err) == user.ErrNotFound {
				svc.logger.Warn(fmt.Sprintf("workshop %s: participant %s not found", w.ID, p.UserID))
				continue
			}
			return Detail{}, errors.Wrap(err, "getting participant")
		}
		participants = append(participants, ParticipantDetail{
			ID:              usr.ID,
			FirstName:       usr.FirstName,
			LastName:        usr.LastName,
			Email:           usr.Email,
			Status:          p.Status,
			SurveyVariables: answersByUser[usr.ID],
		})
	}

	md, err := svc.modelDetail(ctx, w)
	if err != nil {
		return Detail{}, err
	}

	rounds := w.Rounds
	if rounds == nil {
		rounds = []Round{}
	}
	return Detail{
		ID:            w.ID,
		Name:          w.Name,
		StartAt:       w.StartAt,
		CreatorID:     w.CreatorID,
		CoachID:       w.CoachID,
		City:          w.City,
		Address:       w.Address,
		EventURL:      w.EventURL,
		StartYear:     w.StartYear,
		EndYear:       w.EndYear,
		YearIncrement: w.YearIncrement,
		Participants:  participants,
		Model:         md,
		Rounds:        rounds,
		CreatedAt:     w.CreatedAt,
		UpdatedAt:     w.UpdatedAt,
	}, nil
}

func (svc *service) modelDetail(ctx context.Context, w Workshop) (ModelDetail, error) {
	md := ModelDetail{
		ActionCards:       []actioncard.Card{},
		ActionCardBatches: []actioncard.Batch{},
		Personas:          []carbon.Persona{},
	}

	model, err := svc.carbon.GetModel(ctx, w.ModelID)
	switch {
	case err == nil:
		md.ID = model.ID
		md.FootprintStructure = model.FootprintStructure
		md.GlobalCarbonVariables = model.GlobalCarbonVariables
		md.VariableFormulas = model.VariableFormulas
		if md.Personas, err = svc.carbon.QueryPersonas(ctx, model.PersonaIDs...); err != nil {
			return ModelDetail{}, errors.Wrap(err, "querying personas")
		}
	case errors.Cause(err) == carbon.ErrModelNotFound:
		svc.logger.Warn(fmt.Sprintf("workshop %s: model %s not found", w.ID, w.ModelID))
	default:
		return ModelDetail{}, errors.Wrap(err, "getting model")
	}

	if md.ActionCards, err = svc.cards.QueryCards(ctx); err != nil {
		return ModelDetail{}, errors.Wrap(err, "querying action cards")
	}
	if md.ActionCardBatches, err = svc.cards.QueryBatches(ctx, w.CoachID); err != nil {
		return ModelDetail{}, errors.Wrap(err, "querying action card batches")
	}
	return md, nil
}

// Update overwrites the editable fields of the workshop and its rounds.
func (svc *service) Update(ctx context.Context, id string, uw UpdateWorkshop) (Detail, error) {
	w, err := svc.Get(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	if err = checkRounds(w, uw.Rounds); err != nil {
		return Detail{}, err
	}
	if uw.CoachID != w.CoachID {
		if _, err = svc.users.GetCoach(ctx, uw.CoachID); err != nil {
			if errors.Is(err, core.ErrEntityNotFound) {
				return Detail{}, core.NewInvalidDataError("Coach does not exist : " + uw.CoachID)
			}
			return Detail{}, errors.Wrap(err, "getting coach")
		}
	}

	w.Name = uw.Name
	w.StartAt = uw.StartAt
	w.CoachID = uw.CoachID
	w.City = uw.City
	w.Address = uw.Address
	w.EventURL = uw.EventURL
	if uw.StartYear != 0 {
		w.StartYear = uw.StartYear
	}
	if uw.EndYear != 0 {
		w.EndYear = uw.EndYear
	}
	if uw.YearIncrement != 0 {
		w.YearIncrement = uw.YearIncrement
	}
	if uw.Rounds != nil {
		w.Rounds = uw.Rounds
	}
	if err = checkYears(w); err != nil {
		return Detail{}, err
	}
	w.UpdatedAt = core.Now()

	if w, err = svc.repo.UpdateWorkshop(ctx, w); err != nil {
		return Detail{}, errors.Wrap(notFoundAs(err, core.ErrEntityNotFound), "updating workshop")
	}
	return svc.detail(ctx, w)
}

// Delete deletes the workshop and unlinks its participants.
func (svc *service) Delete(ctx context.Context, id string) error {
	w, err := svc.Get(ctx, id)
	if err != nil {
		return err
	}
	if err = svc.repo.DeleteWorkshop(ctx, id); err != nil {
		return notFoundAs(err, core.ErrEntityNotFound)
	}

	for _, p := range w.Participants {
		if err = svc.unlinkUser(ctx, p.UserID, id); err != nil {
			svc.logger.Error(fmt.Sprintf("unlinking participant %s from workshop %s: %v", p.UserID, id, err), err)
		}
	}
	if err = svc.carbon.DeleteFormAnswers(ctx, id, ""); err != nil {
		svc.logger.Error(fmt.Sprintf("deleting form answers of workshop %s: %v", id, err), err)
	}
	return nil
}

func (svc *service) unlinkUser(ctx context.Context, userID, workshopID string) error {
	usr, err := svc.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	usr.RemoveParticipation(workshopID)
	_, err = svc.users.Update(ctx, usr)
	return err
}

// AddParticipant enrolls the user owning np.Email in the workshop, creating it if needed.
func (svc *service) AddParticipant(ctx context.Context, workshopID string, np NewParticipant) (ParticipantDetail, error) {
	w, err := svc.Get(ctx, workshopID)
	if err != nil {
		return ParticipantDetail{}, err
	}

	var status string
	usr, err := svc.users.GetByEmail(ctx, np.Email)
	switch {
	case err == nil:
		if usr.IsParticipant() {
			if w.HasParticipant(usr.ID) || usr.ParticipatesIn(w.ID) {
				return ParticipantDetail{}, errAlreadyRegistered
			}
			status = StatusExisting
		} else {
			usr.AddRole(user.RoleParticipant)
			status = StatusCreated
		}
	case errors.Cause(err) == user.ErrNotFound:
		usr, err = svc.users.Create(ctx, user.NewUser{
			FirstName: np.FirstName,
			LastName:  np.LastName,
			Email:     np.Email,
			Roles:     []string{user.RoleParticipant},
		})
		if err != nil {
			return ParticipantDetail{}, errors.Wrap(err, "creating participant")
		}
		status = StatusCreated
	default:
		return ParticipantDetail{}, errors.Wrap(err, "finding user by email")
	}

	usr.AddParticipation(w.ID)
	if usr, err = svc.users.Update(ctx, usr); err != nil {
		return ParticipantDetail{}, errors.Wrap(err, "updating participant")
	}

	w.Participants = append(w.Participants, Participant{UserID: usr.ID, Status: status})
	w.UpdatedAt = core.Now()
	if _, err = svc.repo.UpdateWorkshop(ctx, w); err != nil {
		return ParticipantDetail{}, errors.Wrap(err, "updating workshop")
	}

	return ParticipantDetail{
		ID:        usr.ID,
		FirstName: usr.FirstName,
		LastName:  usr.LastName,
		Email:     usr.Email,
		Status:    status,
	}, nil
}

// RemoveParticipant unlinks the participant and the workshop, and drops the participant's form answers.
func (svc *service) RemoveParticipant(ctx context.Context, workshopID, participantID string) error {
	w, err := svc.Get(ctx, workshopID)
	if err != nil {
		return err
	}
	usr, err := svc.users.GetByID(ctx, participantID)
	if err != nil {
		return notFoundAs(err, core.ErrEntityNotFound)
	}
	if !w.RemoveParticipant(usr.ID) {
		return core.ErrEntityNotFound
	}

	w.UpdatedAt = core.Now()
	if _, err = svc.repo.UpdateWorkshop(ctx, w); err != nil {
		return errors.Wrap(err, "updating workshop")
	}
	usr.RemoveParticipation(w.ID)
	if _, err = svc.users.Update(ctx, usr); err != nil {
		return errors.Wrap(err, "updating participant")
	}
	if err = svc.carbon.DeleteFormAnswers(ctx, w.ID, usr.ID); err != nil {
		svc.logger.Error(fmt.Sprintf("deleting form answers of %s for workshop %s: %v", usr.ID, w.ID, err), err)
	}
	return nil
}

type carbonFormData struct {
	Name         string
	WorkshopID   string
	WorkshopName string
	StartAt      string
}

// SendCarbonForm mails the carbon form link to the participant.
func (svc *service) SendCarbonForm(ctx context.Context, workshopID, participantID string) error {
	w, err := svc.Get(ctx, workshopID)
	if err != nil {
		return err
	}
	if !w.HasParticipant(participantID) {
		return core.ErrEntityNotFound
	}
	usr, err := svc.users.GetByID(ctx, participantID)
	if err != nil {
		return notFoundAs(err, core.ErrEntityNotFound)
	}

	var replyTo *mail.Address
	if coach, err := svc.users.GetByID(ctx, w.CoachID); err == nil {
		replyTo = &mail.Address{Name: coach.FullName(), Address: coach.Email}
	} else {
		svc.logger.Warn(fmt.Sprintf("workshop %s: coach %s not found", w.ID, w.CoachID))
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.FullName(), Address: usr.Email}},
		ReplyTo:      replyTo,
		Subject:      "Your carbon form",
		TemplateName: "carbon_form",
		TemplateData: carbonFormData{
			Name:         usr.FullName(),
			WorkshopID:   w.ID,
			WorkshopName: w.Name,
			StartAt:      w.StartAt.Format("2006-01-02 15:04 MST"),
		},
	})

	if p, _ := w.Participant(usr.ID); p.Status == StatusCreated || p.Status == StatusExisting {
		w.SetParticipantStatus(usr.ID, StatusFormSent)
		w.UpdatedAt = core.Now()
		if _, err = svc.repo.UpdateWorkshop(ctx, w); err != nil {
			return errors.Wrap(err, "updating workshop")
		}
	}
	return nil
}

// SubmitCarbonForm saves the carbon form answers of the participant owning nfa.Email.
func (svc *service) SubmitCarbonForm(ctx context.Context, workshopID string, nfa carbon.NewFormAnswers) (carbon.FormAnswers, error) {
	w, err := svc.Get(ctx, workshopID)
	if err != nil {
		return carbon.FormAnswers{}, err
	}

	usr, err := svc.users.GetByEmail(ctx, nfa.Email)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return carbon.FormAnswers{}, errNotAParticipant
		}
		return carbon.FormAnswers{}, errors.Wrap(err, "finding user by email")
	}
	if !usr.IsParticipant() || !w.HasParticipant(usr.ID) {
		return carbon.FormAnswers{}, errNotAParticipant
	}

	fa, err := svc.carbon.SaveFormAnswers(ctx, carbon.FormAnswers{
		WorkshopID:    w.ID,
		ParticipantID: usr.ID,
		Answers:       nfa.Answers,
	})
	if err != nil {
		if errors.Cause(err) == carbon.ErrAlreadyAnswered {
			return carbon.FormAnswers{}, errAlreadyAnsweredForm
		}
		return carbon.FormAnswers{}, errors.Wrap(err, "saving form answers")
	}

	w.SetParticipantStatus(usr.ID, StatusToCheck)
	w.UpdatedAt = core.Now()
	if _, err = svc.repo.UpdateWorkshop(ctx, w); err != nil {
		return carbon.FormAnswers{}, errors.Wrap(err, "updating workshop")
	}
	return fa, nil
}

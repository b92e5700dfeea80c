package user

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/caplc/backend/core"
)

var (
	// errors
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")

	errInvalidResetLink = core.NewInvalidDataError("Invalid or expired password reset link.")
)

type (
	Repository interface {
		// CreateUser assigns an ID to usr if it has none. Returns ErrEmailExists if the email is taken.
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUser(ctx context.Context, filter GetFilter) (User, error)
		// QueryUsers returns the users holding any of filter.Roles (all users if empty).
		QueryUsers(ctx context.Context, filter QueryFilter, orderings ...core.DBOrdering) ([]User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		DeleteUser(ctx context.Context, id string) error
	}

	// TokenBlacklist stores the ids (jti) of revoked access tokens.
	TokenBlacklist interface {
		BlacklistToken(ctx context.Context, jti string, on time.Time) error
		IsTokenBlacklisted(ctx context.Context, jti string) (bool, error)
	}

	// CoachBatches manages the action card batches owned by coaches.
	CoachBatches interface {
		CopyDefaultBatches(ctx context.Context, coachID string) error
		DeleteCoachBatches(ctx context.Context, coachID string) error
	}

	Service interface {
		Authenticate(ctx context.Context, email, pwd string) (User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		Create(ctx context.Context, nu NewUser) (User, error)
		Update(ctx context.Context, usr User) (User, error)
		SetPassword(ctx context.Context, email, pwd string) error
		CreateAdmin(ctx context.Context, nu NewUser) (User, error)

		RevokeToken(ctx context.Context, jti string) error
		IsTokenRevoked(ctx context.Context, jti string) (bool, error)
		RequestPasswordReset(ctx context.Context, email string) error
		ResetPassword(ctx context.Context, data ResetUserPassword) error

		QueryCoaches(ctx context.Context, orderings ...core.DBOrdering) ([]User, error)
		GetCoach(ctx context.Context, id string) (User, error)
		CreateCoach(ctx context.Context, nc NewCoach) (User, error)
		DeleteCoach(ctx context.Context, id string) error

		QueryModerators(ctx context.Context, orderings ...core.DBOrdering) ([]User, error)
		GetModerator(ctx context.Context, id string) (User, error)
		CreateModerator(ctx context.Context, nm NewModerator) (User, error)
		DeleteModerator(ctx context.Context, id string) error
	}

	service struct {
		conf      *core.Config
		repo      Repository
		blacklist TokenBlacklist
		mailSvc   core.EmailService
		batches   CoachBatches
		tokens    resetTokens
		logger    core.Logger
	}
)

var _ Service = (*service)(nil)

// NewService returns the user Service. batches may be nil when coaches never get created (e.g. tools).
func NewService(
	conf *core.Config,
	logger core.Logger,
	repo Repository,
	blacklist TokenBlacklist,
	mailSvc core.EmailService,
	batches CoachBatches,
) Service {
	return &service{
		conf:      conf,
		repo:      repo,
		blacklist: blacklist,
		mailSvc:   mailSvc,
		batches:   batches,
		logger:    logger,
		tokens:    newResetTokens(conf.SecretKey, conf.Server.PasswordResetTimeoutDelta),
	}
}

func notFoundAs(err error, target error) error {
	if errors.Cause(err) == ErrNotFound {
		return target
	}
	return err
}

func (svc *service) Authenticate(ctx context.Context, email, pwd string) (User, error) {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return User{}, notFoundAs(err, core.ErrEmailNotFound)
	}
	if len(usr.PasswordHash) == 0 || usr.CheckPassword(pwd) != nil {
		return User{}, core.ErrInvalidPassword
	}
	return usr, nil
}

func (svc *service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}

func (svc *service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := core.Now()
	usr := User{
		FirstName: core.CleanString(nu.FirstName),
		LastName:  core.CleanString(nu.LastName),
		Email:     core.CleanString(nu.Email, true /* lower */),
		Roles:     nu.Roles,
		City:      nu.City,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if nu.Password != "" {
		if err := usr.SetPassword(nu.Password); err != nil {
			return User{}, errors.Wrap(err, "setting password")
		}
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if errors.Cause(err) == ErrEmailExists {
		return User{}, core.ErrUserAlreadyExists
	}
	return usr, errors.Wrap(err, "creating user")
}

func (svc *service) Update(ctx context.Context, usr User) (User, error) {
	usr.UpdatedAt = core.Now()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *service) SetPassword(ctx context.Context, email, pwd string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "setting password")
	}
	_, err = svc.Update(ctx, usr)
	return err
}

// CreateAdmin creates an admin (who is also a coach) or promotes the user owning nu.Email.
func (svc *service) CreateAdmin(ctx context.Context, nu NewUser) (User, error) {
	if nu.City == "" {
		nu.City = svc.conf.DefaultCity()
	}

	usr, err := svc.GetByEmail(ctx, nu.Email)
	switch {
	case err == nil:
		wasCoach := usr.IsCoach()
		usr.AddRole(RoleAdmin)
		usr.AddRole(RoleCoach)
		if usr.City == "" {
			usr.City = nu.City
		}
		if err = usr.SetPassword(nu.Password); err != nil {
			return User{}, errors.Wrap(err, "setting password")
		}
		if usr, err = svc.Update(ctx, usr); err != nil {
			return User{}, errors.Wrap(err, "updating user")
		}
		if !wasCoach {
			return usr, svc.copyDefaultBatches(ctx, usr)
		}
		return usr, nil
	case errors.Cause(err) == ErrNotFound:
		nu.Roles = []string{RoleAdmin, RoleCoach}
		if usr, err = svc.Create(ctx, nu); err != nil {
			return User{}, err
		}
		return usr, svc.copyDefaultBatches(ctx, usr)
	default:
		return User{}, errors.Wrap(err, "finding user by email")
	}
}

func (svc *service) RevokeToken(ctx context.Context, jti string) error {
	return svc.blacklist.BlacklistToken(ctx, jti, core.Now())
}

func (svc *service) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	return svc.blacklist.IsTokenBlacklisted(ctx, jti)
}

// RequestPasswordReset mails a password reset link to the user owning email.
func (svc *service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	go svc.sendPasswordResetMail(usr)
	return nil
}

type passwordResetData struct {
	Name  string
	UID   string
	Token string
}

func (svc *service) sendPasswordResetMail(usr User) {
	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: usr.FullName(), Address: usr.Email}},
		Subject:      "Password reset",
		TemplateName: "password_reset",
		TemplateData: passwordResetData{
			Name:  usr.FullName(),
			UID:   EncodeUID(usr),
			Token: svc.tokens.make(usr),
		},
	}
	svc.mailSvc.SendMessages(msg)
}

func (svc *service) ResetPassword(ctx context.Context, data ResetUserPassword) error {
	id, err := decodeUID(data.UID)
	if err != nil {
		return errInvalidResetLink
	}
	usr, err := svc.GetByID(ctx, id)
	if err != nil {
		return notFoundAs(err, errInvalidResetLink)
	}
	if err = svc.tokens.check(usr, data.Token); err != nil {
		return errInvalidResetLink
	}
	if err = usr.SetPassword(data.Password); err != nil {
		return errors.Wrap(err, "setting password")
	}
	_, err = svc.Update(ctx, usr)
	return errors.Wrap(err, "updating user")
}

// Coaches

func (svc *service) QueryCoaches(ctx context.Context, orderings ...core.DBOrdering) ([]User, error) {
	return svc.repo.QueryUsers(ctx, QueryFilter{Roles: []string{RoleCoach, RoleAdmin}}, orderings...)
}

func (svc *service) GetCoach(ctx context.Context, id string) (User, error) {
	usr, err := svc.GetByID(ctx, id)
	if err != nil {
		return User{}, notFoundAs(err, core.ErrEntityNotFound)
	}
	if !usr.IsCoach() {
		return User{}, core.ErrEntityNotFound
	}
	return usr, nil
}

// CreateCoach creates a coach (or admin) from nc.
// A participant already registered with nc.Email is promoted instead.
func (svc *service) CreateCoach(ctx context.Context, nc NewCoach) (User, error) {
	roles := []string{RoleCoach}
	if nc.Role == RoleAdmin {
		roles = []string{RoleAdmin, RoleCoach}
	}

	usr, err := svc.GetByEmail(ctx, nc.Email)
	switch {
	case err == nil:
		if !usr.IsParticipant() || usr.IsCoach() {
			return User{}, core.ErrUserAlreadyExists
		}
		for _, role := range roles {
			usr.AddRole(role)
		}
		usr.FirstName = nc.FirstName
		usr.LastName = nc.LastName
		usr.City = nc.City
		if err = usr.SetPassword(nc.Password); err != nil {
			return User{}, errors.Wrap(err, "setting password")
		}
		if usr, err = svc.Update(ctx, usr); err != nil {
			return User{}, errors.Wrap(err, "promoting participant")
		}
	case errors.Cause(err) == ErrNotFound:
		usr, err = svc.Create(ctx, NewUser{
			FirstName: nc.FirstName,
			LastName:  nc.LastName,
			Email:     nc.Email,
			Password:  nc.Password,
			Roles:     roles,
			City:      nc.City,
		})
		if err != nil {
			return User{}, err
		}
	default:
		return User{}, errors.Wrap(err, "finding user by email")
	}

	return usr, svc.copyDefaultBatches(ctx, usr)
}

func (svc *service) copyDefaultBatches(ctx context.Context, coach User) error {
	if svc.batches == nil {
		return nil
	}
	return errors.Wrap(svc.batches.CopyDefaultBatches(ctx, coach.ID), "copying default batches")
}

func (svc *service) DeleteCoach(ctx context.Context, id string) error {
	usr, err := svc.GetCoach(ctx, id)
	if err != nil {
		return err
	}
	if usr.IsAdmin() {
		return core.ErrAdminDeletion
	}
	if err = svc.repo.DeleteUser(ctx, id); err != nil {
		return notFoundAs(err, core.ErrEntityNotFound)
	}
	if svc.batches != nil {
		if err = svc.batches.DeleteCoachBatches(ctx, id); err != nil {
			svc.logger.Error(fmt.Sprintf("deleting batches of coach %s: %v", id, err), err)
		}
	}
	return nil
}

// Moderators

func (svc *service) QueryModerators(ctx context.Context, orderings ...core.DBOrdering) ([]User, error) {
	return svc.repo.QueryUsers(ctx, QueryFilter{Roles: []string{RoleModerator}}, orderings...)
}

func (svc *service) GetModerator(ctx context.Context, id string) (User, error) {
	usr, err := svc.GetByID(ctx, id)
	if err != nil {
		return User{}, notFoundAs(err, core.ErrEntityNotFound)
	}
	if !usr.IsModerator() {
		return User{}, core.ErrEntityNotFound
	}
	return usr, nil
}

func (svc *service) CreateModerator(ctx context.Context, nm NewModerator) (User, error) {
	return svc.Create(ctx, NewUser{
		FirstName: nm.FirstName,
		LastName:  nm.LastName,
		Email:     nm.Email,
		Password:  nm.Password,
		Roles:     []string{RoleModerator},
	})
}

func (svc *service) DeleteModerator(ctx context.Context, id string) error {
	usr, err := svc.GetModerator(ctx, id)
	if err != nil {
		return err
	}
	if usr.IsAdmin() {
		return core.ErrAdminDeletion
	}
	return notFoundAs(svc.repo.DeleteUser(ctx, id), core.ErrEntityNotFound)
}

package user

import (
	"context"

	"github.com/caplc/backend/core"
)

type serviceMock struct {
	service
}

// NewServiceMock returns a Service that sends its emails synchronously.
func NewServiceMock(
	conf *core.Config,
	logger core.Logger,
	repo Repository,
	blacklist TokenBlacklist,
	mailSvc core.EmailService,
	batches CoachBatches,
) Service {
	svc := NewService(conf, logger, repo, blacklist, mailSvc, batches).(*service)
	return &serviceMock{service: *svc}
}

func (svc *serviceMock) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	// run synchronously
	svc.sendPasswordResetMail(usr)
	return nil
}

// MakeResetToken exposes the password reset token of usr to tests.
func (svc *serviceMock) MakeResetToken(usr User) string {
	return svc.tokens.make(usr)
}

package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/caplc/backend/apps/api/echo"
	"github.com/caplc/backend/core"
	"github.com/caplc/backend/core/actioncard"
	"github.com/caplc/backend/core/carbon"
	"github.com/caplc/backend/core/user"
	"github.com/caplc/backend/core/workshop"
	emailsvc "github.com/caplc/backend/services/email"
	logsvc "github.com/caplc/backend/services/logger"
	"github.com/caplc/backend/storage/database"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// Repositories spreads the database repositories into the container.
type Repositories struct {
	dig.Out
	DB        core.DB
	Users     user.Repository
	Blacklist user.TokenBlacklist
	Cards     actioncard.Repository
	Carbon    carbon.Repository
	Workshops workshop.Repository
}

type ServerParams struct {
	dig.In
	Conf        *core.Config
	Logger      core.Logger
	UserSvc     user.Service
	CardSvc     actioncard.Service
	WorkshopSvc workshop.Service
	Validate    *validator.Validate
	Translator  ut.Translator
}

func newLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(logsvc.NewStdLogger(os.Stdout, conf), conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	std := logsvc.NewStdLogger(os.Stdout, conf)
	std.SetPrefix("DB")
	std.SetReportCaller(true)
	return logsvc.NewRollbarLogger(std, conf)
}

func newRepositories(conf *core.Config, loggerParam DBLoggerParam) Repositories {
	repos, err := database.Open(context.Background(), conf)
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	loggerParam.Logger.Info(fmt.Sprintf("database ready : engine %q", conf.Database.Engine))
	return Repositories{
		DB:        repos.DB,
		Users:     repos.Users,
		Blacklist: repos.Blacklist,
		Cards:     repos.Cards,
		Carbon:    repos.Carbon,
		Workshops: repos.Workshops,
	}
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newCoachBatches(svc actioncard.Service) user.CoachBatches {
	return svc
}

func newServer(p ServerParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:          p.Conf,
		Logger:        p.Logger,
		UserSvc:       p.UserSvc,
		ActionCardSvc: p.CardSvc,
		WorkshopSvc:   p.WorkshopSvc,
		Validate:      p.Validate,
		Translator:    p.Translator,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newRepositories))
	must(c.Provide(newEmailService))
	must(c.Provide(validator.New))
	must(c.Provide(core.NewTranslator))

	must(c.Provide(actioncard.NewService))
	must(c.Provide(newCoachBatches))
	must(c.Provide(carbon.NewService))
	must(c.Provide(user.NewService))
	must(c.Provide(workshop.NewService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/caplc/backend/core"
	"github.com/caplc/backend/core/actioncard"
	"github.com/caplc/backend/core/carbon"
	"github.com/caplc/backend/core/user"
	emailsvc "github.com/caplc/backend/services/email"
	logsvc "github.com/caplc/backend/services/logger"
	"github.com/caplc/backend/storage/database"
)

func main() {
	conf := core.NewConfig()
	std := logsvc.NewStdLogger(os.Stdout, conf)
	std.SetPrefix("ADMIN")
	logger := logsvc.NewRollbarLogger(std, conf)

	ctx := context.Background()
	repos, err := database.Open(ctx, conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator, conf.Cities)

	cardSvc := actioncard.NewService(repos.Cards)
	cli := commandLine{
		usrSvc:    user.NewService(conf, logger, repos.Users, repos.Blacklist, emailsvc.NewConsoleService(conf, logger), cardSvc),
		cardSvc:   cardSvc,
		carbonSvc: carbon.NewService(repos.Carbon),
		validate:  validate,
		out:       os.Stdout,
	}

	err = cli.run(os.Args)
	_ = repos.DB.Close(ctx)
	if err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("error: %v", err), err)
		}
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/caplc/backend/core"
	"github.com/caplc/backend/core/user"
)

func (cli *commandLine) createAdminCmd() *cobra.Command {
	var firstName, lastName, email string
	cmd := &cobra.Command{
		Use:   "createadmin",
		Short: "Create an admin, or promote an existing user. The password is prompted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := vala.BeginValidation().Validate(
				vala.StringNotEmpty(firstName, "firstname"),
				vala.StringNotEmpty(lastName, "lastname"),
				vala.StringNotEmpty(email, "email"),
			).Check()
			if err != nil {
				_ = cmd.Usage()
				return err
			}
			pwd, err := cli.promptPassword()
			if err != nil {
				return err
			}
			return cli.createAdmin(firstName, lastName, email, pwd)
		},
	}
	cmd.Flags().StringVar(&firstName, "firstname", "", "The admin's first name")
	cmd.Flags().StringVar(&lastName, "lastname", "", "The admin's last name")
	cmd.Flags().StringVar(&email, "email", "", "The admin's email")
	return cmd
}

// createAdmin creates or updates the user owning email, with roles [admin, coach].
func (cli *commandLine) createAdmin(firstName, lastName, email, pwd string) error {
	nu := user.NewUser{
		FirstName: core.CleanString(firstName),
		LastName:  core.CleanString(lastName),
		Email:     core.CleanString(email, true /* lower */),
		Password:  pwd,
	}
	if err := cli.validate.Struct(nu); err != nil {
		return errors.Wrap(err, "invalid admin")
	}

	usr, err := cli.usrSvc.CreateAdmin(context.Background(), nu)
	if err != nil {
		return errors.Wrap(err, "creating admin")
	}
	fmt.Fprintf(cli.out, "admin %s <%s> ready\n", usr.FullName(), usr.Email)
	return nil
}

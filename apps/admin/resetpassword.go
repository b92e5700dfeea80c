package main

import (
	"context"
	"fmt"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func (cli *commandLine) resetPasswordCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "resetpassword",
		Short: "Reset a user's password. The password is prompted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := vala.BeginValidation().Validate(vala.StringNotEmpty(email, "email")).Check(); err != nil {
				_ = cmd.Usage()
				return err
			}
			pwd, err := cli.promptPassword()
			if err != nil {
				return err
			}
			return cli.resetPassword(email, pwd)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "The user's email")
	return cmd
}

func (cli *commandLine) resetPassword(email, pwd string) error {
	if err := cli.usrSvc.SetPassword(context.Background(), email, pwd); err != nil {
		return errors.Wrap(err, "setting password")
	}
	fmt.Fprintln(cli.out, "password updated")
	return nil
}

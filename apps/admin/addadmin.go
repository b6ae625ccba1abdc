package main

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/nawanshu18/student-result-management-system/core"
	"github.com/nawanshu18/student-result-management-system/core/admin"
)

// addAdmin creates an admin.Admin after applying the password policy.
func (cli *commandLine) addAdmin(uname, email, pwd string) error {
	na := admin.NewAdmin{
		Username:        uname,
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
	}
	if err := na.Validate(cli.validate, cli.adminSvc); err != nil {
		return cli.translate(err)
	}
	adm, err := cli.adminSvc.Create(context.Background(), na)
	if err != nil {
		return err
	}
	cli.printf("Admin %q created.\n", adm.Username)
	return nil
}

// translate turns validation failures into a readable error.
func (cli *commandLine) translate(err error) error {
	if msgs := core.TranslateErrors(errors.Cause(err), cli.translator); len(msgs) > 0 {
		return errors.New(strings.Join(msgs, "; "))
	}
	return err
}

package main

import (
	"context"

	"github.com/nawanshu18/student-result-management-system/core/admin"
)

func (cli *commandLine) resetPassword(uname, pwd string) error {
	ctx := context.Background()
	adm, err := cli.adminSvc.GetByUsername(ctx, uname)
	if err != nil {
		return err
	}
	rp := admin.ResetPassword{Password: pwd}
	if err := rp.Validate(adm, cli.validate); err != nil {
		return cli.translate(err)
	}
	if err := cli.adminSvc.ResetPassword(ctx, adm.Username, rp.Password); err != nil {
		return err
	}
	cli.printf("Password of %q has been reset.\n", adm.Username)
	return nil
}

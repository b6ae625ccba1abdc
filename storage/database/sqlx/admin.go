package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/nawanshu18/student-result-management-system/core"
	"github.com/nawanshu18/student-result-management-system/core/admin"
)

var adminColumns = []string{
	"username", "email", "password_hash", "security_question", "security_answer_hash",
	"otp_hash", "otp_expires_at", "created_at", "updated_at", "last_login",
}

type adminRow struct {
	Username           string     `db:"username"`
	Email              string     `db:"email"`
	PasswordHash       []byte     `db:"password_hash"`
	SecurityQuestion   string     `db:"security_question"`
	SecurityAnswerHash null.Bytes `db:"security_answer_hash"`
	OTPHash            null.Bytes `db:"otp_hash"`
	OTPExpiresAt       null.Time  `db:"otp_expires_at"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
	LastLogin          null.Time  `db:"last_login"`
}

type adminRepository struct {
	exec core.DBExecutor
}

var _ admin.Repository = (*adminRepository)(nil) // interface compliance check

func NewAdminRepository(exec core.DBExecutor) *adminRepository {
	return &adminRepository{exec: exec}
}

func (repo adminRepository) toRow(adm admin.Admin) adminRow {
	return adminRow{
		Username:           adm.Username,
		Email:              adm.Email,
		PasswordHash:       adm.PasswordHash,
		SecurityQuestion:   adm.SecurityQuestion,
		SecurityAnswerHash: null.NewBytes(adm.SecurityAnswerHash, len(adm.SecurityAnswerHash) > 0),
		OTPHash:            null.NewBytes(adm.OTPHash, len(adm.OTPHash) > 0),
		OTPExpiresAt:       null.NewTime(adm.OTPExpiresAt.UTC(), !adm.OTPExpiresAt.IsZero()),
		CreatedAt:          adm.CreatedAt.UTC(),
		UpdatedAt:          adm.UpdatedAt.UTC(),
		LastLogin:          null.NewTime(adm.LastLogin.UTC(), !adm.LastLogin.IsZero()),
	}
}

func (repo adminRepository) fromRow(row adminRow) admin.Admin {
	adm := admin.Admin{
		Username:           row.Username,
		Email:              row.Email,
		PasswordHash:       row.PasswordHash,
		SecurityQuestion:   row.SecurityQuestion,
		SecurityAnswerHash: row.SecurityAnswerHash.Bytes,
		OTPHash:            row.OTPHash.Bytes,
		CreatedAt:          row.CreatedAt.UTC(),
		UpdatedAt:          row.UpdatedAt.UTC(),
	}
	if row.OTPExpiresAt.Valid {
		adm.OTPExpiresAt = row.OTPExpiresAt.Time.UTC()
	}
	if row.LastLogin.Valid {
		adm.LastLogin = row.LastLogin.Time.UTC()
	}
	return adm
}

func (repo adminRepository) CreateAdmin(ctx context.Context, adm admin.Admin, exec ...core.DBExecutor) (admin.Admin, error) {
	e := getExec(repo.exec, exec)
	row := repo.toRow(adm)
	q, args, err := builder(e).
		Insert("admins").
		Columns(adminColumns...).
		Values(row.Username, row.Email, row.PasswordHash, row.SecurityQuestion, row.SecurityAnswerHash,
			row.OTPHash, row.OTPExpiresAt, row.CreatedAt, row.UpdatedAt, row.LastLogin).
		ToSql()
	if err != nil {
		return admin.Admin{}, errors.Wrap(err, "building query")
	}
	if _, err = e.ExecContext(ctx, q, args...); err != nil {
		return admin.Admin{}, errors.Wrap(err, "inserting admin")
	}
	return repo.GetAdmin(ctx, adm.Username, e)
}

func (repo adminRepository) GetAdmin(ctx context.Context, username string, exec ...core.DBExecutor) (admin.Admin, error) {
	e := getExec(repo.exec, exec)
	q, args, err := builder(e).
		Select(adminColumns...).
		From("admins").
		Where(sq.Eq{"username": username}).
		ToSql()
	if err != nil {
		return admin.Admin{}, errors.Wrap(err, "building query")
	}
	var row adminRow
	if err = e.GetContext(ctx, &row, q, args...); err != nil {
		return admin.Admin{}, trapNoRowsErr(err, admin.ErrNotFound)
	}
	return repo.fromRow(row), nil
}

func (repo adminRepository) UpdateAdmin(ctx context.Context, adm admin.Admin, exec ...core.DBExecutor) (admin.Admin, error) {
	e := getExec(repo.exec, exec)
	row := repo.toRow(adm)
	q, args, err := builder(e).
		Update("admins").
		SetMap(map[string]interface{}{
			"email":                row.Email,
			"password_hash":        row.PasswordHash,
			"security_question":    row.SecurityQuestion,
			"security_answer_hash": row.SecurityAnswerHash,
			"otp_hash":             row.OTPHash,
			"otp_expires_at":       row.OTPExpiresAt,
			"updated_at":           row.UpdatedAt,
			"last_login":           row.LastLogin,
		}).
		Where(sq.Eq{"username": adm.Username}).
		ToSql()
	if err != nil {
		return admin.Admin{}, errors.Wrap(err, "building query")
	}
	res, err := e.ExecContext(ctx, q, args...)
	if err != nil {
		return admin.Admin{}, errors.Wrap(err, "updating admin")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return admin.Admin{}, admin.ErrNotFound
	}
	return repo.GetAdmin(ctx, adm.Username, e)
}

func (repo adminRepository) CountAdmins(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	e := getExec(repo.exec, exec)
	var n int
	err := e.GetContext(ctx, &n, "SELECT COUNT(*) FROM admins")
	return n, errors.Wrap(err, "counting admins")
}

package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/nawanshu18/student-result-management-system/core"
	"github.com/nawanshu18/student-result-management-system/core/admin"
	"github.com/nawanshu18/student-result-management-system/core/mark"
	"github.com/nawanshu18/student-result-management-system/core/student"
	"github.com/nawanshu18/student-result-management-system/storage/database"
	sqlxrepos "github.com/nawanshu18/student-result-management-system/storage/database/sqlx"
)

// NewConfig returns the configuration used by tests.
func NewConfig() *core.Config {
	conf := core.NewConfig()
	conf.Debug = false
	conf.TestMode = true
	conf.SecretKey = "test-secret"
	conf.Server.DisableRequestLogs = true
	conf.Database.Engine = database.EngineSQLite
	return conf
}

// PrepareDB opens a fresh, migrated SQLite database living in t.TempDir().
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()

	conf := NewConfig()
	conf.Database.Path = filepath.Join(t.TempDir(), "test.sqlite")

	db, err := database.Open(conf)
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

// NewValidator returns a validator and its translator with every package's custom tags registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	core.InitValidators(validate, translator)
	student.InitValidators(validate, translator)
	mark.InitValidators(validate, translator)
	admin.InitValidators(validate, translator)
	return validate, translator
}

func CreateStudent(t *testing.T, repo student.Repository, roll, name, class, dob string, createdAt ...time.Time) student.Student {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	s, err := repo.CreateStudent(context.Background(), student.Student{
		Roll:      roll,
		Name:      name,
		Class:     class,
		DOB:       dob,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return s
}

func CreateMark(t *testing.T, repo mark.Repository, roll, subject, examType string, score, maxScore int) mark.Mark {
	t.Helper()

	if examType == "" {
		examType = mark.DefaultExamType
	}
	now := time.Now().UTC()
	m, err := repo.UpsertMark(context.Background(), mark.Mark{
		Roll:      roll,
		Subject:   subject,
		ExamType:  examType,
		Score:     score,
		MaxScore:  maxScore,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateMark() failed: %v", err)
	}
	return m
}

// CreateAdmin stores an admin; question and answer are only set when both are given.
func CreateAdmin(t *testing.T, repo admin.Repository, username, email, pwd, question, answer string) admin.Admin {
	t.Helper()

	now := time.Now().UTC()
	adm := admin.Admin{
		Username:  username,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := adm.SetPassword(pwd); err != nil {
		t.Fatalf("CreateAdmin() failed: %v", err)
	}
	if question != "" && answer != "" {
		if err := adm.SetSecurityAnswer(question, answer); err != nil {
			t.Fatalf("CreateAdmin() failed: %v", err)
		}
	}
	adm, err := repo.CreateAdmin(context.Background(), adm)
	if err != nil {
		t.Fatalf("CreateAdmin() failed: %v", err)
	}
	return adm
}

// Repos bundles the sqlx repositories of one test database.
type Repos struct {
	Students student.Repository
	Marks    mark.Repository
	Admins   admin.Repository
}

func NewRepos(db *sqlx.DB) Repos {
	return Repos{
		Students: sqlxrepos.NewStudentRepository(db),
		Marks:    sqlxrepos.NewMarkRepository(db),
		Admins:   sqlxrepos.NewAdminRepository(db),
	}
}

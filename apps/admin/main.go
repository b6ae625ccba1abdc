package main

import (
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/nawanshu18/student-result-management-system/core"
	"github.com/nawanshu18/student-result-management-system/core/admin"
	"github.com/nawanshu18/student-result-management-system/core/importer"
	"github.com/nawanshu18/student-result-management-system/core/mark"
	"github.com/nawanshu18/student-result-management-system/core/student"
	emailsvc "github.com/nawanshu18/student-result-management-system/services/email"
	logsvc "github.com/nawanshu18/student-result-management-system/services/logger"
	"github.com/nawanshu18/student-result-management-system/storage/database"
	sqlxrepos "github.com/nawanshu18/student-result-management-system/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	if len(os.Args) > 1 && os.Args[1] != "migrate" {
		errAndDie(database.Migrate(db))
	}

	// set up services
	appLogger := logsvc.NewRollbarLogger(logger, conf)
	appLogger.Enable(!conf.Debug)

	validate := validator.New()
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	core.InitValidators(validate, translator)
	student.InitValidators(validate, translator)
	mark.InitValidators(validate, translator)
	admin.InitValidators(validate, translator)

	students := sqlxrepos.NewStudentRepository(db)
	marks := sqlxrepos.NewMarkRepository(db)
	studentSvc := student.NewService(db, students, marks)
	markSvc := mark.NewService(db, marks, students)

	// start CLI
	cli := commandLine{
		db:         db,
		validate:   validate,
		translator: translator,
		adminSvc: admin.NewService(
			sqlxrepos.NewAdminRepository(db),
			emailsvc.NewConsoleService(conf, appLogger),
			admin.NewOptions(conf),
		),
		importer: importer.New(validate, translator, studentSvc, markSvc),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		_ = db.Close()
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}

package dig_container

import (
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/nawanshu18/student-result-management-system/apps/api/echo"
	"github.com/nawanshu18/student-result-management-system/core"
	"github.com/nawanshu18/student-result-management-system/core/admin"
	"github.com/nawanshu18/student-result-management-system/core/importer"
	"github.com/nawanshu18/student-result-management-system/core/mark"
	"github.com/nawanshu18/student-result-management-system/core/report"
	"github.com/nawanshu18/student-result-management-system/core/student"
	emailsvc "github.com/nawanshu18/student-result-management-system/services/email"
	logsvc "github.com/nawanshu18/student-result-management-system/services/logger"
	"github.com/nawanshu18/student-result-management-system/storage/database"
	sqlxrepos "github.com/nawanshu18/student-result-management-system/storage/database/sqlx"
)

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	// repositories are built over the same connection pool
	repositories struct {
		dig.Out
		Students student.Repository
		Marks    mark.Repository
		Admins   admin.Repository
	}

	serverParams struct {
		dig.In
		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator
		AdminSvc   admin.Service
		StudentSvc student.Service
		MarkSvc    mark.Service
		ReportSvc  report.Service
		Importer   *importer.Importer
	}
)

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) (*sqlx.DB, core.DB) {
	setUp := func() (*sqlx.DB, error) {
		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}
		if err = database.Migrate(db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db, db
}

func newRepositories(db core.DB) repositories {
	return repositories{
		Students: sqlxrepos.NewStudentRepository(db),
		Marks:    sqlxrepos.NewMarkRepository(db),
		Admins:   sqlxrepos.NewAdminRepository(db),
	}
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func newAdminService(conf *core.Config, repo admin.Repository, mailSvc core.EmailService) admin.Service {
	return admin.NewService(repo, mailSvc, admin.NewOptions(conf))
}

func newStudentService(db core.DB, repo student.Repository, marks mark.Repository) student.Service {
	return student.NewService(db, repo, marks)
}

func newMarkService(db core.DB, repo mark.Repository, students student.Repository) mark.Service {
	return mark.NewService(db, repo, students)
}

func newReportService(students student.Repository, marks mark.Repository) report.Service {
	return report.NewService(students, marks)
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:       p.Conf,
		Logger:     p.Logger,
		Validate:   p.Validate,
		Translator: p.Translator,
		AdminSvc:   p.AdminSvc,
		StudentSvc: p.StudentSvc,
		MarkSvc:    p.MarkSvc,
		ReportSvc:  p.ReportSvc,
		Importer:   p.Importer,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newRepositories))
	must(c.Provide(newEmailService))
	must(c.Provide(validator.New))
	must(c.Provide(newTranslator))
	must(c.Provide(newAdminService))
	must(c.Provide(newStudentService))
	must(c.Provide(newMarkService))
	must(c.Provide(newReportService))
	must(c.Provide(importer.New))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}

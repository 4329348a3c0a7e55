// Package shared wires the services every app (API server, admin CLI) runs on.
package shared

import (
	"context"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darslik/core"
	"github.com/trezcool/darslik/core/course"
	"github.com/trezcool/darslik/core/generation"
	"github.com/trezcool/darslik/core/notify"
	"github.com/trezcool/darslik/core/provider"
	"github.com/trezcool/darslik/core/quiz"
	"github.com/trezcool/darslik/core/user"
	emailsvc "github.com/trezcool/darslik/services/email"
	filesvc "github.com/trezcool/darslik/services/files"
	llmsvc "github.com/trezcool/darslik/services/llm"
	logsvc "github.com/trezcool/darslik/services/logger"
	metricsvc "github.com/trezcool/darslik/services/metrics"
	"github.com/trezcool/darslik/storage/database"
	sqlxrepos "github.com/trezcool/darslik/storage/database/sqlx"
)

type Container struct {
	Conf       *core.Config
	Logger     core.Logger
	DB         *sqlx.DB
	Validate   *validator.Validate
	Translator ut.Translator
	Metrics    *metricsvc.Prom

	UserRepo     user.Repository
	ProviderRepo provider.Repository
	CourseRepo   course.Repository
	QuizRepo     quiz.Repository

	Files       course.FileStore
	UserSvc     *user.Service
	ProviderSvc *provider.Service
	CourseSvc   *course.Service
	QuizSvc     *quiz.Service
	NotifySvc   *notify.Service

	CourseGen   *generation.CourseGenerator
	FeedbackGen *generation.FeedbackGenerator
	Assistant   *generation.Assistant
}

// NewLogger returns the app logger; rollbar reporting is off in debug mode.
func NewLogger(conf *core.Config, name string) (*logsvc.RollbarLogger, error) {
	sugar, err := logsvc.NewZap(conf)
	if err != nil {
		return nil, errors.Wrap(err, "building zap logger")
	}
	logger := logsvc.NewRollbarLogger(sugar.Named(name), conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger, nil
}

func NewEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug || conf.SendgridApiKey == "" {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func NewTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// NewValidator returns a validator with every app validator & translation registered.
func NewValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	provider.InitValidators(validate, translator)
	course.InitValidators(validate, translator)
	return validate
}

// SetUpDB creates the database if needed, then opens and migrates it.
func SetUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

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

// New builds every service on top of db.
func New(ctx context.Context, conf *core.Config, logger core.Logger, db *sqlx.DB) (*Container, error) {
	files, err := filesvc.NewStore(ctx, conf.Files)
	if err != nil {
		return nil, errors.Wrap(err, "setting up file storage")
	}

	translator := NewTranslator()
	c := &Container{
		Conf:         conf,
		Logger:       logger,
		DB:           db,
		Validate:     NewValidator(translator),
		Translator:   translator,
		Metrics:      metricsvc.NewProm(metricsNamespace(conf)),
		UserRepo:     sqlxrepos.NewUserRepository(db),
		ProviderRepo: sqlxrepos.NewProviderRepository(db),
		CourseRepo:   sqlxrepos.NewCourseRepository(db),
		QuizRepo:     sqlxrepos.NewQuizRepository(db),
		Files:        files,
	}

	mailSvc := NewEmailService(conf, logger)
	c.UserSvc = user.NewService(c.UserRepo)
	c.ProviderSvc = provider.NewService(c.ProviderRepo)
	c.CourseSvc = course.NewService(c.CourseRepo, files)
	c.NotifySvc = notify.NewService(sqlxrepos.NewNotifyRepository(db), mailSvc)
	c.QuizSvc = quiz.NewService(c.QuizRepo, c.CourseSvc, c.UserSvc, c.NotifySvc, conf.Generation.Language)

	factory := llmsvc.NewFactory(logger)
	gen := generation.NewGenerator(conf.Generation, c.Metrics)
	c.CourseGen = generation.NewCourseGenerator(c.CourseRepo, c.QuizRepo, c.ProviderRepo, factory, gen, logger)
	c.FeedbackGen = generation.NewFeedbackGenerator(c.CourseRepo, c.QuizRepo, c.ProviderRepo, factory, gen)
	c.Assistant = generation.NewAssistant(c.CourseSvc, c.ProviderSvc, factory, gen)
	return c, nil
}

// FilesDir is the directory to serve uploads from, if files are stored locally.
func (c *Container) FilesDir() string {
	if local, ok := c.Files.(*filesvc.LocalStore); ok {
		return local.Dir()
	}
	return ""
}

func (c *Container) Close() error {
	if closer, ok := c.Files.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			return errors.Wrap(err, "closing file storage")
		}
	}
	return nil
}

func metricsNamespace(conf *core.Config) string {
	return core.CleanString(conf.AppName, true /* lower */)
}

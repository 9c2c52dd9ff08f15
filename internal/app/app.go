package app

import (
	"os"
	"time"
	_ "time/tzdata"

	"github.com/asaskevich/EventBus"
	"github.com/bwmarrin/snowflake"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/impressalabs/console/config"
	"github.com/impressalabs/console/internal/catalog"
	"github.com/impressalabs/console/internal/composer"
	"github.com/impressalabs/console/internal/session"
	"github.com/impressalabs/console/internal/storage"
	"github.com/impressalabs/console/internal/taxonomy"
)

// Application wires the console together: logger, event bus, collaborator
// clients, the session registry and the background sweep job.
type Application struct {
	appConfig *config.AppConfig
	bus       EventBus.Bus
	sessions  *session.Manager
	uploader  *storage.Client
	creator   *catalog.Client
	node      *snowflake.Node
	sched     *cron.Cron
}

// Ensure Application implements all interfaces
var (
	_ ConfigProvider    = (*Application)(nil)
	_ SessionProvider   = (*Application)(nil)
	_ BusProvider       = (*Application)(nil)
	_ SchedulerProvider = (*Application)(nil)
	_ AppContext        = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) Sessions() *session.Manager {
	return a.sessions
}

func (a *Application) Bus() EventBus.Bus {
	return a.bus
}

// Scheduler returns the cron scheduler
func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

// Catalog returns the data API client
func (a *Application) Catalog() *catalog.Client {
	return a.creator
}

// IdNode returns the snowflake node used for console-local identifiers
func (a *Application) IdNode() *snowflake.Node {
	return a.node
}

func (a *Application) Init(cfg *config.AppConfig) {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	// Initialize zap logger
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	zapConfig.OutputPaths = []string{"stdout"}
	if cfg.Logger.FileEnable {
		zapConfig.OutputPaths = append(zapConfig.OutputPaths, cfg.Logger.Filename)
	}

	// Build logger with file rotation if enabled
	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	} else {
		logger, err = zapConfig.Build(zap.AddCaller(), zap.AddCallerSkip(1))
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)

	a.node, err = snowflake.NewNode(2)
	if err != nil {
		panic(err)
	}

	a.bus = EventBus.New()
	a.uploader = storage.NewClient(cfg)
	a.creator = catalog.NewClient(cfg)

	a.sessions, err = session.NewManager(cfg, a.newComposer)
	if err != nil {
		panic(err)
	}

	a.subscribeComposerEvents()
	a.initJob()

	zap.S().Infof("console initialized, appid: %s", cfg.System.Appid)
}

// newComposer builds one session-scoped composer with its collaborators and
// a fresh vocabulary, so custom taxonomy values never leak across sessions.
func (a *Application) newComposer(sessionID string) *composer.Composer {
	return composer.New(
		taxonomy.NewVocabulary(),
		a.uploader,
		a.creator,
		&busNotifier{bus: a.bus, sessionID: sessionID},
	)
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		a.sched.Stop()
	}
	_ = zap.L().Sync()
}

package app

import (
	"github.com/asaskevich/EventBus"
	"github.com/robfig/cron/v3"

	"github.com/impressalabs/console/config"
	"github.com/impressalabs/console/internal/session"
)

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// SessionProvider provides the operator session registry
type SessionProvider interface {
	Sessions() *session.Manager
}

// BusProvider provides the application event bus
type BusProvider interface {
	Bus() EventBus.Bus
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// AppContext combines all provider interfaces for full application context.
// Services should depend on specific providers or this combined interface.
type AppContext interface {
	ConfigProvider
	SessionProvider
	BusProvider
	SchedulerProvider

	// SchedSessionSweepTask evicts idle sessions immediately
	SchedSessionSweepTask()
}

package app

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, err := time.LoadLocation(a.appConfig.System.Location)
	if err != nil {
		loc = time.Local
	}
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	_, err = a.sched.AddFunc("@every 1m", func() {
		a.SchedSessionSweepTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

// SchedSessionSweepTask evicts idle operator sessions. Eviction closes each
// session's composer, discarding its in-memory batch state.
func (a *Application) SchedSessionSweepTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	before := a.sessions.Count()
	a.sessions.SweepExpired()
	after := a.sessions.Count()
	if before != after {
		zap.L().Info("idle sessions evicted",
			zap.Int("evicted", before-after),
			zap.Int("live", after),
		)
	}
}

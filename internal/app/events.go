package app

import (
	"github.com/asaskevich/EventBus"
	"go.uber.org/zap"

	"github.com/impressalabs/console/internal/adminapi"
)

// Topics carrying the parent catalog view hooks.
const (
	TopicComposerSubmitted = "composer.submitted"
	TopicComposerClosed    = "composer.closed"
)

// busNotifier adapts the event bus to the composer's Notifier interface.
// One notifier per session so subscribers can tell composers apart.
type busNotifier struct {
	bus       EventBus.Bus
	sessionID string
}

func (n *busNotifier) Submitted(count int) {
	n.bus.Publish(TopicComposerSubmitted, n.sessionID, count)
}

func (n *busNotifier) Closed() {
	n.bus.Publish(TopicComposerClosed, n.sessionID)
}

// subscribeComposerEvents attaches the default parent-view reactions: a
// successful submission invalidates the cached catalog listing so the next
// view read refetches.
func (a *Application) subscribeComposerEvents() {
	err := a.bus.Subscribe(TopicComposerSubmitted, func(sessionID string, count int) {
		adminapi.FlushProductListing()
		zap.L().Info("catalog view refresh triggered",
			zap.String("session_id", sessionID),
			zap.Int("count", count),
		)
	})
	if err != nil {
		zap.S().Errorf("subscribe composer events error %s", err.Error())
	}

	err = a.bus.Subscribe(TopicComposerClosed, func(sessionID string) {
		zap.L().Debug("composer dismissed", zap.String("session_id", sessionID))
	})
	if err != nil {
		zap.S().Errorf("subscribe composer events error %s", err.Error())
	}
}

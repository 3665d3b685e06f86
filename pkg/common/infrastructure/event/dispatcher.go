package event

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/entoun8/alshami-store/pkg/common/domain"
)

type logDispatcher struct{}

// NewLogDispatcher returns a dispatcher that records every domain event
// in the structured log.
func NewLogDispatcher() domain.EventDispatcher {
	return &logDispatcher{}
}

func (d *logDispatcher) Dispatch(event domain.Event) error {
	log.WithFields(log.Fields{
		"event":   event.Type(),
		"payload": fmt.Sprintf("%+v", event),
	}).Info("domain event")
	return nil
}

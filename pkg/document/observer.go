package document

import (
	"time"

	"github.com/nainya/spanindex/pkg/labels"
)

// FreezeEvent describes one labeler transitioning from Open to Frozen
type FreezeEvent struct {
	DocumentID string
	TypeName   string
	Kind       labels.Kind
	Count      int
	Duration   time.Duration
}

// Observer receives lifecycle events from documents
type Observer interface {
	LabelerFrozen(FreezeEvent)
}

// Observers fans events out to several observers
type Observers []Observer

// LabelerFrozen implements Observer
func (obs Observers) LabelerFrozen(e FreezeEvent) {
	for _, o := range obs {
		o.LabelerFrozen(e)
	}
}

// Package migrate applies module schema migrations with goose and announces
// each migrated module through a post-migrate signal.
package migrate

import (
	"context"
	"fmt"
	"sync"

	"github.com/leapstack-labs/dbcomments/pkg/comments"
	"github.com/leapstack-labs/dbcomments/pkg/model"
)

// Event is sent once per module after a migrate run.
type Event struct {
	Module      *model.Module
	Verbosity   int
	Interactive bool
	Using       string
	Apps        model.Introspector
}

// Receiver handles a post-migrate event.
type Receiver func(ctx context.Context, ev Event) error

type namedReceiver struct {
	id string
	fn Receiver
}

// Signal dispatches events to connected receivers in connection order.
type Signal struct {
	mu        sync.RWMutex
	receivers []namedReceiver
}

// Connect adds a receiver under id. Connecting an id twice keeps the first.
func (s *Signal) Connect(id string, fn Receiver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.receivers {
		if r.id == id {
			return
		}
	}
	s.receivers = append(s.receivers, namedReceiver{id: id, fn: fn})
}

// Disconnect removes the receiver with id and reports whether it existed.
func (s *Signal) Disconnect(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.receivers {
		if r.id == id {
			s.receivers = append(s.receivers[:i], s.receivers[i+1:]...)
			return true
		}
	}
	return false
}

// Send calls every receiver. The first error stops dispatch.
func (s *Signal) Send(ctx context.Context, ev Event) error {
	s.mu.RLock()
	receivers := append([]namedReceiver(nil), s.receivers...)
	s.mu.RUnlock()

	for _, r := range receivers {
		if err := r.fn(ctx, ev); err != nil {
			return fmt.Errorf("post-migrate receiver %s: %w", r.id, err)
		}
	}
	return nil
}

// CommentsReceiverID is the id CommentsReceiver is connected under.
const CommentsReceiverID = "dbcomments.copy_help_texts_to_database"

// CommentsReceiver adapts a Synchronizer to the post-migrate signal.
func CommentsReceiver(s *comments.Synchronizer) Receiver {
	return func(ctx context.Context, ev Event) error {
		return s.SynchronizeModuleComments(ctx, ev.Module, comments.Options{
			Verbosity:   ev.Verbosity,
			Interactive: ev.Interactive,
			Using:       ev.Using,
			Apps:        ev.Apps,
		})
	}
}

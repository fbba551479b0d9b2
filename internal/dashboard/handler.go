package dashboard

import (
	"encoding/json"
	"time"

	"github.com/dailyfocus/dailyfocus/internal/cloudsync"
	"github.com/dailyfocus/dailyfocus/internal/query"
	"github.com/dailyfocus/dailyfocus/internal/tracker"
)

// StateChangedData describes the mutation behind a state_changed message
type StateChangedData struct {
	Collection tracker.Collection `json:"collection"`
	Op         string             `json:"op"`
	ID         string             `json:"id,omitempty"`
}

// Attach subscribes the server to tracker changes and sync events. The
// returned function removes both subscriptions.
func (s *Server) Attach() func() {
	stopChanges := s.tracker.Subscribe(s.OnChange)
	stopSync := func() {}
	if e := s.tracker.Sync(); e != nil {
		stopSync = e.Subscribe(s.OnSyncEvent)
	}
	return func() {
		stopChanges()
		stopSync()
	}
}

// OnChange broadcasts a committed mutation followed by fresh statistics.
func (s *Server) OnChange(c tracker.Change) {
	data, err := json.Marshal(StateChangedData{Collection: c.Collection, Op: c.Op, ID: c.ID})
	if err != nil {
		s.logger.Printf("Failed to marshal change: %v", err)
		return
	}
	s.Broadcast(Message{Type: MessageTypeStateChanged, Timestamp: time.Now(), Data: data})

	if c.Collection == tracker.CollectionTasks || c.Collection == tracker.CollectionAll {
		if msg, err := s.statsMessage(); err == nil {
			s.Broadcast(msg)
		}
	}
}

// OnSyncEvent broadcasts the outcome of an automatic sync.
func (s *Server) OnSyncEvent(ev cloudsync.Event) {
	s.logger.Printf("Auto %s finished (success=%v): %s", ev.Type, ev.Success, ev.Message)

	data, err := json.Marshal(ev)
	if err != nil {
		s.logger.Printf("Failed to marshal sync event: %v", err)
		return
	}
	s.Broadcast(Message{Type: MessageTypeAutoSyncComplete, Timestamp: time.Now(), Data: data})
}

func (s *Server) statsMessage() (Message, error) {
	data, err := json.Marshal(s.tracker.Stats(query.All))
	if err != nil {
		return Message{}, err
	}
	return Message{Type: MessageTypeStats, Timestamp: time.Now(), Data: data}, nil
}

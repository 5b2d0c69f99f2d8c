package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"
)

func TestWatermillPublisher_GoChannel(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher, pubSub := NewGoChannelPublisher("election-events", logger)
	defer publisher.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := pubSub.Subscribe(ctx, "election-events")
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	event := NewEvent(EventVoteCast, VoteCastEvent{VoteID: 1, ElectionID: 2, PositionID: 3, CandidateID: 4, VoterID: 5})
	if err := publisher.Publish(ctx, event); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case msg := <-messages:
		msg.Ack()
		if got := msg.Metadata.Get("event_type"); got != string(EventVoteCast) {
			t.Errorf("event_type metadata = %q", got)
		}
		var decoded struct {
			ID      string        `json:"id"`
			Type    EventType     `json:"type"`
			Source  string        `json:"source"`
			Version string        `json:"version"`
			Data    VoteCastEvent `json:"data"`
		}
		if err := json.Unmarshal(msg.Payload, &decoded); err != nil {
			t.Fatalf("payload is not JSON: %v", err)
		}
		if decoded.ID != event.ID || decoded.Type != EventVoteCast {
			t.Errorf("decoded envelope = %+v", decoded)
		}
		if decoded.Source != EventSource || decoded.Version != EventVersion {
			t.Errorf("source/version = %q/%q", decoded.Source, decoded.Version)
		}
		if decoded.Data.CandidateID != 4 {
			t.Errorf("data.candidate_id = %d, want 4", decoded.Data.CandidateID)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
}

func TestNewPublisher_DefaultsToInProcess(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher, err := NewPublisher(nil, "election-events", logger)
	if err != nil {
		t.Fatalf("NewPublisher() error = %v", err)
	}
	defer publisher.Close()

	// no subscribers: publishing must not block or fail
	if err := publisher.Publish(context.Background(), NewEvent(EventImportCompleted, ImportCompletedEvent{Entity: "users"})); err != nil {
		t.Errorf("Publish() error = %v", err)
	}
}

func TestMockEventPublisher(t *testing.T) {
	mock := NewMockEventPublisher(slog.Default())
	_ = mock.Publish(context.Background(), NewEvent(EventElectionStatusChanged, nil))
	if got := len(mock.GetPublishedEvents()); got != 1 {
		t.Fatalf("events = %d, want 1", got)
	}
	mock.ClearEvents()
	if got := len(mock.GetPublishedEvents()); got != 0 {
		t.Errorf("events after clear = %d, want 0", got)
	}
}

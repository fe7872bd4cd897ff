package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

// startTestNATS starts an embedded NATS server and returns its client URL.
func startTestNATS(t *testing.T) string {
	t.Helper()
	opts := &natsserver.Options{Host: "127.0.0.1", Port: -1}
	srv, err := natsserver.NewServer(opts)
	if err != nil {
		t.Fatalf("starting embedded NATS: %v", err)
	}
	srv.Start()
	t.Cleanup(srv.Shutdown)
	if !srv.ReadyForConnections(5 * time.Second) {
		t.Fatal("embedded NATS not ready")
	}
	return srv.ClientURL()
}

func TestNoopPublisher(t *testing.T) {
	var pub Publisher = &NoopPublisher{}
	if err := pub.Publish(context.Background(), TopicProjectSaved, ProjectSaved{}); err != nil {
		t.Fatalf("Publish returned unexpected error: %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("Close returned unexpected error: %v", err)
	}
}

func TestImplementsInterfaces(t *testing.T) {
	var _ Publisher = (*NATSPublisher)(nil)
	var _ Subscriber = (*NATSSubscriber)(nil)
}

func TestNATSPublisher_Publish(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	nc, err := nats.Connect(url)
	if err != nil {
		t.Fatalf("connecting subscriber: %v", err)
	}
	defer nc.Close()

	ch := make(chan *nats.Msg, 1)
	sub, err := nc.ChanSubscribe(TopicProjectSaved, ch)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer sub.Unsubscribe() //nolint:errcheck
	nc.Flush()

	event := ProjectSaved{
		ID:      "save-abc",
		Name:    "gantt-project-2024-01-01.json",
		Bytes:   512,
		Project: Summary{StartDate: "2024-01-01", EndDate: "2024-03-01", Tasks: 4, Deadlines: 2},
	}
	if err := pub.Publish(context.Background(), TopicProjectSaved, event); err != nil {
		t.Fatalf("Publish error: %v", err)
	}

	select {
	case msg := <-ch:
		var got ProjectSaved
		if err := json.Unmarshal(msg.Data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.ID != "save-abc" || got.Name != event.Name || got.Project.Tasks != 4 {
			t.Errorf("got %+v, want %+v", got, event)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published message")
	}
}

func TestNATSPublisher_PublishWithDeadline(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := pub.Publish(ctx, TopicProjectLoaded, ProjectLoaded{ID: "load-1"}); err != nil {
		t.Fatalf("Publish error: %v", err)
	}
}

func TestNATSPublisher_Close(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	// Publishing after close should fail.
	if err := pub.Publish(context.Background(), TopicProjectSaved, ProjectSaved{}); err == nil {
		t.Error("expected error publishing after close")
	}
}

func TestNATSSubscriber_ReceivesAllTopics(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	sub, err := NewNATSSubscriber(url)
	if err != nil {
		t.Fatalf("creating subscriber: %v", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(TopicAll)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer cancel()

	if err := pub.Publish(context.Background(), TopicProjectSaved, ProjectSaved{ID: "save-1"}); err != nil {
		t.Fatalf("publish saved: %v", err)
	}
	if err := pub.Publish(context.Background(), TopicProjectLoaded, ProjectLoaded{ID: "load-1"}); err != nil {
		t.Fatalf("publish loaded: %v", err)
	}

	var ids []string
	for i := 0; i < 2; i++ {
		select {
		case data := <-ch:
			var env struct {
				ID string `json:"id"`
			}
			if err := json.Unmarshal(data, &env); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			ids = append(ids, env.ID)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for message %d", i)
		}
	}
	if ids[0] != "save-1" || ids[1] != "load-1" {
		t.Errorf("ids = %v, want [save-1 load-1]", ids)
	}
}

func TestNATSSubscriber_Cancel(t *testing.T) {
	url := startTestNATS(t)

	sub, err := NewNATSSubscriber(url)
	if err != nil {
		t.Fatalf("creating subscriber: %v", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(TopicAll)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}

	cancel()
	cancel() // second call must not panic

	if _, ok := <-ch; ok {
		t.Fatal("expected channel to be closed after cancel")
	}
}

func TestFeed_DropsWhenFullAndAfterStop(t *testing.T) {
	f := &feed{ch: make(chan []byte, feedBuffer)}
	for i := 0; i < feedBuffer+10; i++ {
		f.deliver([]byte{byte(i)})
	}
	if len(f.ch) != feedBuffer {
		t.Fatalf("buffered %d payloads, want %d", len(f.ch), feedBuffer)
	}
	if first := <-f.ch; first[0] != 0 {
		t.Errorf("first payload = %d, want the oldest", first[0])
	}

	f.stop()
	f.stop()
	f.deliver([]byte("late"))
	if _, ok := <-f.ch; ok {
		t.Error("channel still open or holding payloads after stop")
	}
}

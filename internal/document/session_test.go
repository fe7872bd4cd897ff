package document

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alfredjeanlab/gantt/internal/calendar"
	"github.com/alfredjeanlab/gantt/internal/codec"
	"github.com/alfredjeanlab/gantt/internal/events"
	"github.com/alfredjeanlab/gantt/internal/idgen"
	"github.com/alfredjeanlab/gantt/internal/model"
)

// memStore is an in-memory Store whose operations can be made to fail.
type memStore struct {
	docs     map[string][]byte
	writeErr error
	readErr  error
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[string][]byte)}
}

func (m *memStore) Write(_ context.Context, name string, data []byte) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.docs[name] = append([]byte(nil), data...)
	return nil
}

func (m *memStore) Read(_ context.Context, name string) ([]byte, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	data, ok := m.docs[name]
	if !ok {
		return nil, ErrNotExist
	}
	return data, nil
}

type published struct {
	topic string
	event any
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{topic, event})
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

var fixedNow = time.Date(2024, time.March, 5, 22, 30, 0, 0, time.UTC)

func newTestSession(t *testing.T) (*Session, *memStore, *recordingPublisher, *bytes.Buffer) {
	t.Helper()
	store := newMemStore()
	pub := &recordingPublisher{}
	var logs bytes.Buffer
	s := NewSession(store, pub, slog.New(slog.NewTextHandler(&logs, nil)))
	s.Now = func() time.Time { return fixedNow }
	return s, store, pub, &logs
}

func sampleProject(t *testing.T) *model.Project {
	t.Helper()
	p, err := model.NewProject(calendar.MustParse("2024-01-01"), calendar.MustParse("2024-03-31"))
	if err != nil {
		t.Fatalf("NewProject: %v", err)
	}
	p.Tasks = []model.Task{
		{ID: 0, Row: 0, Col: 5, Width: 3, Label: "Design"},
		{ID: 1, Row: 1, Col: 8, Width: 10, Label: "Build"},
	}
	p.Deadlines = []model.Deadline{
		{ID: 0, Col: 20, Label: "Deadline Jan 21"},
		{ID: model.TodayDeadlineID, Col: 64, Label: "Today"},
	}
	return p
}

func TestSuggestedName(t *testing.T) {
	if got := SuggestedName(calendar.MustParse("2024-03-05")); got != "gantt-project-2024-03-05.json" {
		t.Errorf("SuggestedName = %q", got)
	}
}

func TestSession_SaveLoad(t *testing.T) {
	s, store, pub, logs := newTestSession(t)
	ctx := context.Background()
	p := sampleProject(t)

	name, err := s.Save(ctx, p, "")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if want := SuggestedName(calendar.FromTime(fixedNow)); name != want {
		t.Errorf("name = %q, want %q", name, want)
	}
	if _, ok := store.docs[name]; !ok {
		t.Fatalf("nothing written under %q", name)
	}

	back, err := s.Load(ctx, name)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(p, back) {
		t.Errorf("loaded project differs:\n got %+v\nwant %+v", back, p)
	}

	if len(pub.events) != 2 {
		t.Fatalf("published %d events, want 2", len(pub.events))
	}
	saved, ok := pub.events[0].event.(events.ProjectSaved)
	if pub.events[0].topic != events.TopicProjectSaved || !ok {
		t.Fatalf("first event = %+v", pub.events[0])
	}
	if !idgen.Valid(saved.ID) || !strings.HasPrefix(saved.ID, idgen.SavePrefix) {
		t.Errorf("saved event id %q", saved.ID)
	}
	if saved.Name != name || saved.Bytes != len(store.docs[name]) || saved.Project.Tasks != 2 || saved.Project.Deadlines != 2 {
		t.Errorf("saved event = %+v", saved)
	}
	loaded, ok := pub.events[1].event.(events.ProjectLoaded)
	if pub.events[1].topic != events.TopicProjectLoaded || !ok {
		t.Fatalf("second event = %+v", pub.events[1])
	}
	if !strings.HasPrefix(loaded.ID, idgen.LoadPrefix) || loaded.Project.StartDate != "2024-01-01" {
		t.Errorf("loaded event = %+v", loaded)
	}

	if !strings.Contains(logs.String(), "saved project") || !strings.Contains(logs.String(), "loaded project") {
		t.Errorf("logs missing save/load lines:\n%s", logs.String())
	}
}

func TestSession_SaveExplicitName(t *testing.T) {
	s, store, _, _ := newTestSession(t)
	name, err := s.Save(context.Background(), sampleProject(t), "roadmap.json")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if name != "roadmap.json" {
		t.Errorf("name = %q", name)
	}
	if _, ok := store.docs["roadmap.json"]; !ok {
		t.Error("document not written under the given name")
	}
}

func TestSession_SaveRejectsInvalidProject(t *testing.T) {
	for name, tc := range map[string]struct {
		edit func(*model.Project)
		want error
	}{
		"zero width":         {func(p *model.Project) { p.Tasks[0].Width = 0 }, model.ErrInvalidTask},
		"duplicate task":     {func(p *model.Project) { p.Tasks[1].ID = p.Tasks[0].ID }, model.ErrInvalidTask},
		"deadline past 9999": {func(p *model.Project) { p.Deadlines[0].Col = 3_000_000 }, model.ErrInvalidDeadline},
		"end before start":   {func(p *model.Project) { p.EndDate = p.StartDate.AddDays(-1) }, model.ErrInvalidProject},
	} {
		t.Run(name, func(t *testing.T) {
			s, store, pub, _ := newTestSession(t)
			p := sampleProject(t)
			tc.edit(p)

			_, err := s.Save(context.Background(), p, "bad.json")
			if !errors.Is(err, tc.want) {
				t.Fatalf("error = %v, want %v", err, tc.want)
			}
			var ve *model.ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("error = %T, want *model.ValidationError", err)
			}
			if errors.Is(err, ErrIO) {
				t.Errorf("validation error %v tagged as I/O", err)
			}
			if len(store.docs) != 0 {
				t.Errorf("invalid project written: %v", store.docs)
			}
			if len(pub.events) != 0 {
				t.Errorf("invalid save published %d events", len(pub.events))
			}
		})
	}
}

func TestSession_SinkFailure(t *testing.T) {
	s, store, pub, _ := newTestSession(t)
	boom := errors.New("disk full")
	store.writeErr = boom

	_, err := s.Save(context.Background(), sampleProject(t), "a.json")
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("error = %T %v, want *IOError", err, err)
	}
	if ioErr.Op != "save" || ioErr.Name != "a.json" || ioErr.Err != boom {
		t.Errorf("IOError = %+v", ioErr)
	}
	if !errors.Is(err, ErrIO) || !errors.Is(err, boom) {
		t.Errorf("error %v should match both ErrIO and the sink error", err)
	}
	if len(pub.events) != 0 {
		t.Errorf("failed save published %d events", len(pub.events))
	}
}

func TestSession_SourceFailure(t *testing.T) {
	s, store, pub, _ := newTestSession(t)
	boom := errors.New("permission denied")
	store.readErr = boom

	_, err := s.Load(context.Background(), "a.json")
	var ioErr *IOError
	if !errors.As(err, &ioErr) || ioErr.Op != "load" || ioErr.Err != boom {
		t.Fatalf("error = %v, want load IOError wrapping %v", err, boom)
	}
	if len(pub.events) != 0 {
		t.Errorf("failed load published %d events", len(pub.events))
	}
}

func TestSession_DecodeErrorsPassThrough(t *testing.T) {
	for _, tc := range []struct {
		name string
		doc  string
		want error
	}{
		{"not an object", `[1, 2]`, codec.ErrMalformedProject},
		{"missing tasks", `{"startDate":"2024-01-01","endDate":"2024-02-01","deadlines":[]}`, codec.ErrMalformedProject},
		{"bad date", `{"startDate":"2024-13-01","endDate":"2024-02-01","tasks":[],"deadlines":[]}`, codec.ErrMalformedDate},
		{"empty task", `{"startDate":"2024-01-01","endDate":"2024-02-01","tasks":[{"id":0,"row":0,"startDate":"2024-01-05","endDate":"2024-01-05","label":""}],"deadlines":[]}`, model.ErrInvalidTask},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s, store, _, _ := newTestSession(t)
			store.docs["x.json"] = []byte(tc.doc)

			_, err := s.Load(context.Background(), "x.json")
			if !errors.Is(err, tc.want) {
				t.Fatalf("error = %v, want %v", err, tc.want)
			}
			if errors.Is(err, ErrIO) {
				t.Errorf("decode error %v tagged as I/O", err)
			}
		})
	}
}

func TestSession_PublishFailureIsLogged(t *testing.T) {
	s, _, pub, logs := newTestSession(t)
	pub.err = errors.New("no responders")

	if _, err := s.Save(context.Background(), sampleProject(t), "a.json"); err != nil {
		t.Fatalf("Save failed because of publish error: %v", err)
	}
	if !strings.Contains(logs.String(), "no responders") {
		t.Errorf("publish error not logged:\n%s", logs.String())
	}
}

func TestSession_NilCollaborators(t *testing.T) {
	store := newMemStore()
	s := &Session{Sink: store, Source: store}
	name, err := s.Save(context.Background(), sampleProject(t), "")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(name, "gantt-project-") {
		t.Errorf("name = %q", name)
	}
	if _, err := s.Load(context.Background(), name); err != nil {
		t.Fatalf("Load: %v", err)
	}
}

package document

import (
	"context"
	"log/slog"
	"time"

	"github.com/alfredjeanlab/gantt/internal/calendar"
	"github.com/alfredjeanlab/gantt/internal/codec"
	"github.com/alfredjeanlab/gantt/internal/events"
	"github.com/alfredjeanlab/gantt/internal/idgen"
	"github.com/alfredjeanlab/gantt/internal/model"
)

// Session saves and loads projects through a Sink and a Source, publishing
// an event after each successful operation. Nil Publisher, Logger and Now
// fields fall back to a no-op publisher, slog.Default and time.Now.
type Session struct {
	Sink      Sink
	Source    Source
	Publisher events.Publisher
	Logger    *slog.Logger
	Now       func() time.Time
}

// NewSession returns a session reading and writing the same store.
func NewSession(store Store, pub events.Publisher, logger *slog.Logger) *Session {
	return &Session{Sink: store, Source: store, Publisher: pub, Logger: logger}
}

func (s *Session) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *Session) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Session) publisher() events.Publisher {
	if s.Publisher != nil {
		return s.Publisher
	}
	return &events.NoopPublisher{}
}

// Save validates p, encodes it and writes it under name, or under today's
// suggested name when name is empty. It returns the name used. Validation
// and encoding errors are returned unchanged and nothing is written; sink
// errors are wrapped in an *IOError.
func (s *Session) Save(ctx context.Context, p *model.Project, name string) (string, error) {
	if name == "" {
		name = SuggestedName(calendar.FromTime(s.now()))
	}
	if err := model.ValidateProject(p); err != nil {
		s.logger().Warn("refusing to save invalid project", "name", name, "err", err)
		return "", err
	}
	data, err := codec.Encode(p)
	if err != nil {
		return "", err
	}

	log := s.logger().With("op", "save", "name", name)
	if err := s.Sink.Write(ctx, name, data); err != nil {
		log.Error("save failed", "err", err)
		return "", &IOError{Op: "save", Name: name, Err: err}
	}
	log.Info("saved project", "bytes", len(data), "tasks", len(p.Tasks), "deadlines", len(p.Deadlines))

	id, err := idgen.Save()
	if err != nil {
		log.Warn("mint event id", "err", err)
	}
	s.publish(ctx, log, events.TopicProjectSaved, events.ProjectSaved{
		ID:      id,
		Name:    name,
		Bytes:   len(data),
		Project: summarize(p),
		At:      s.now().UTC(),
	})
	return name, nil
}

// Load reads and decodes the named document. Source errors are wrapped in an
// *IOError; decoding errors are returned unchanged.
func (s *Session) Load(ctx context.Context, name string) (*model.Project, error) {
	log := s.logger().With("op", "load", "name", name)
	data, err := s.Source.Read(ctx, name)
	if err != nil {
		log.Error("load failed", "err", err)
		return nil, &IOError{Op: "load", Name: name, Err: err}
	}
	p, err := codec.Decode(data)
	if err != nil {
		log.Error("decode failed", "err", err)
		return nil, err
	}
	log.Info("loaded project", "tasks", len(p.Tasks), "deadlines", len(p.Deadlines))

	id, err := idgen.Load()
	if err != nil {
		log.Warn("mint event id", "err", err)
	}
	s.publish(ctx, log, events.TopicProjectLoaded, events.ProjectLoaded{
		ID:      id,
		Name:    name,
		Project: summarize(p),
		At:      s.now().UTC(),
	})
	return p, nil
}

// publish never fails the caller; a lost notification is only logged.
func (s *Session) publish(ctx context.Context, log *slog.Logger, topic string, event any) {
	if err := s.publisher().Publish(ctx, topic, event); err != nil {
		log.Warn("publish event", "topic", topic, "err", err)
	}
}

func summarize(p *model.Project) events.Summary {
	return events.Summary{
		StartDate: p.StartDate.String(),
		EndDate:   p.EndDate.String(),
		Tasks:     len(p.Tasks),
		Deadlines: len(p.Deadlines),
	}
}

// Package events publishes notifications about project documents being
// saved and loaded. Payloads are JSON; topics share the "gantt." prefix so
// a subscriber can watch everything with "gantt.>".
package events

import (
	"context"
	"time"
)

// Event topic constants
const (
	TopicProjectSaved  = "gantt.project.saved"
	TopicProjectLoaded = "gantt.project.loaded"

	// TopicAll matches every topic above.
	TopicAll = "gantt.>"
)

// Summary describes a project without carrying its contents.
type Summary struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Tasks     int    `json:"tasks"`
	Deadlines int    `json:"deadlines"`
}

// ProjectSaved is published after a document was written to a sink.
type ProjectSaved struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Bytes   int       `json:"bytes"`
	Project Summary   `json:"project"`
	At      time.Time `json:"at"`
}

// ProjectLoaded is published after a document was read and decoded.
type ProjectLoaded struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Project Summary   `json:"project"`
	At      time.Time `json:"at"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

package events

// Subscriber receives events from the event bus. The CLI's watch command
// uses it to follow saves and loads from other editors.
type Subscriber interface {
	// Subscribe delivers raw event payloads on the returned channel.
	// Call the returned cancel function to unsubscribe and close the channel.
	Subscribe(topic string) (<-chan []byte, func(), error)
	Close() error
}

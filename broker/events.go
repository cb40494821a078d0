package broker

type EventType string

const (
	// Standardized event types in format: <resource>.<action>
	NoteCreated EventType = "note.created"
	NoteUpdated EventType = "note.updated"
	NoteDeleted EventType = "note.deleted"

	UserCreated EventType = "user.created"
	UserDeleted EventType = "user.deleted"
)

// Wildcard subjects for consumers interested in every event of an entity.
const (
	NoteEventsSubject = "note.*"
	UserEventsSubject = "user.*"
)

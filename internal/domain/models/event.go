package models

// EventKind names a live-update event sent to subscribers
type EventKind string

const (
	EventConnected     EventKind = "connected"
	EventFileAdded     EventKind = "file:added"
	EventFileDeleted   EventKind = "file:deleted"
	EventFileMoved     EventKind = "file:moved"
	EventFolderAdded   EventKind = "folder:added"
	EventFolderDeleted EventKind = "folder:deleted"
)

// Audience selects which subscriptions an event is delivered to.
//
// Unscoped subscriptions (scope == nil) observe the whole tree and receive
// every event. A folder-scoped subscription receives an event only when its
// folder is one of the audience folders, or when the audience is Everyone.
type Audience struct {
	everyone bool
	folders  []string
}

// Everyone addresses every subscription regardless of scope
func Everyone() Audience {
	return Audience{everyone: true}
}

// Folders addresses subscriptions scoped to any of the given folders.
// Nil entries stand for the root level and only reach unscoped subscriptions.
func Folders(folderIDs ...*string) Audience {
	a := Audience{}
	for _, id := range folderIDs {
		if id != nil {
			a.folders = append(a.folders, *id)
		}
	}
	return a
}

// Includes reports whether a subscription with the given scope receives the event
func (a Audience) Includes(scope *string) bool {
	if a.everyone || scope == nil {
		return true
	}
	for _, id := range a.folders {
		if id == *scope {
			return true
		}
	}
	return false
}

// ConnectedPayload is the handshake sent to a new subscription
type ConnectedPayload struct {
	ClientID string  `json:"clientId"`
	FolderID *string `json:"folderId"`
}

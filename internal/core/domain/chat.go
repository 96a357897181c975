package domain

import "errors"

var ErrConversationNotFound = errors.New("conversation not found")

// ConversationKind labels a conversation. Wire values follow the backend.
type ConversationKind string

const (
	KindTechnicalSupport ConversationKind = "technical support"
	KindTeamChat         ConversationKind = "team"
)

// TechnicalSupportName is the fixed name given to lazily created
// technical-support conversations.
const TechnicalSupportName = "Technical support"

// ChatState is the lifecycle state of a chat session.
//
//	Idle -> Resolving -> Connected -> Closed
//	         Resolving -> NotFound (terminal)
type ChatState int

const (
	ChatIdle ChatState = iota
	ChatResolving
	ChatConnected
	ChatNotFound
	ChatClosed
)

func (s ChatState) String() string {
	switch s {
	case ChatIdle:
		return "idle"
	case ChatResolving:
		return "resolving"
	case ChatConnected:
		return "connected"
	case ChatNotFound:
		return "not_found"
	case ChatClosed:
		return "closed"
	default:
		return "invalid"
	}
}

// Author distinguishes locally composed messages from received ones.
type Author int

const (
	AuthorSelf Author = iota
	AuthorPeer
)

// Message is one entry in a chat session's display log.
type Message struct {
	Author Author `json:"author"`
	Text   string `json:"text"`
}

// Conversation is the metadata the backend reports for an existing
// conversation.
type Conversation struct {
	ID           string
	Name         string
	Kind         ConversationKind
	Participants int
}

// ConversationAccess is the caller-scoped view of a conversation resolved
// by identifier: the participant id to connect as and the name to display.
type ConversationAccess struct {
	ParticipantID string
	DisplayName   string
}

// ChatTarget selects which conversation a chat session should open: the
// caller's technical-support conversation (lazily created) or an explicit
// conversation id from the route.
type ChatTarget struct {
	ConversationID string
}

// TechnicalSupportTarget addresses the caller's own support conversation.
func TechnicalSupportTarget() ChatTarget {
	return ChatTarget{}
}

// TechnicalSupport reports whether the target is the support conversation.
func (t ChatTarget) TechnicalSupport() bool {
	return t.ConversationID == ""
}

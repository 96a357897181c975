package ports

import (
	"context"

	"github.com/skillbridge/resume-gateway/internal/core/domain"
)

// ConversationAPI covers the backend's conversation endpoints.
type ConversationAPI interface {
	// CheckUserConversation looks up the technical-support conversation of
	// a user. Returns domain.ErrConversationNotFound when none exists.
	CheckUserConversation(ctx context.Context, credential, userID string) (*domain.Conversation, error)

	// CreateConversation creates a conversation with the given name and kind.
	CreateConversation(ctx context.Context, credential, name string, kind domain.ConversationKind) (*domain.Conversation, error)

	// ConversationByID resolves a conversation for the caller. Returns
	// domain.ErrConversationNotFound when the backend reports absence.
	ConversationByID(ctx context.Context, credential, conversationID string) (*domain.ConversationAccess, error)
}

// Channel is one full-duplex text transport, addressed by a conversation and
// a participant. Receive blocks until a frame arrives, the context is
// cancelled, or the transport fails.
type Channel interface {
	Send(ctx context.Context, text string) error
	Receive(ctx context.Context) (string, error)
	Close() error
}

// ChannelDialer opens channels against the backend's chat transport.
type ChannelDialer interface {
	Dial(ctx context.Context, conversationID, participantID string) (Channel, error)
}

// ChatSession is a live (or terminally failed) chat session as seen by the
// transport-facing layer.
type ChatSession interface {
	// State reports the session's lifecycle state.
	State() domain.ChatState

	// Title is the display name of the conversation.
	Title() string

	// Log returns a snapshot of the message log in append order.
	Log() []domain.Message

	// Send transmits a message. Whitespace-only input is dropped locally:
	// nothing is appended and no frame is transmitted, reported by the
	// false return.
	Send(ctx context.Context, text string) (bool, error)

	// Inbound streams peer messages in arrival order. The channel is
	// closed when the session ends.
	Inbound() <-chan string

	// Done is closed when the session has terminated.
	Done() <-chan struct{}

	// Close tears the session down. Idempotent.
	Close() error
}

// ChatOpener resolves a chat target and connects its transport.
type ChatOpener interface {
	Open(ctx context.Context, credential string, target domain.ChatTarget) (ChatSession, error)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/skillbridge/resume-gateway/internal/core/domain"
	"github.com/skillbridge/resume-gateway/internal/core/ports"
	"github.com/skillbridge/resume-gateway/internal/metrics"
)

const supportResolveTimeout = 10 * time.Second

// ReconnectPolicy bounds re-dial attempts after the transport fails.
// Attempts <= 0 disables reconnection.
type ReconnectPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// ChatService resolves chat targets and connects their transport.
type ChatService struct {
	sessions      ports.SessionResolver
	directory     ports.UserDirectory
	conversations ports.ConversationAPI
	dialer        ports.ChannelDialer
	reconnect     ReconnectPolicy
	create        singleflight.Group
	log           zerolog.Logger
}

func NewChatService(sessions ports.SessionResolver, directory ports.UserDirectory, conversations ports.ConversationAPI, dialer ports.ChannelDialer, reconnect ReconnectPolicy, log zerolog.Logger) *ChatService {
	return &ChatService{
		sessions:      sessions,
		directory:     directory,
		conversations: conversations,
		dialer:        dialer,
		reconnect:     reconnect,
		log:           log,
	}
}

// Open implements ports.ChatOpener.
//
// Technical-support targets are lazily created and never absent to the
// initiating user. Explicit conversation ids may resolve to a terminal
// not-found session; no transport is opened in that case.
func (s *ChatService) Open(ctx context.Context, credential string, target domain.ChatTarget) (ports.ChatSession, error) {
	var conversationID, participantID, title string

	if target.TechnicalSupport() {
		sess, err := s.sessions.Resolve(ctx, credential)
		if err != nil {
			return nil, err
		}
		if !sess.Authenticated() {
			return nil, domain.ErrUnauthorized
		}

		userID, err := s.directory.UserID(ctx, credential, sess.Identity.Email)
		if err != nil {
			return nil, fmt.Errorf("resolve user id: %w", err)
		}

		conv, err := s.resolveSupportConversation(credential, userID)
		if err != nil {
			return nil, err
		}

		conversationID = conv.ID
		participantID = userID
		title = domain.TechnicalSupportName
	} else {
		access, err := s.conversations.ConversationByID(ctx, credential, target.ConversationID)
		if errors.Is(err, domain.ErrConversationNotFound) {
			return newNotFoundSession(target.ConversationID), nil
		}
		if err != nil {
			return nil, fmt.Errorf("resolve conversation %s: %w", target.ConversationID, err)
		}

		conversationID = target.ConversationID
		participantID = access.ParticipantID
		title = access.DisplayName
	}

	ch, err := s.dialer.Dial(ctx, conversationID, participantID)
	if err != nil {
		return nil, fmt.Errorf("dial chat transport: %w", err)
	}

	cs := newChatSession(conversationID, participantID, title, ch, s.dialer, s.reconnect, s.log)
	go cs.readLoop()
	return cs, nil
}

// resolveSupportConversation finds or creates the caller's technical-support
// conversation. Duplicate concurrent opens (two tabs) share one flight, so
// the check-then-create sequence runs at most once per user at a time.
func (s *ChatService) resolveSupportConversation(credential, userID string) (*domain.Conversation, error) {
	v, err, _ := s.create.Do(userID, func() (any, error) {
		// Detached from any request context: a concurrent open may still
		// be waiting on this flight after the initiating one goes away.
		ctx, cancel := context.WithTimeout(context.Background(), supportResolveTimeout)
		defer cancel()

		conv, err := s.conversations.CheckUserConversation(ctx, credential, userID)
		switch {
		case errors.Is(err, domain.ErrConversationNotFound):
			// fall through to creation
		case err != nil:
			return nil, fmt.Errorf("check support conversation: %w", err)
		case conv.Participants > 0:
			return conv, nil
		}

		created, err := s.conversations.CreateConversation(ctx, credential, domain.TechnicalSupportName, domain.KindTechnicalSupport)
		if err != nil {
			return nil, fmt.Errorf("create support conversation: %w", err)
		}
		return created, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Conversation), nil
}

// chatSession owns exactly one channel for its lifetime. A single reader
// goroutine appends peer messages in arrival order; Close is idempotent and
// stops the reader.
type chatSession struct {
	conversationID string
	participantID  string
	title          string

	dialer    ports.ChannelDialer
	reconnect ReconnectPolicy
	log       zerolog.Logger

	inbound   chan string
	done      chan struct{}
	closeOnce sync.Once

	mu       sync.Mutex
	state    domain.ChatState
	ch       ports.Channel
	messages []domain.Message
}

func newChatSession(conversationID, participantID, title string, ch ports.Channel, dialer ports.ChannelDialer, reconnect ReconnectPolicy, log zerolog.Logger) *chatSession {
	return &chatSession{
		conversationID: conversationID,
		participantID:  participantID,
		title:          title,
		dialer:         dialer,
		reconnect:      reconnect,
		log:            log.With().Str("conversation_id", conversationID).Logger(),
		inbound:        make(chan string, 64),
		done:           make(chan struct{}),
		state:          domain.ChatConnected,
		ch:             ch,
	}
}

func newNotFoundSession(conversationID string) *chatSession {
	cs := &chatSession{
		conversationID: conversationID,
		inbound:        make(chan string),
		done:           make(chan struct{}),
		state:          domain.ChatNotFound,
	}
	close(cs.inbound)
	close(cs.done)
	return cs
}

func (cs *chatSession) State() domain.ChatState {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.state
}

func (cs *chatSession) Title() string {
	return cs.title
}

func (cs *chatSession) Log() []domain.Message {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	out := make([]domain.Message, len(cs.messages))
	copy(out, cs.messages)
	return out
}

func (cs *chatSession) Inbound() <-chan string {
	return cs.inbound
}

func (cs *chatSession) Done() <-chan struct{} {
	return cs.done
}

// Send appends the message optimistically and transmits one frame.
// Whitespace-only input is dropped without a frame or a log entry.
func (cs *chatSession) Send(ctx context.Context, text string) (bool, error) {
	if strings.TrimSpace(text) == "" {
		return false, nil
	}

	cs.mu.Lock()
	if cs.state != domain.ChatConnected {
		cs.mu.Unlock()
		return false, fmt.Errorf("chat session is %s", cs.state)
	}
	cs.messages = append(cs.messages, domain.Message{Author: domain.AuthorSelf, Text: text})
	ch := cs.ch
	cs.mu.Unlock()

	if err := ch.Send(ctx, text); err != nil {
		return true, fmt.Errorf("send chat frame: %w", err)
	}
	return true, nil
}

// Close implements ports.ChatSession. Safe to call from any goroutine and
// more than once.
func (cs *chatSession) Close() error {
	cs.closeOnce.Do(func() {
		cs.mu.Lock()
		if cs.state != domain.ChatNotFound {
			cs.state = domain.ChatClosed
		}
		ch := cs.ch
		cs.mu.Unlock()

		close(cs.done)
		if ch != nil {
			_ = ch.Close()
		}
	})
	return nil
}

// readLoop pumps peer frames into the log and the inbound stream. On a
// transport failure it re-dials with bounded backoff; when that is exhausted
// the session closes instead of going silently stale.
func (cs *chatSession) readLoop() {
	defer close(cs.inbound)

	for {
		cs.mu.Lock()
		ch := cs.ch
		cs.mu.Unlock()

		text, err := ch.Receive(context.Background())
		if err != nil {
			select {
			case <-cs.done:
				return
			default:
			}
			if !cs.redial() {
				_ = cs.Close()
				return
			}
			continue
		}

		cs.mu.Lock()
		cs.messages = append(cs.messages, domain.Message{Author: domain.AuthorPeer, Text: text})
		cs.mu.Unlock()

		select {
		case cs.inbound <- text:
		case <-cs.done:
			return
		}
	}
}

// redial attempts to replace a failed channel. Reports whether the session
// holds a live channel again.
func (cs *chatSession) redial() bool {
	delay := cs.reconnect.Backoff
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}

	for attempt := 1; attempt <= cs.reconnect.Attempts; attempt++ {
		select {
		case <-cs.done:
			return false
		case <-time.After(delay):
		}
		delay *= 2

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		ch, err := cs.dialer.Dial(ctx, cs.conversationID, cs.participantID)
		cancel()
		if err != nil {
			metrics.ChatReconnectsTotal.WithLabelValues("failed").Inc()
			cs.log.Warn().Err(err).Int("attempt", attempt).Msg("chat reconnect failed")
			continue
		}
		metrics.ChatReconnectsTotal.WithLabelValues("ok").Inc()

		cs.mu.Lock()
		if cs.state != domain.ChatConnected {
			cs.mu.Unlock()
			_ = ch.Close()
			return false
		}
		cs.ch = ch
		cs.mu.Unlock()
		cs.log.Info().Int("attempt", attempt).Msg("chat transport reconnected")
		return true
	}
	cs.log.Warn().Msg("chat transport lost, closing session")
	return false
}

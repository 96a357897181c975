package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/skillbridge/resume-gateway/internal/core/domain"
	"github.com/skillbridge/resume-gateway/internal/core/ports"
)

type stubResolver struct {
	session domain.Session
	err     error
}

func (r *stubResolver) Resolve(_ context.Context, _ string) (domain.Session, error) {
	return r.session, r.err
}

func (r *stubResolver) Invalidate(_ context.Context, _ string) {}

func (r *stubResolver) Menu(s domain.Session) []domain.MenuEntry {
	return domain.MenuFor(s)
}

type stubDirectory struct {
	userID string
}

func (d *stubDirectory) UserID(_ context.Context, _, _ string) (string, error) {
	return d.userID, nil
}

type stubConversationAPI struct {
	mu       sync.Mutex
	existing *domain.Conversation
	access   *domain.ConversationAccess
	byIDErr  error
	created  int

	// When set, CheckUserConversation signals checkStarted once and then
	// blocks until checkRelease is closed or the context expires.
	checkStarted chan struct{}
	checkRelease chan struct{}
	startOnce    sync.Once
}

func (a *stubConversationAPI) CheckUserConversation(ctx context.Context, _, _ string) (*domain.Conversation, error) {
	if a.checkStarted != nil {
		a.startOnce.Do(func() { close(a.checkStarted) })
		select {
		case <-a.checkRelease:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.existing == nil {
		return nil, domain.ErrConversationNotFound
	}
	return a.existing, nil
}

func (a *stubConversationAPI) CreateConversation(_ context.Context, _, name string, kind domain.ConversationKind) (*domain.Conversation, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.created++
	a.existing = &domain.Conversation{ID: "created-1", Name: name, Kind: kind, Participants: 1}
	return a.existing, nil
}

func (a *stubConversationAPI) ConversationByID(_ context.Context, _, _ string) (*domain.ConversationAccess, error) {
	if a.byIDErr != nil {
		return nil, a.byIDErr
	}
	return a.access, nil
}

// stubChannel is a scriptable in-memory transport.
type stubChannel struct {
	mu     sync.Mutex
	sent   []string
	frames chan string
	closed bool
}

func newStubChannel() *stubChannel {
	return &stubChannel{frames: make(chan string, 16)}
}

func (c *stubChannel) Send(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, text)
	return nil
}

func (c *stubChannel) Receive(ctx context.Context) (string, error) {
	select {
	case text, ok := <-c.frames:
		if !ok {
			return "", errors.New("channel closed")
		}
		return text, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *stubChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.frames)
	}
	return nil
}

func (c *stubChannel) sentFrames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.sent))
	copy(out, c.sent)
	return out
}

type stubDialer struct {
	mu       sync.Mutex
	channels []*stubChannel
	err      error
}

func (d *stubDialer) Dial(_ context.Context, _, _ string) (ports.Channel, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	ch := newStubChannel()
	d.channels = append(d.channels, ch)
	return ch, nil
}

func (d *stubDialer) dials() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.channels)
}

func newTestChatService(api *stubConversationAPI, dialer *stubDialer) *ChatService {
	resolver := &stubResolver{session: domain.AuthenticatedAs(domain.Identity{Email: "a@b.com", Role: domain.RoleApplicant})}
	return NewChatService(resolver, &stubDirectory{userID: "42"}, api, dialer, ReconnectPolicy{}, zerolog.Nop())
}

func TestChatService_Open_TechSupportCreatesWhenMissing(t *testing.T) {
	api := &stubConversationAPI{}
	dialer := &stubDialer{}
	svc := newTestChatService(api, dialer)

	sess, err := svc.Open(context.Background(), "token", domain.TechnicalSupportTarget())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer sess.Close()

	if sess.State() != domain.ChatConnected {
		t.Fatalf("expected connected state, got %s", sess.State())
	}
	if sess.Title() != domain.TechnicalSupportName {
		t.Fatalf("unexpected title %q", sess.Title())
	}
	if api.created != 1 {
		t.Fatalf("expected one conversation created, got %d", api.created)
	}
}

func TestChatService_Open_TechSupportReusesExisting(t *testing.T) {
	api := &stubConversationAPI{existing: &domain.Conversation{ID: "chat-7", Participants: 2}}
	dialer := &stubDialer{}
	svc := newTestChatService(api, dialer)

	for i := 0; i < 2; i++ {
		sess, err := svc.Open(context.Background(), "token", domain.TechnicalSupportTarget())
		if err != nil {
			t.Fatalf("Open #%d returned error: %v", i+1, err)
		}
		sess.Close()
	}

	if api.created != 0 {
		t.Fatalf("existing conversation must be reused, created %d", api.created)
	}
	if dialer.dials() != 2 {
		t.Fatalf("expected two dials, got %d", dialer.dials())
	}
}

func TestChatService_Open_TechSupportCreatesWhenEmpty(t *testing.T) {
	api := &stubConversationAPI{existing: &domain.Conversation{ID: "chat-7", Participants: 0}}
	svc := newTestChatService(api, &stubDialer{})

	sess, err := svc.Open(context.Background(), "token", domain.TechnicalSupportTarget())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer sess.Close()

	if api.created != 1 {
		t.Fatalf("conversation without participants must be recreated, created %d", api.created)
	}
}

func TestChatService_Open_TechSupportSurvivesInitiatorCancel(t *testing.T) {
	api := &stubConversationAPI{
		checkStarted: make(chan struct{}),
		checkRelease: make(chan struct{}),
	}
	dialer := &stubDialer{}
	svc := newTestChatService(api, dialer)

	type result struct {
		sess ports.ChatSession
		err  error
	}

	// First tab opens and blocks inside the existence check.
	firstCtx, cancelFirst := context.WithCancel(context.Background())
	first := make(chan result, 1)
	go func() {
		sess, err := svc.Open(firstCtx, "token", domain.TechnicalSupportTarget())
		first <- result{sess, err}
	}()

	select {
	case <-api.checkStarted:
	case <-time.After(2 * time.Second):
		t.Fatalf("existence check never started")
	}

	// Second tab joins the same flight, then the first tab goes away.
	second := make(chan result, 1)
	go func() {
		sess, err := svc.Open(context.Background(), "token", domain.TechnicalSupportTarget())
		second <- result{sess, err}
	}()
	time.Sleep(50 * time.Millisecond)
	cancelFirst()
	close(api.checkRelease)

	res := <-second
	if res.err != nil {
		t.Fatalf("surviving caller failed: %v", res.err)
	}
	defer res.sess.Close()
	if res.sess.State() != domain.ChatConnected {
		t.Fatalf("expected connected state, got %s", res.sess.State())
	}
	if api.created != 1 {
		t.Fatalf("expected one conversation created, got %d", api.created)
	}

	if fr := <-first; fr.sess != nil {
		fr.sess.Close()
	}
}

func TestChatService_Open_ByIDNotFound(t *testing.T) {
	api := &stubConversationAPI{byIDErr: domain.ErrConversationNotFound}
	dialer := &stubDialer{}
	svc := newTestChatService(api, dialer)

	sess, err := svc.Open(context.Background(), "token", domain.ChatTarget{ConversationID: "missing"})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if sess.State() != domain.ChatNotFound {
		t.Fatalf("expected not-found state, got %s", sess.State())
	}
	if dialer.dials() != 0 {
		t.Fatalf("no transport may be opened for a missing conversation, got %d dials", dialer.dials())
	}
}

func TestChatService_Open_ByID(t *testing.T) {
	api := &stubConversationAPI{access: &domain.ConversationAccess{ParticipantID: "9", DisplayName: "Team Rocket"}}
	dialer := &stubDialer{}
	svc := newTestChatService(api, dialer)

	sess, err := svc.Open(context.Background(), "token", domain.ChatTarget{ConversationID: "chat-3"})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer sess.Close()

	if sess.Title() != "Team Rocket" {
		t.Fatalf("unexpected title %q", sess.Title())
	}
	if dialer.dials() != 1 {
		t.Fatalf("expected one dial, got %d", dialer.dials())
	}
}

func TestChatSession_SendWhitespaceOnly(t *testing.T) {
	dialer := &stubDialer{}
	svc := newTestChatService(&stubConversationAPI{}, dialer)

	sess, err := svc.Open(context.Background(), "token", domain.TechnicalSupportTarget())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer sess.Close()

	sent, err := sess.Send(context.Background(), "  ")
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if sent {
		t.Fatalf("whitespace-only message must not be sent")
	}
	if got := len(sess.Log()); got != 0 {
		t.Fatalf("whitespace-only message must not be logged, log has %d entries", got)
	}
	if got := len(dialer.channels[0].sentFrames()); got != 0 {
		t.Fatalf("expected zero frames, got %d", got)
	}
}

func TestChatSession_SendAppendsAndTransmits(t *testing.T) {
	dialer := &stubDialer{}
	svc := newTestChatService(&stubConversationAPI{}, dialer)

	sess, err := svc.Open(context.Background(), "token", domain.TechnicalSupportTarget())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer sess.Close()

	sent, err := sess.Send(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if !sent {
		t.Fatalf("expected message to be sent")
	}

	log := sess.Log()
	if len(log) != 1 || log[0].Author != domain.AuthorSelf || log[0].Text != "hello" {
		t.Fatalf("unexpected log: %+v", log)
	}
	frames := dialer.channels[0].sentFrames()
	if len(frames) != 1 || frames[0] != "hello" {
		t.Fatalf("unexpected frames: %v", frames)
	}
}

func TestChatSession_InboundAppendsInOrder(t *testing.T) {
	dialer := &stubDialer{}
	svc := newTestChatService(&stubConversationAPI{}, dialer)

	sess, err := svc.Open(context.Background(), "token", domain.TechnicalSupportTarget())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer sess.Close()

	ch := dialer.channels[0]
	ch.frames <- "first"
	ch.frames <- "second"

	for _, want := range []string{"first", "second"} {
		select {
		case got := <-sess.Inbound():
			if got != want {
				t.Fatalf("expected %q, got %q", want, got)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %q", want)
		}
	}

	log := sess.Log()
	if len(log) != 2 || log[0].Text != "first" || log[1].Text != "second" {
		t.Fatalf("unexpected log: %+v", log)
	}
	for _, m := range log {
		if m.Author != domain.AuthorPeer {
			t.Fatalf("inbound message logged with author %v", m.Author)
		}
	}
}

func TestChatSession_CloseIsIdempotent(t *testing.T) {
	dialer := &stubDialer{}
	svc := newTestChatService(&stubConversationAPI{}, dialer)

	sess, err := svc.Open(context.Background(), "token", domain.TechnicalSupportTarget())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}

	if err := sess.Close(); err != nil {
		t.Fatalf("first Close returned error: %v", err)
	}
	if err := sess.Close(); err != nil {
		t.Fatalf("second Close returned error: %v", err)
	}
	if sess.State() != domain.ChatClosed {
		t.Fatalf("expected closed state, got %s", sess.State())
	}

	select {
	case <-sess.Done():
	case <-time.After(time.Second):
		t.Fatalf("Done not closed after Close")
	}
}

func TestChatSession_TransportFailureClosesWithoutReconnect(t *testing.T) {
	dialer := &stubDialer{}
	svc := newTestChatService(&stubConversationAPI{}, dialer)

	sess, err := svc.Open(context.Background(), "token", domain.TechnicalSupportTarget())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}

	// Simulate the upstream dropping the connection.
	dialer.channels[0].Close()

	select {
	case <-sess.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("session did not close after transport failure")
	}
	if sess.State() != domain.ChatClosed {
		t.Fatalf("expected closed state, got %s", sess.State())
	}
}

func TestChatSession_TransportFailureReconnects(t *testing.T) {
	dialer := &stubDialer{}
	resolver := &stubResolver{session: domain.AuthenticatedAs(domain.Identity{Email: "a@b.com", Role: domain.RoleApplicant})}
	svc := NewChatService(resolver, &stubDirectory{userID: "42"}, &stubConversationAPI{}, dialer,
		ReconnectPolicy{Attempts: 2, Backoff: 10 * time.Millisecond}, zerolog.Nop())

	sess, err := svc.Open(context.Background(), "token", domain.TechnicalSupportTarget())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer sess.Close()

	dialer.channels[0].Close()

	deadline := time.Now().Add(2 * time.Second)
	for dialer.dials() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("expected a reconnect dial, got %d", dialer.dials())
		}
		time.Sleep(10 * time.Millisecond)
	}

	// The replacement channel keeps the session alive.
	dialer.channels[1].frames <- "back online"
	select {
	case got := <-sess.Inbound():
		if got != "back online" {
			t.Fatalf("unexpected inbound %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no inbound message after reconnect")
	}
	if sess.State() != domain.ChatConnected {
		t.Fatalf("expected connected state after reconnect, got %s", sess.State())
	}
}

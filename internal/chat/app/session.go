package app

import (
	"context"
	"errors"
	"strconv"

	"blog_chat_service/internal/chat/domain"
	"blog_chat_service/internal/chat/repository"
	memberdomain "blog_chat_service/internal/member/domain"
	memberrepo "blog_chat_service/internal/member/repository"
)

// SupportTarget routes the connection to a randomly chosen staff member.
// The numeric form "0" is accepted as the same sentinel.
const SupportTarget = "support"

// SessionState tracks where a session is in its lifecycle.
type SessionState int

// Session lifecycle. Error is absorbing and only reachable before Joined.
const (
	StateConnecting SessionState = iota
	StateResolving
	StateJoined
	StateClosed
	StateError
)

// ChatSession drives one live connection: it authenticates the caller,
// resolves the counterparty, joins the pair's broadcast group, replays
// history and relays new messages. One session per socket; inbound
// frames are handled sequentially by the transport read loop.
type ChatSession struct {
	directory *RoomDirectory
	messages  repository.MessageRepository
	members   memberrepo.MemberRepository
	avatars   memberrepo.AvatarStore
	pubsub    repository.PubSub

	state        SessionState
	memberID     int64
	counterparty *memberdomain.Member
	roomName     string
	room         *domain.Room
	fanout       func(domain.ChatEvent)
}

// NewChatSession create a ChatSession with its collaborators injected.
func NewChatSession(
	directory *RoomDirectory,
	messages repository.MessageRepository,
	members memberrepo.MemberRepository,
	avatars memberrepo.AvatarStore,
	pubsub repository.PubSub,
) *ChatSession {
	return &ChatSession{
		directory: directory,
		messages:  messages,
		members:   members,
		avatars:   avatars,
		pubsub:    pubsub,
		state:     StateConnecting,
	}
}

// State reports the current lifecycle state.
func (s *ChatSession) State() SessionState { return s.state }

// Open runs the pre-join part of the state machine: authenticate,
// resolve the counterparty, subscribe the broadcast group and build the
// connection_established frame with the history replay. deliver is
// invoked for every chat event fanned out to the group, the session's
// own publishes included, until ctx is cancelled.
func (s *ChatSession) Open(ctx context.Context, memberID int64, target string, deliver func(domain.ChatFrame)) (*domain.ConnectionEstablishedFrame, error) {
	if memberID <= 0 {
		s.state = StateError
		return nil, domain.ErrUnauthenticated
	}
	s.memberID = memberID
	s.state = StateResolving

	counterparty, err := s.resolveCounterparty(ctx, target)
	if err != nil {
		s.state = StateError
		return nil, err
	}
	// Rejecting self-chat here keeps a degenerate self-room from ever
	// being materialized.
	if counterparty.ID == memberID {
		s.state = StateError
		return nil, domain.ErrSelfChat
	}
	s.counterparty = counterparty

	name, room, err := s.directory.Resolve(ctx, memberID, counterparty.ID)
	if err != nil {
		s.state = StateError
		return nil, err
	}
	s.roomName = name
	s.room = room

	s.fanout = func(event domain.ChatEvent) {
		deliver(domain.NewChatFrame(event))
	}
	if err := s.pubsub.Subscribe(ctx, domain.RoomGroup(name), s.fanout); err != nil {
		s.state = StateError
		return nil, err
	}
	s.state = StateJoined

	history, err := s.history(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.ConnectionEstablishedFrame{
		Type:        domain.FrameConnectionEstablished,
		Message:     domain.ConnectionSuccessMessage,
		Participant: s.participant(ctx),
		History:     history,
	}, nil
}

// Send appends the message, materializes the room rows when the pair is
// new, and publishes the event to the broadcast group. The append is
// durable even when room materialization fails; the next send retries it.
func (s *ChatSession) Send(ctx context.Context, content string) error {
	if s.state != StateJoined {
		return errors.New("session not joined")
	}

	msg, err := s.messages.Append(ctx, content, s.memberID, s.counterparty.ID)
	if err != nil {
		return err
	}
	if s.room == nil {
		room, err := s.directory.Ensure(ctx, s.memberID, s.counterparty.ID, s.roomName, msg.CreatedAt)
		if err != nil {
			return err
		}
		// The counterparty may have materialized the pair first under
		// the name its own session drew. Converge on the winning group
		// so live fan-out reaches both sides; the losing subscription
		// just goes quiet until the connection closes.
		if room.Name != s.roomName {
			if err := s.pubsub.Subscribe(ctx, domain.RoomGroup(room.Name), s.fanout); err != nil {
				return err
			}
			s.roomName = room.Name
		}
		s.room = room
	}

	return s.pubsub.Publish(ctx, domain.RoomGroup(s.roomName), domain.NewChatEvent(msg))
}

// Close marks the session finished. The broadcast subscription is torn
// down by the connection context cancel.
func (s *ChatSession) Close() {
	if s.state != StateError {
		s.state = StateClosed
	}
}

func (s *ChatSession) resolveCounterparty(ctx context.Context, target string) (*memberdomain.Member, error) {
	if target == SupportTarget || target == "0" {
		return s.members.RandomStaff(ctx)
	}

	id, err := strconv.ParseInt(target, 10, 64)
	if err != nil {
		return nil, domain.ErrNoUserFound
	}
	member, err := s.members.Find(ctx, &memberdomain.MemberQuery{ID: &id})
	if err != nil {
		if errors.Is(err, memberrepo.ErrMemberNotFound) {
			return nil, domain.ErrNoUserFound
		}
		return nil, err
	}
	return member, nil
}

// history replays the pair's log since the room was created. No room
// means the relationship was never materialized, so the replay is empty.
func (s *ChatSession) history(ctx context.Context) ([]domain.HistoryEntry, error) {
	entries := []domain.HistoryEntry{}
	if s.room == nil {
		return entries, nil
	}
	messages, err := s.messages.HistorySince(ctx, s.memberID, s.counterparty.ID, s.room.CreatedAt)
	if err != nil {
		return nil, err
	}
	for _, msg := range messages {
		entries = append(entries, domain.NewHistoryEntry(msg))
	}
	return entries, nil
}

func (s *ChatSession) participant(ctx context.Context) domain.Participant {
	p := domain.Participant{Username: s.counterparty.Username}
	if url, err := s.avatars.URL(ctx, s.counterparty.Avatar); err == nil && url != "" {
		p.Avatar = &url
	}
	return p
}

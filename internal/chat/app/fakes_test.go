package app

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"sort"
	"sync"
	"time"

	"blog_chat_service/internal/chat/domain"
	memberdomain "blog_chat_service/internal/member/domain"
	memberrepo "blog_chat_service/internal/member/repository"
)

// In-memory fakes mirroring the persistence-layer contracts, used where
// mock expectations get in the way: concurrency and end-to-end flows.

type memoryRoomRepo struct {
	mu     sync.Mutex
	nextID int64
	rooms  map[[2]int64]*domain.Room
}

func newMemoryRoomRepo() *memoryRoomRepo {
	return &memoryRoomRepo{rooms: map[[2]int64]*domain.Room{}}
}

func (r *memoryRoomRepo) FindPairRoom(ctx context.Context, userID, counterpartyID int64) (*domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if room, ok := r.rooms[[2]int64{userID, counterpartyID}]; ok {
		cp := *room
		return &cp, nil
	}
	if room, ok := r.rooms[[2]int64{counterpartyID, userID}]; ok {
		cp := *room
		return &cp, nil
	}
	return nil, nil
}

func (r *memoryRoomRepo) EnsurePair(ctx context.Context, userID, counterpartyID int64, name string, createdAt time.Time) (*domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, pair := range [][2]int64{{userID, counterpartyID}, {counterpartyID, userID}} {
		if _, ok := r.rooms[pair]; !ok {
			r.nextID++
			r.rooms[pair] = &domain.Room{
				ID:             r.nextID,
				Name:           name,
				OwnerID:        pair[0],
				CounterpartyID: pair[1],
				CreatedAt:      createdAt,
			}
		}
	}
	cp := *r.rooms[[2]int64{userID, counterpartyID}]
	return &cp, nil
}

func (r *memoryRoomRepo) FindByID(ctx context.Context, roomID int64) (*domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, room := range r.rooms {
		if room.ID == roomID {
			cp := *room
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memoryRoomRepo) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var rooms []domain.Room
	for _, room := range r.rooms {
		if room.OwnerID == ownerID {
			rooms = append(rooms, *room)
		}
	}
	return rooms, nil
}

func (r *memoryRoomRepo) DeleteOwned(ctx context.Context, ownerID, roomID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for pair, room := range r.rooms {
		if room.ID == roomID && room.OwnerID == ownerID {
			delete(r.rooms, pair)
			return nil
		}
	}
	return errors.New("room not found")
}

func (r *memoryRoomRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

type memoryMessageRepo struct {
	mu       sync.Mutex
	nextID   int64
	messages []domain.Message
}

func newMemoryMessageRepo() *memoryMessageRepo {
	return &memoryMessageRepo{}
}

func (r *memoryMessageRepo) Append(ctx context.Context, content string, senderID, recipientID int64) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	msg := domain.Message{
		ID:          r.nextID,
		Content:     content,
		SenderID:    senderID,
		RecipientID: recipientID,
		CreatedAt:   time.Now().UTC(),
	}
	r.messages = append(r.messages, msg)
	return &msg, nil
}

// appendAt inserts a row with a caller-chosen timestamp, for boundary
// and ordering tests.
func (r *memoryMessageRepo) appendAt(content string, senderID, recipientID int64, at time.Time) domain.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	msg := domain.Message{
		ID:          r.nextID,
		Content:     content,
		SenderID:    senderID,
		RecipientID: recipientID,
		CreatedAt:   at,
	}
	r.messages = append(r.messages, msg)
	return msg
}

func (r *memoryMessageRepo) HistorySince(ctx context.Context, userID, counterpartyID int64, since time.Time) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Message
	for _, msg := range r.messages {
		pairMatch := (msg.SenderID == userID && msg.RecipientID == counterpartyID) ||
			(msg.SenderID == counterpartyID && msg.RecipientID == userID)
		if pairMatch && !msg.CreatedAt.Before(since) {
			out = append(out, msg)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// localPubSub delivers publishes synchronously to every subscriber of
// the group, publisher included, mirroring the fabric contract.
type localPubSub struct {
	mu       sync.Mutex
	handlers map[string][]func(event domain.ChatEvent)
}

func newLocalPubSub() *localPubSub {
	return &localPubSub{handlers: map[string][]func(event domain.ChatEvent){}}
}

func (p *localPubSub) Publish(ctx context.Context, group string, event domain.ChatEvent) error {
	p.mu.Lock()
	handlers := append([]func(event domain.ChatEvent){}, p.handlers[group]...)
	p.mu.Unlock()
	for _, h := range handlers {
		h(event)
	}
	return nil
}

func (p *localPubSub) Subscribe(ctx context.Context, group string, handler func(event domain.ChatEvent)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[group] = append(p.handlers[group], handler)
	return nil
}

type memoryMemberRepo struct {
	mu      sync.Mutex
	nextID  int64
	members map[int64]*memberdomain.Member
}

func newMemoryMemberRepo() *memoryMemberRepo {
	return &memoryMemberRepo{members: map[int64]*memberdomain.Member{}}
}

func (r *memoryMemberRepo) add(username string, isStaff bool) *memberdomain.Member {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	m := &memberdomain.Member{
		ID:       r.nextID,
		Username: username,
		Email:    username + "@example.com",
		IsStaff:  isStaff,
	}
	r.members[m.ID] = m
	return m
}

func (r *memoryMemberRepo) Create(ctx context.Context, member *memberdomain.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	member.ID = r.nextID
	r.members[member.ID] = member
	return nil
}

func (r *memoryMemberRepo) Find(ctx context.Context, q *memberdomain.MemberQuery) (*memberdomain.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if q.ID != nil && m.ID != *q.ID {
			continue
		}
		if q.Username != nil && m.Username != *q.Username {
			continue
		}
		if q.Email != nil && m.Email != *q.Email {
			continue
		}
		cp := *m
		return &cp, nil
	}
	return nil, memberrepo.ErrMemberNotFound
}

func (r *memoryMemberRepo) RandomStaff(ctx context.Context) (*memberdomain.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var staff []*memberdomain.Member
	for _, m := range r.members {
		if m.IsStaff {
			staff = append(staff, m)
		}
	}
	if len(staff) == 0 {
		return nil, errors.New("no staff members configured")
	}
	cp := *staff[rand.Intn(len(staff))]
	return &cp, nil
}

func (r *memoryMemberRepo) UpdateAvatar(ctx context.Context, memberID int64, object string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.members[memberID]; ok {
		m.Avatar = object
	}
	return nil
}

// noopAvatarStore never yields a URL.
type noopAvatarStore struct{}

func (noopAvatarStore) Upload(ctx context.Context, object string, r io.Reader, size int64, contentType string) error {
	return nil
}

func (noopAvatarStore) URL(ctx context.Context, object string) (string, error) {
	return "", nil
}

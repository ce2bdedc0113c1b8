package app

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"blog_chat_service/internal/chat/domain"
	memberdomain "blog_chat_service/internal/member/domain"
)

// MockRoomRepository Mock RoomRepository
type MockRoomRepository struct {
	mock.Mock
}

// FindPairRoom mock find pair room in either orientation
func (m *MockRoomRepository) FindPairRoom(ctx context.Context, userID, counterpartyID int64) (*domain.Room, error) {
	args := m.Called(ctx, userID, counterpartyID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Room), args.Error(1)
	}
	return nil, args.Error(1)
}

// EnsurePair mock get-or-create both orientations
func (m *MockRoomRepository) EnsurePair(ctx context.Context, userID, counterpartyID int64, name string, createdAt time.Time) (*domain.Room, error) {
	args := m.Called(ctx, userID, counterpartyID, name, createdAt)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Room), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByID mock find room by id
func (m *MockRoomRepository) FindByID(ctx context.Context, roomID int64) (*domain.Room, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Room), args.Error(1)
	}
	return nil, args.Error(1)
}

// ListByOwner mock list rooms by owner
func (m *MockRoomRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Room, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Room), args.Error(1)
	}
	return nil, args.Error(1)
}

// DeleteOwned mock delete owner-side room
func (m *MockRoomRepository) DeleteOwned(ctx context.Context, ownerID, roomID int64) error {
	args := m.Called(ctx, ownerID, roomID)
	return args.Error(0)
}

// MockMessageRepository Mock MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

// Append mock append message
func (m *MockMessageRepository) Append(ctx context.Context, content string, senderID, recipientID int64) (*domain.Message, error) {
	args := m.Called(ctx, content, senderID, recipientID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// HistorySince mock pairwise history
func (m *MockMessageRepository) HistorySince(ctx context.Context, userID, counterpartyID int64, since time.Time) ([]domain.Message, error) {
	args := m.Called(ctx, userID, counterpartyID, since)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockPubSub Mock broadcast fabric
type MockPubSub struct {
	mock.Mock
}

// Publish mock publisher
func (m *MockPubSub) Publish(ctx context.Context, group string, event domain.ChatEvent) error {
	args := m.Called(ctx, group, event)
	return args.Error(0)
}

// Subscribe mock subscriber
func (m *MockPubSub) Subscribe(ctx context.Context, group string, handler func(event domain.ChatEvent)) error {
	args := m.Called(ctx, group, handler)
	return args.Error(0)
}

// MockMemberRepository Mock MemberRepository
type MockMemberRepository struct {
	mock.Mock
}

// Create mock create member
func (m *MockMemberRepository) Create(ctx context.Context, member *memberdomain.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

// Find mock find member by query
func (m *MockMemberRepository) Find(ctx context.Context, memberQuery *memberdomain.MemberQuery) (*memberdomain.Member, error) {
	args := m.Called(ctx, memberQuery)
	if args.Get(0) != nil {
		return args.Get(0).(*memberdomain.Member), args.Error(1)
	}
	return nil, args.Error(1)
}

// RandomStaff mock random staff pick
func (m *MockMemberRepository) RandomStaff(ctx context.Context) (*memberdomain.Member, error) {
	args := m.Called(ctx)
	if args.Get(0) != nil {
		return args.Get(0).(*memberdomain.Member), args.Error(1)
	}
	return nil, args.Error(1)
}

// UpdateAvatar mock update avatar object
func (m *MockMemberRepository) UpdateAvatar(ctx context.Context, memberID int64, object string) error {
	args := m.Called(ctx, memberID, object)
	return args.Error(0)
}

// MockAvatarStore Mock AvatarStore
type MockAvatarStore struct {
	mock.Mock
}

// Upload mock avatar upload
func (m *MockAvatarStore) Upload(ctx context.Context, object string, r io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, object, r, size, contentType)
	return args.Error(0)
}

// URL mock avatar url
func (m *MockAvatarStore) URL(ctx context.Context, object string) (string, error) {
	args := m.Called(ctx, object)
	return args.String(0), args.Error(1)
}

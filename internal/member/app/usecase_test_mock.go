package app

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"blog_chat_service/internal/member/domain"
)

// MockMemberRepository Mock MemberRepository
type MockMemberRepository struct {
	mock.Mock
}

// Create mock insert member
func (m *MockMemberRepository) Create(ctx context.Context, member *domain.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

// Find mock look a member up
func (m *MockMemberRepository) Find(ctx context.Context, memberQuery *domain.MemberQuery) (*domain.Member, error) {
	args := m.Called(ctx, memberQuery)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Member), args.Error(1)
	}
	return nil, args.Error(1)
}

// RandomStaff mock pick a staff member
func (m *MockMemberRepository) RandomStaff(ctx context.Context) (*domain.Member, error) {
	args := m.Called(ctx)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Member), args.Error(1)
	}
	return nil, args.Error(1)
}

// UpdateAvatar mock point the member avatar at an object
func (m *MockMemberRepository) UpdateAvatar(ctx context.Context, memberID int64, object string) error {
	args := m.Called(ctx, memberID, object)
	return args.Error(0)
}

// MockAvatarStore Mock AvatarStore
type MockAvatarStore struct {
	mock.Mock
}

// Upload mock store an avatar object
func (m *MockAvatarStore) Upload(ctx context.Context, object string, r io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, object, r, size, contentType)
	return args.Error(0)
}

// URL mock presign a fetchable URL
func (m *MockAvatarStore) URL(ctx context.Context, object string) (string, error) {
	args := m.Called(ctx, object)
	return args.String(0), args.Error(1)
}

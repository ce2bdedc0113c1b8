package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"blog_chat_service/internal/member/domain"
	"blog_chat_service/internal/member/repository"
	"blog_chat_service/pkg/encrypt"
	errprocess "blog_chat_service/pkg/err"
	"blog_chat_service/pkg/token"
)

// RegisterInput is the registration payload after transport decoding.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// vetFunc is one stage of the registration validation pipeline. Stages
// run in order and the first failure wins.
type vetFunc func(in *RegisterInput) error

var registerPipeline = []vetFunc{vetUsername, vetEmail, vetPassword}

func vetUsername(in *RegisterInput) error {
	in.Username = strings.TrimSpace(in.Username)
	if len(in.Username) < 3 {
		return errprocess.Set("username must be at least 3 characters")
	}
	return nil
}

func vetEmail(in *RegisterInput) error {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	at := strings.Index(in.Email, "@")
	if at < 1 || at == len(in.Email)-1 || !strings.Contains(in.Email[at:], ".") {
		return errprocess.Set("invalid email address")
	}
	return nil
}

func vetPassword(in *RegisterInput) error {
	return encrypt.ValidatePasswordStrength(in.Password)
}

// MemberUseCase implements the identity provider: registration, login
// and the public profile with its avatar.
type MemberUseCase struct {
	repo    repository.MemberRepository
	avatars repository.AvatarStore
}

// NewMemberUseCase init member use case
func NewMemberUseCase(repo repository.MemberRepository, avatars repository.AvatarStore) *MemberUseCase {
	return &MemberUseCase{repo: repo, avatars: avatars}
}

// Register validates the input through the vet pipeline, hashes the
// password and creates the member row. Profile defaults are applied
// synchronously right after creation, as an explicit ordered step.
func (uc *MemberUseCase) Register(ctx context.Context, in RegisterInput) (*domain.Member, error) {
	for _, vet := range registerPipeline {
		if err := vet(&in); err != nil {
			return nil, err
		}
	}

	hashed, err := encrypt.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	member := &domain.Member{
		Username: in.Username,
		Email:    in.Email,
		Password: hashed,
	}
	if err := uc.repo.Create(ctx, member); err != nil {
		return nil, err
	}
	uc.applyProfileDefaults(member)
	return member, nil
}

// applyProfileDefaults is the post-creation hook: a direct call, not an
// implicit event subscription, so profile setup stays a visible step in
// the registration flow.
func (uc *MemberUseCase) applyProfileDefaults(member *domain.Member) {
	member.Avatar = ""
}

// Login checks credentials and issues a JWT for the member.
func (uc *MemberUseCase) Login(ctx context.Context, email, password string) (string, *domain.Member, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	member, err := uc.repo.Find(ctx, &domain.MemberQuery{Email: &email})
	if err != nil {
		return "", nil, errprocess.Set("invalid email or password")
	}
	if err := member.IsPasswordMatch(password); err != nil {
		return "", nil, errprocess.Set("invalid email or password")
	}

	role := token.RoleMember
	if member.IsStaff {
		role = token.RoleStaff
	}
	jwt, err := token.GenerateJWT(member.ID, string(role), "blog_chat_service")
	if err != nil {
		return "", nil, err
	}
	return jwt, member, nil
}

// Profile returns the public view of a member, avatar resolved to a
// fetchable URL.
func (uc *MemberUseCase) Profile(ctx context.Context, memberID int64) (*domain.Profile, error) {
	member, err := uc.repo.Find(ctx, &domain.MemberQuery{ID: &memberID})
	if err != nil {
		return nil, err
	}

	profile := &domain.Profile{
		ID:       member.ID,
		Username: member.Username,
		Email:    member.Email,
		IsStaff:  member.IsStaff,
	}
	if url, err := uc.avatars.URL(ctx, member.Avatar); err == nil && url != "" {
		profile.Avatar = &url
	}
	return profile, nil
}

// UploadAvatar stores the image under a fresh object name and points the
// member's avatar at it. Returns the fetchable URL.
func (uc *MemberUseCase) UploadAvatar(ctx context.Context, memberID int64, filename, contentType string, r io.Reader, size int64) (string, error) {
	object := fmt.Sprintf("avatars/%s%s", uuid.New().String(), filepath.Ext(filename))
	if err := uc.avatars.Upload(ctx, object, r, size, contentType); err != nil {
		return "", err
	}
	if err := uc.repo.UpdateAvatar(ctx, memberID, object); err != nil {
		return "", err
	}
	return uc.avatars.URL(ctx, object)
}

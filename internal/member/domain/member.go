package domain

import (
	"time"

	"blog_chat_service/pkg/encrypt"
)

// Member is an authenticated principal. Staff members are the pool the
// "support" chat target is routed to.
type Member struct {
	ID        int64
	Username  string
	Email     string
	Password  string // bcrypt hash
	IsStaff   bool
	Avatar    string // object name in the avatar bucket, empty when unset
	CreatedAt time.Time
}

// IsPasswordMatch checks a plaintext password against the stored hash.
func (m *Member) IsPasswordMatch(inputPwd string) error {
	return encrypt.CheckPassword(m.Password, inputPwd)
}

// MemberQuery joins conditions used to look a member up.
type MemberQuery struct {
	ID       *int64  `db:"id"`
	Username *string `db:"username"`
	Email    *string `db:"email"`
}

// Profile is the public view of a member.
type Profile struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	IsStaff  bool    `json:"is_staff"`
	Avatar   *string `json:"avatar"`
}

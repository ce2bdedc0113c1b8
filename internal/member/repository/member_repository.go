package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"blog_chat_service/internal/member/domain"
)

// ErrMemberNotFound is returned when a query matches no member row.
var ErrMemberNotFound = errors.New("no member found")

// MemberRepository definition get member info
type MemberRepository interface {
	Create(ctx context.Context, member *domain.Member) error
	Find(ctx context.Context, memberQuery *domain.MemberQuery) (*domain.Member, error)
	RandomStaff(ctx context.Context) (*domain.Member, error)
	UpdateAvatar(ctx context.Context, memberID int64, object string) error
}

type memberRepository struct {
	db *pgxpool.Pool
}

// NewMemberRepository create a MemberRepository
func NewMemberRepository(db *pgxpool.Pool) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) Create(ctx context.Context, member *domain.Member) error {
	row := r.db.QueryRow(ctx,
		`INSERT INTO members(username, email, password, is_staff, avatar)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		member.Username, member.Email, member.Password, member.IsStaff, member.Avatar,
	)
	return row.Scan(&member.ID, &member.CreatedAt)
}

func (r *memberRepository) Find(ctx context.Context, memberQuery *domain.MemberQuery) (*domain.Member, error) {
	queryStr := "SELECT id, username, email, password, is_staff, avatar, created_at FROM members WHERE 1=1"
	params := []interface{}{}
	paramCount := 1

	if memberQuery.ID != nil {
		queryStr += fmt.Sprintf(" AND id = $%d", paramCount)
		params = append(params, *memberQuery.ID)
		paramCount++
	}
	if memberQuery.Username != nil {
		queryStr += fmt.Sprintf(" AND username = $%d", paramCount)
		params = append(params, *memberQuery.Username)
		paramCount++
	}
	if memberQuery.Email != nil {
		queryStr += fmt.Sprintf(" AND email = $%d", paramCount)
		params = append(params, *memberQuery.Email)
		paramCount++
	}

	row := r.db.QueryRow(ctx, queryStr, params...)
	var member domain.Member
	err := row.Scan(&member.ID, &member.Username, &member.Email, &member.Password,
		&member.IsStaff, &member.Avatar, &member.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	return &member, nil
}

// RandomStaff picks one staff member uniformly at random. An empty staff
// pool is a deployment fault, surfaced as a plain error.
func (r *memberRepository) RandomStaff(ctx context.Context) (*domain.Member, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, username, email, password, is_staff, avatar, created_at
		 FROM members WHERE is_staff ORDER BY random() LIMIT 1`)
	var member domain.Member
	err := row.Scan(&member.ID, &member.Username, &member.Email, &member.Password,
		&member.IsStaff, &member.Avatar, &member.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.New("no staff members configured")
		}
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) UpdateAvatar(ctx context.Context, memberID int64, object string) error {
	_, err := r.db.Exec(ctx, "UPDATE members SET avatar = $1 WHERE id = $2", object, memberID)
	return err
}

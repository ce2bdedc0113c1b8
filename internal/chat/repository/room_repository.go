package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"blog_chat_service/internal/chat/domain"
)

// RoomRepository persists the pairwise room index. The unique constraint
// on (owner_id, counterparty_id) is what makes EnsurePair race-safe.
type RoomRepository interface {
	// FindPairRoom returns a room row for the pair in either orientation,
	// or nil when the pair has never been materialized. Mirrored rows
	// share name and created_at, so either orientation serves lookups.
	FindPairRoom(ctx context.Context, userID, counterpartyID int64) (*domain.Room, error)
	// EnsurePair get-or-creates both orientations with the given shared
	// name and createdAt, and returns the userID-owned row. The caller
	// passes the first message's timestamp so the history boundary
	// never cuts that message off. Idempotent under concurrent calls
	// for the same pair.
	EnsurePair(ctx context.Context, userID, counterpartyID int64, name string, createdAt time.Time) (*domain.Room, error)
	FindByID(ctx context.Context, roomID int64) (*domain.Room, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Room, error)
	// DeleteOwned removes the owner's view of the relationship only; the
	// counterparty's mirrored row is untouched.
	DeleteOwned(ctx context.Context, ownerID, roomID int64) error
}

type roomRepository struct {
	db *pgxpool.Pool
}

// NewRoomRepository create a RoomRepository on PostgreSQL
func NewRoomRepository(db *pgxpool.Pool) RoomRepository {
	return &roomRepository{db: db}
}

const roomColumns = "id, name, owner_id, counterparty_id, created_at"

func scanRoom(row pgx.Row) (*domain.Room, error) {
	var room domain.Room
	err := row.Scan(&room.ID, &room.Name, &room.OwnerID, &room.CounterpartyID, &room.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &room, nil
}

func (r *roomRepository) FindPairRoom(ctx context.Context, userID, counterpartyID int64) (*domain.Room, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+roomColumns+` FROM chat_rooms
		 WHERE (owner_id = $1 AND counterparty_id = $2)
		    OR (owner_id = $2 AND counterparty_id = $1)
		 ORDER BY (owner_id = $1) DESC
		 LIMIT 1`,
		userID, counterpartyID)
	return scanRoom(row)
}

func (r *roomRepository) EnsurePair(ctx context.Context, userID, counterpartyID int64, name string, createdAt time.Time) (*domain.Room, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// One timestamp for both orientations; conflicting inserts lose to
	// the existing rows and keep the original created_at. The lower
	// member id goes first so transactions racing from opposite sides
	// take the unique-index locks in the same order and cannot deadlock.
	pairs := [][2]int64{{userID, counterpartyID}, {counterpartyID, userID}}
	if counterpartyID < userID {
		pairs[0], pairs[1] = pairs[1], pairs[0]
	}
	for _, pair := range pairs {
		_, err = tx.Exec(ctx,
			`INSERT INTO chat_rooms (name, owner_id, counterparty_id, created_at)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (owner_id, counterparty_id) DO NOTHING`,
			name, pair[0], pair[1], createdAt)
		if err != nil {
			return nil, err
		}
	}

	room, err := scanRoom(tx.QueryRow(ctx,
		`SELECT `+roomColumns+` FROM chat_rooms WHERE owner_id = $1 AND counterparty_id = $2`,
		userID, counterpartyID))
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, errors.New("room row missing after ensure")
	}
	return room, tx.Commit(ctx)
}

func (r *roomRepository) FindByID(ctx context.Context, roomID int64) (*domain.Room, error) {
	row := r.db.QueryRow(ctx, `SELECT `+roomColumns+` FROM chat_rooms WHERE id = $1`, roomID)
	return scanRoom(row)
}

func (r *roomRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Room, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+roomColumns+` FROM chat_rooms WHERE owner_id = $1 ORDER BY created_at DESC`,
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []domain.Room
	for rows.Next() {
		var room domain.Room
		if err := rows.Scan(&room.ID, &room.Name, &room.OwnerID, &room.CounterpartyID, &room.CreatedAt); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

func (r *roomRepository) DeleteOwned(ctx context.Context, ownerID, roomID int64) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM chat_rooms WHERE id = $1 AND owner_id = $2`, roomID, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.New("room not found")
	}
	return nil
}

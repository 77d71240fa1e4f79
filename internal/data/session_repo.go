package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dealerdesk/dealerdesk/internal/data/pgxutil"
	domainauth "github.com/dealerdesk/dealerdesk/internal/domain/auth"
	apperrors "github.com/dealerdesk/dealerdesk/internal/errors"
)

// SessionRepo is the default, Postgres-backed session store. Sessions live
// in the same database as credentials so they survive process restart.
//
// Expired rows are treated as absent on read; DeleteExpired purges them
// eagerly as an optimization only.
type SessionRepo struct {
	DB *sql.DB
}

// NewSessionRepo creates a new SessionRepo.
func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{DB: db}
}

// Save upserts a session row. Saving an already-expired session is an
// error; the caller should never issue one.
func (r *SessionRepo) Save(ctx context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}

	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, `
			INSERT INTO sessions (id, user_id, role, expires_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE
			SET user_id = EXCLUDED.user_id,
			    role = EXCLUDED.role,
			    expires_at = EXCLUDED.expires_at`,
			sess.ID, sess.UserID, sess.Role, sess.ExpiresAt)
		return err
	})
	if err != nil {
		return fmt.Errorf("save session: %w", apperrors.MapDBError(err))
	}
	return nil
}

// Get returns the session for the given ID. Expired rows are filtered in
// the query, so an expired session reads as absent rather than as an error.
func (r *SessionRepo) Get(ctx context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, apperrors.NotFound("session not found")
	}

	var sess domainauth.Session
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT id, user_id, role, expires_at
			FROM sessions
			WHERE id = $1 AND expires_at > now()`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		sess, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[domainauth.Session])
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return domainauth.Session{}, apperrors.NotFound("session not found")
	}
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("get session: %w", apperrors.MapDBError(err))
	}
	return sess, nil
}

// Delete removes a session row. Deleting an absent or empty ID is a no-op;
// logout must stay idempotent.
func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}

	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete session: %w", apperrors.MapDBError(err))
	}
	return nil
}

// DeleteExpired purges expired session rows and returns how many were
// removed. Correctness never depends on this running.
func (r *SessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= now()`)
		if err != nil {
			return err
		}
		affected = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", apperrors.MapDBError(err))
	}
	return affected, nil
}

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

// UserRepo provides durable storage for credential records.
//
// Lookups by email and username return the password hash; that is the one
// path where the hash is allowed to leave storage. GetByID never selects
// the hash column and returns the hash-free Principal shape.
type UserRepo struct {
	DB *sql.DB
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

const credentialColumns = `id, username, email, password_hash, role, dealer_id, created_at, updated_at`

const principalColumns = `id, username, email, role, dealer_id, created_at`

// Create inserts a new credential. The candidate must already carry the
// encoded password hash. Unique violations on email or username come back
// as Conflict errors naming the colliding field.
func (r *UserRepo) Create(ctx context.Context, cand domainauth.NewCredential) (domainauth.Credential, error) {
	var out domainauth.Credential
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO users (username, email, password_hash, role, dealer_id)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+credentialColumns,
			cand.Username, cand.Email, cand.PasswordHash, cand.Role, cand.DealerID)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[domainauth.Credential])
		return err
	})
	if err != nil {
		return domainauth.Credential{}, apperrors.MapDBError(err)
	}
	return out, nil
}

// credentialQueryParams groups arguments for single-credential lookups.
type credentialQueryParams struct {
	query    string
	arg      any
	errorMsg string
}

func (r *UserRepo) getCredentialByQuery(ctx context.Context, params credentialQueryParams) (domainauth.Credential, error) {
	var c domainauth.Credential
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, params.query, params.arg)
		if err != nil {
			return err
		}
		defer rows.Close()
		c, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[domainauth.Credential])
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return domainauth.Credential{}, apperrors.NotFound("user not found")
	}
	if err != nil {
		return domainauth.Credential{}, fmt.Errorf("%s: %w", params.errorMsg, apperrors.MapDBError(err))
	}
	return c, nil
}

// GetByEmail fetches a credential by exact email match, including the
// password hash for verification.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (domainauth.Credential, error) {
	return r.getCredentialByQuery(ctx, credentialQueryParams{
		query:    `SELECT ` + credentialColumns + ` FROM users WHERE email = $1`,
		arg:      email,
		errorMsg: "get user by email",
	})
}

// GetByUsername fetches a credential by exact username match, including
// the password hash for verification.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (domainauth.Credential, error) {
	return r.getCredentialByQuery(ctx, credentialQueryParams{
		query:    `SELECT ` + credentialColumns + ` FROM users WHERE username = $1`,
		arg:      username,
		errorMsg: "get user by username",
	})
}

// GetByID fetches the public view of a credential. The query never selects
// password_hash, so a compromised session-resolution path cannot exfiltrate
// hashes.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (domainauth.Principal, error) {
	var p domainauth.Principal
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT `+principalColumns+` FROM users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		p, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[domainauth.Principal])
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return domainauth.Principal{}, apperrors.NotFound("user not found")
	}
	if err != nil {
		return domainauth.Principal{}, fmt.Errorf("get user by id: %w", apperrors.MapDBError(err))
	}
	return p, nil
}

// ListByDealerAndRole returns the public views of all credentials for a
// dealer with the given role, ordered by creation time.
func (r *UserRepo) ListByDealerAndRole(
	ctx context.Context,
	dealerID int64,
	role domainauth.Role,
) ([]domainauth.Principal, error) {
	var out []domainauth.Principal
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+principalColumns+`
			FROM users
			WHERE dealer_id = $1 AND role = $2
			ORDER BY created_at, id`, dealerID, role)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectRows(rows, pgx.RowToStructByName[domainauth.Principal])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list users by dealer and role: %w", apperrors.MapDBError(err))
	}
	return out, nil
}

// Delete removes a credential by ID. Deleting an absent ID reports
// NotFound so the caller can distinguish it from success.
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		affected = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete user: %w", apperrors.MapDBError(err))
	}
	if affected == 0 {
		return apperrors.NotFound("user not found")
	}
	return nil
}

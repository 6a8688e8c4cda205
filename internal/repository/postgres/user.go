package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mnibras/user-manager-api/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

type UserRepository struct {
	db *Connection
}

func NewUserRepository(db *Connection) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

const userColumns = `id, user_id, first_name, last_name, username, email, password_hash,
	profile_image_url, last_login_date, last_login_date_display, join_date, role, active, not_locked`

func scanUser(row pgx.Row) (model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID, &user.UserID, &user.FirstName, &user.LastName, &user.Username, &user.Email,
		&user.PasswordHash, &user.ProfileImageURL, &user.LastLoginDate, &user.LastLoginDateDisplay,
		&user.JoinDate, &user.Role, &user.Active, &user.NotLocked,
	)
	if err != nil {
		return model.User{}, err
	}
	// Authorities are derived, not stored.
	user.Authorities = user.Role.Authorities()
	return user, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by username: %w", err)
	}

	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY join_date`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

// Save inserts the user when it has no id yet and updates it
// otherwise. Database unique constraints backstop the validator's
// uniqueness check; violations surface as the matching conflict error
// so a racing writer loses with a conflict instead of overwriting.
func (r *UserRepository) Save(ctx context.Context, user model.User) (model.User, error) {
	var row pgx.Row
	if user.ID == 0 {
		query := `INSERT INTO users (user_id, first_name, last_name, username, email, password_hash,
				  profile_image_url, last_login_date, last_login_date_display, join_date, role, active, not_locked)
				  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
				  RETURNING ` + userColumns

		row = r.db.QueryRow(ctx, query,
			user.UserID, user.FirstName, user.LastName, user.Username, user.Email, user.PasswordHash,
			user.ProfileImageURL, user.LastLoginDate, user.LastLoginDateDisplay, user.JoinDate,
			user.Role, user.Active, user.NotLocked,
		)
	} else {
		query := `UPDATE users SET first_name = $2, last_name = $3, username = $4, email = $5,
				  password_hash = $6, profile_image_url = $7, last_login_date = $8,
				  last_login_date_display = $9, role = $10, active = $11, not_locked = $12
				  WHERE id = $1
				  RETURNING ` + userColumns

		row = r.db.QueryRow(ctx, query,
			user.ID, user.FirstName, user.LastName, user.Username, user.Email, user.PasswordHash,
			user.ProfileImageURL, user.LastLoginDate, user.LastLoginDateDisplay,
			user.Role, user.Active, user.NotLocked,
		)
	}

	saved, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		if conflictErr := uniqueViolation(err); conflictErr != nil {
			return model.User{}, conflictErr
		}
		return model.User{}, fmt.Errorf("failed to save user: %w", err)
	}

	return saved, nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

const uniqueViolationCode = "23505"

func uniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolationCode {
		return nil
	}
	switch pgErr.ConstraintName {
	case "users_username_key":
		return model.ErrUsernameTaken
	case "users_email_key":
		return model.ErrEmailTaken
	default:
		return nil
	}
}

package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darslik/core/user"
)

type userRow struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Username     null.String    `db:"username"`
	Email        null.String    `db:"email"`
	IsActive     bool           `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash []byte         `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	LastLogin    null.Time      `db:"last_login"`
}

func newUserRow(usr user.User) userRow {
	if usr.PasswordHash == nil {
		usr.PasswordHash = []byte{}
	}
	if usr.Roles == nil {
		usr.Roles = []string{}
	}
	return userRow{
		ID:           usr.ID,
		Name:         usr.Name,
		Username:     null.NewString(usr.Username, usr.Username != ""),
		Email:        null.NewString(usr.Email, usr.Email != ""),
		IsActive:     usr.Active(),
		Roles:        pq.StringArray(usr.Roles),
		PasswordHash: usr.PasswordHash,
		CreatedAt:    usr.CreatedAt,
		UpdatedAt:    usr.UpdatedAt,
		LastLogin:    null.NewTime(usr.LastLogin, !usr.LastLogin.IsZero()),
	}
}

func (row userRow) toUser() user.User {
	usr := user.User{
		ID:           row.ID,
		Name:         row.Name,
		Username:     row.Username.String,
		Email:        row.Email.String,
		Roles:        []string(row.Roles),
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
		LastLogin:    row.LastLogin.Time.UTC(),
	}
	usr.SetActive(row.IsActive)
	return usr
}

const userColumns = `id, name, username, email, is_active, roles, password_hash, created_at, updated_at, last_login`

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	excluded := make(pq.StringArray, 0, len(excludedUsers))
	for _, usr := range excludedUsers {
		excluded = append(excluded, usr.ID)
	}

	var count int
	err := repo.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM users
		WHERE (username = $1 OR email = $2) AND NOT (id::text = ANY($3))`,
		null.NewString(username, username != ""), null.NewString(email, email != ""), excluded,
	)
	if err != nil {
		return err
	}
	if count > 0 {
		return user.ErrUserExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = newID(usr.ID)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (:id, :name, :username, :email, :is_active, :roles, :password_hash, :created_at, :updated_at, :last_login)`,
		newUserRow(usr),
	)
	if isUniqueViolation(err) {
		return user.User{}, user.ErrUserExists
	}
	if err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	var (
		row userRow
		err error
	)
	if filter.ID != "" {
		err = repo.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE id = $1`, filter.ID)
	} else {
		values := make(pq.StringArray, 0, len(filter.UsernameOrEmail))
		for _, v := range filter.UsernameOrEmail {
			if v != "" {
				values = append(values, v)
			}
		}
		err = repo.db.GetContext(ctx, &row, `
			SELECT `+userColumns+` FROM users
			WHERE username = ANY($1) OR email = ANY($1)
			ORDER BY created_at LIMIT 1`,
			values,
		)
	}
	if err != nil {
		return user.User{}, notFound(err, user.ErrNotFound)
	}
	return row.toUser(), nil
}

func (repo *userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = newID(usr.ID)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (:id, :name, :username, :email, :is_active, :roles, :password_hash, :created_at, :updated_at, :last_login)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			username = EXCLUDED.username,
			email = EXCLUDED.email,
			is_active = EXCLUDED.is_active,
			roles = EXCLUDED.roles,
			password_hash = EXCLUDED.password_hash,
			updated_at = EXCLUDED.updated_at`,
		newUserRow(usr),
	)
	if isUniqueViolation(err) {
		return user.User{}, user.ErrUserExists
	}
	if err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) SetLastLogin(ctx context.Context, id string, at time.Time) error {
	res, err := repo.db.ExecContext(ctx, `UPDATE users SET last_login = $2 WHERE id = $1`, id, at)
	return checkAffected(res, err, user.ErrNotFound)
}

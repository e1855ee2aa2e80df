package data

import (
	"context"
	"database/sql"
	"errors"
	"time"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/saasgenius/saasgenius/internal/biz"
)

type userRepo struct {
	data *Data
	log  *log.Helper
}

func NewUserRepo(data *Data, logger log.Logger) biz.UserRepo {
	return &userRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

const userColumns = `id, username, email, password_hash, subscription_type, created_at, last_login`

func scanUser(row *sql.Row) (*biz.User, error) {
	var u biz.User
	var lastLogin sql.NullTime
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.SubscriptionType, &u.CreatedAt, &lastLogin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, kerrors.NotFound("USER_NOT_FOUND", "user not found")
		}
		return nil, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLogin = &t
	}
	return &u, nil
}

func (r *userRepo) CreateUser(ctx context.Context, u *biz.User) (int, error) {
	var id int
	err := r.data.db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, password_hash, subscription_type)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		u.Username, u.Email, u.PasswordHash, u.SubscriptionType,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *userRepo) GetUserByID(ctx context.Context, id int) (*biz.User, error) {
	return scanUser(r.data.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *userRepo) GetUserByUsername(ctx context.Context, username string) (*biz.User, error) {
	return scanUser(r.data.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (r *userRepo) GetUserByEmail(ctx context.Context, email string) (*biz.User, error) {
	return scanUser(r.data.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *userRepo) UpdateLastLogin(ctx context.Context, id int) error {
	_, err := r.data.db.ExecContext(ctx,
		`UPDATE users SET last_login = $1 WHERE id = $2`, time.Now(), id)
	return err
}

func (r *userRepo) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	_, err := r.data.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $1 WHERE id = $2`, passwordHash, id)
	return err
}

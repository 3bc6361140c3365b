package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace/internal/domain/shop"
	"marketplace/internal/domain/user"
	"marketplace/internal/store"
)

const userColumns = `id, name, email, password_hash, phone_number, addresses, role, avatar, created_at, updated_at`

type Users struct {
	db *pgxpool.Pool
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.PhoneNumber, &u.Addresses, &u.Role, &u.Avatar, &u.CreatedAt, &u.UpdatedAt)
	if u.Addresses == nil {
		u.Addresses = []user.Address{}
	}
	return u, translate(err)
}

func (r *Users) Create(ctx context.Context, u *user.User) error {
	if u.ID == "" {
		u.ID = newID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	u.UpdatedAt = u.CreatedAt
	if u.Addresses == nil {
		u.Addresses = []user.Address{}
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, u.ID, u.Name, u.Email, u.PasswordHash, u.PhoneNumber, u.Addresses, u.Role, u.Avatar, u.CreatedAt, u.UpdatedAt)
	return translate(err)
}

func (r *Users) ByID(ctx context.Context, id string) (user.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
}

func (r *Users) ByEmail(ctx context.Context, email string) (user.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email))
}

func (r *Users) Update(ctx context.Context, u *user.User) error {
	u.UpdatedAt = time.Now().UTC()
	if u.Addresses == nil {
		u.Addresses = []user.Address{}
	}
	ct, err := r.db.Exec(ctx, `
		UPDATE users
		SET name=$2, email=$3, password_hash=$4, phone_number=$5, addresses=$6, role=$7, avatar=$8, updated_at=$9
		WHERE id=$1
	`, u.ID, u.Name, u.Email, u.PasswordHash, u.PhoneNumber, u.Addresses, u.Role, u.Avatar, u.UpdatedAt)
	if err != nil {
		return translate(err)
	}
	if ct.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Users) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

const shopColumns = `id, name, email, password_hash, description, address, phone_number, zip_code, role, avatar, created_at, updated_at`

type Shops struct {
	db *pgxpool.Pool
}

func scanShop(row rowScanner) (shop.Shop, error) {
	var s shop.Shop
	err := row.Scan(&s.ID, &s.Name, &s.Email, &s.PasswordHash, &s.Description, &s.Address, &s.PhoneNumber, &s.ZipCode, &s.Role, &s.Avatar, &s.CreatedAt, &s.UpdatedAt)
	return s, translate(err)
}

func (r *Shops) Create(ctx context.Context, s *shop.Shop) error {
	if s.ID == "" {
		s.ID = newID()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	s.UpdatedAt = s.CreatedAt
	_, err := r.db.Exec(ctx, `
		INSERT INTO shops (`+shopColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, s.ID, s.Name, s.Email, s.PasswordHash, s.Description, s.Address, s.PhoneNumber, s.ZipCode, s.Role, s.Avatar, s.CreatedAt, s.UpdatedAt)
	return translate(err)
}

func (r *Shops) ByID(ctx context.Context, id string) (shop.Shop, error) {
	return scanShop(r.db.QueryRow(ctx, `SELECT `+shopColumns+` FROM shops WHERE id=$1`, id))
}

func (r *Shops) ByEmail(ctx context.Context, email string) (shop.Shop, error) {
	return scanShop(r.db.QueryRow(ctx, `SELECT `+shopColumns+` FROM shops WHERE email=$1`, email))
}

func (r *Shops) Update(ctx context.Context, s *shop.Shop) error {
	s.UpdatedAt = time.Now().UTC()
	ct, err := r.db.Exec(ctx, `
		UPDATE shops
		SET name=$2, email=$3, password_hash=$4, description=$5, address=$6, phone_number=$7, zip_code=$8, role=$9, avatar=$10, updated_at=$11
		WHERE id=$1
	`, s.ID, s.Name, s.Email, s.PasswordHash, s.Description, s.Address, s.PhoneNumber, s.ZipCode, s.Role, s.Avatar, s.UpdatedAt)
	if err != nil {
		return translate(err)
	}
	if ct.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

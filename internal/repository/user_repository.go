package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/railway-seat-reservation/internal/model"
	"github.com/iliyamo/railway-seat-reservation/internal/utils"
)

// UserRepo provides access to the users table.
type UserRepo struct{ DB *sql.DB }

// NewUserRepo returns a UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user with a bcrypt-hashed password.  The caller
// supplies the generated userID (UUID).
func (r *UserRepo) Create(ctx context.Context, userID, username, password, name, email, mobileNo string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO users (user_id, username, name, password_hash, email, mobile_no) VALUES (?,?,?,?,?,?)`,
		userID, username, name, hash, email, mobileNo)
	if err != nil {
		if IsDuplicateKey(err) {
			return ErrUsernameExists
		}
		return err
	}
	return nil
}

// GetByUsername fetches a user by login name.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		`SELECT user_id, username, password_hash, name, email, mobile_no FROM users WHERE username = ? LIMIT 1`,
		username).Scan(&u.UserID, &u.Username, &u.PasswordHash, &u.Name, &u.Email, &u.MobileNo)
	return u, err
}

const profileCols = `user_id, username, name, email, mobile_no, gender, age, dob, country, state, city, street`

func scanProfile(scan func(dest ...interface{}) error) (model.User, error) {
	var u model.User
	var gender, dob, country, state, city, street sql.NullString
	var age sql.NullInt64
	err := scan(&u.UserID, &u.Username, &u.Name, &u.Email, &u.MobileNo,
		&gender, &age, &dob, &country, &state, &city, &street)
	if err != nil {
		return model.User{}, err
	}
	assign := func(ns sql.NullString, dst **string) {
		if ns.Valid {
			v := ns.String
			*dst = &v
		}
	}
	assign(gender, &u.Gender)
	assign(dob, &u.DOB)
	assign(country, &u.Country)
	assign(state, &u.State)
	assign(city, &u.City)
	assign(street, &u.Street)
	if age.Valid {
		v := uint8(age.Int64)
		u.Age = &v
	}
	return u, nil
}

// GetProfile fetches the profile fields of one user.
func (r *UserRepo) GetProfile(ctx context.Context, userID string) (model.User, error) {
	q := `SELECT ` + profileCols + ` FROM users WHERE user_id = ?`
	return scanProfile(r.DB.QueryRowContext(ctx, q, userID).Scan)
}

// UpdateProfile overwrites the editable profile fields of one user and
// returns the stored result.
func (r *UserRepo) UpdateProfile(ctx context.Context, u model.User) (model.User, error) {
	const q = `UPDATE users
	           SET name = ?, email = ?, mobile_no = ?, gender = ?, age = ?, dob = ?,
	               country = ?, state = ?, city = ?, street = ?
	           WHERE user_id = ?`
	deref := func(p *string) interface{} {
		if p == nil {
			return nil
		}
		return *p
	}
	var age interface{}
	if u.Age != nil {
		age = *u.Age
	}
	_, err := r.DB.ExecContext(ctx, q,
		u.Name, u.Email, u.MobileNo, deref(u.Gender), age, deref(u.DOB),
		deref(u.Country), deref(u.State), deref(u.City), deref(u.Street), u.UserID)
	if err != nil {
		return model.User{}, err
	}
	return r.GetProfile(ctx, u.UserID)
}

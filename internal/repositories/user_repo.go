package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	intconfig "backend/internal/config"
	intdb "backend/internal/db"
	"backend/internal/domain"
	"backend/internal/domain/models"
)

// UserRepo is the principal directory: accounts plus their role membership.
type UserRepo struct {
	DB *sql.DB
}

func (r UserRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r UserRepo) Create(username, email, passwordHash string) (int64, error) {
	res, err := r.db().Exec(
		`INSERT INTO users (username, email, password_hash) VALUES (?, ?, ?)`,
		username, email, passwordHash,
	)
	if err != nil {
		if intdb.IsDuplicate(err) {
			return 0, domain.ConflictError{Resource: "user", Msg: "username already taken"}
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (r UserRepo) GetByID(id int64) (models.User, error) {
	var u models.User
	err := r.db().QueryRow(
		`SELECT id, username, email, created_at FROM users WHERE id=?`, id,
	).Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, domain.NotFoundError{Resource: "user", ID: id}
		}
		return models.User{}, err
	}
	return u, nil
}

func (r UserRepo) GetByUsername(username string) (models.User, error) {
	var u models.User
	err := r.db().QueryRow(
		`SELECT id, username, email, created_at FROM users WHERE username=?`,
		strings.TrimSpace(username),
	).Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, domain.NotFoundError{Resource: "user"}
		}
		return models.User{}, err
	}
	return u, nil
}

// GetCredentials looks an account up by username or email for login.
func (r UserRepo) GetCredentials(login string) (models.User, string, error) {
	var (
		u    models.User
		hash string
	)
	err := r.db().QueryRow(
		`SELECT id, username, email, password_hash, created_at FROM users WHERE username=? OR email=?`,
		login, login,
	).Scan(&u.ID, &u.Username, &u.Email, &hash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, "", domain.NotFoundError{Resource: "user"}
		}
		return models.User{}, "", err
	}
	return u, hash, nil
}

func (r UserRepo) UpdateProfile(id int64, username, email string) error {
	res, err := r.db().Exec(
		`UPDATE users SET username=?, email=? WHERE id=?`,
		strings.TrimSpace(username), strings.TrimSpace(email), id,
	)
	if err != nil {
		if intdb.IsDuplicate(err) {
			return domain.ConflictError{Resource: "user", Msg: "username already taken"}
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Zero rows can also mean "no change"; confirm existence.
		if _, err := r.GetByID(id); err != nil {
			return err
		}
	}
	return nil
}

func (r UserRepo) GetPasswordHash(id int64) (string, error) {
	var hash string
	err := r.db().QueryRow(`SELECT password_hash FROM users WHERE id=?`, id).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.NotFoundError{Resource: "user", ID: id}
		}
		return "", err
	}
	return hash, nil
}

func (r UserRepo) UpdatePassword(id int64, passwordHash string) error {
	_, err := r.db().Exec(`UPDATE users SET password_hash=? WHERE id=?`, passwordHash, id)
	return err
}

// RolesOf resolves the role set of a principal. Unknown role names in the
// table are skipped rather than surfaced; the set may be empty.
func (r UserRepo) RolesOf(userID int64) (domain.RoleSet, error) {
	rows, err := r.db().Query(`SELECT role FROM user_roles WHERE user_id=?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := domain.RoleSet{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		if role, ok := domain.ParseRole(name); ok {
			set[role] = struct{}{}
		}
	}
	return set, rows.Err()
}

// AssignRole adds a role to a user, keeping existing ones.
func (r UserRepo) AssignRole(userID int64, role domain.Role) error {
	_, err := r.db().Exec(
		`INSERT IGNORE INTO user_roles (user_id, role) VALUES (?, ?)`,
		userID, string(role),
	)
	return err
}

// ReplaceRoles clears the user's role set and assigns the single given role.
func (r UserRepo) ReplaceRoles(userID int64, role domain.Role) error {
	tx, err := r.db().Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM user_roles WHERE user_id=?`, userID); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.Exec(`INSERT INTO user_roles (user_id, role) VALUES (?, ?)`, userID, string(role)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// MissingIDs returns the subset of ids that do not resolve to users,
// preserving input order. Used for wholesale crew validation.
func (r UserRepo) MissingIDs(ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := r.db().Query(
		fmt.Sprintf(`SELECT id FROM users WHERE id IN (%s)`, placeholders), args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	found := map[int64]bool{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var missing []int64
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

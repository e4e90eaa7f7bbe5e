package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"chronoManager/internal/db"
	"chronoManager/models"
)

var selectUserSQL = `SELECT ` + db.UsersTable.ColumnList() + ` FROM ` + db.UsersTable.Name

// searchLimit caps the rows of one Search call.
const searchLimit = 50

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(d *sqlx.DB) *UserRepository {
	return &UserRepository{db: d}
}

// Create inserts a new user and returns its generated ID.
// u.ID and u.CreatedAt are ignored; the store assigns both.
func (r *UserRepository) Create(ctx context.Context, u *models.User) (int64, error) {
	if u == nil {
		return 0, invalid("user")
	}
	switch {
	case strings.TrimSpace(u.Name) == "":
		return 0, invalid("name")
	case strings.TrimSpace(u.Email) == "":
		return 0, invalid("email")
	case strings.TrimSpace(u.Role) == "":
		return 0, invalid("role")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `INSERT INTO users (name, email, role, biotime_id) VALUES (?, ?, ?, ?)`,
		u.Name, u.Email, u.Role, u.BiotimeID)
	if err != nil {
		return 0, classify("insert user", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, classify("insert user", err)
	}
	return id, nil
}

// GetByEmail returns the user with exactly this email, or ErrNotFound.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var u models.User
	if err := r.db.GetContext(ctx, &u, selectUserSQL+` WHERE email = ?`, email); err != nil {
		return nil, classify("get user by email", err)
	}
	if err := checkUser("get user by email", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var u models.User
	if err := r.db.GetContext(ctx, &u, selectUserSQL+` WHERE id = ?`, id); err != nil {
		return nil, classify("get user by id", err)
	}
	if err := checkUser("get user by id", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// List returns users ordered by name. limit defaults to 100.
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	out := []models.User{}
	if err := r.db.SelectContext(ctx, &out, selectUserSQL+` ORDER BY name, id LIMIT ? OFFSET ?`, limit, offset); err != nil {
		return nil, classify("list users", err)
	}
	if err := checkUsers("list users", out); err != nil {
		return nil, err
	}
	return out, nil
}

// Search returns up to 50 users whose name or email contains query, ordered
// by name. LIKE wildcards in query match literally.
func (r *UserRepository) Search(ctx context.Context, query string) ([]models.User, error) {
	pattern := "%" + likeEscaper.Replace(query) + "%"
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	out := []models.User{}
	err := r.db.SelectContext(ctx, &out, selectUserSQL+` WHERE name LIKE ? ESCAPE '\' OR email LIKE ? ESCAPE '\' ORDER BY name, id LIMIT ?`,
		pattern, pattern, searchLimit)
	if err != nil {
		return nil, classify("search users", err)
	}
	if err := checkUsers("search users", out); err != nil {
		return nil, err
	}
	return out, nil
}

// checkUser rejects a row whose created_at could not be decoded.
func checkUser(op string, u *models.User) error {
	if u.CreatedAt.IsZero() {
		return &DatabaseError{Op: op, Err: fmt.Errorf("user %d: created_at: unparseable timestamp", u.ID)}
	}
	return nil
}

func checkUsers(op string, users []models.User) error {
	for i := range users {
		if err := checkUser(op, &users[i]); err != nil {
			return err
		}
	}
	return nil
}

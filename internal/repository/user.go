package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/cleberrangel/diane-api/internal/model"
)

// UserRepository handles user data operations
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, first_name, created_at`

func scanUser(row *sql.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(&user.ID, &user.Email, &user.FirstName, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by email, case-insensitively
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, normalizeEmail(email)))
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar usuário: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user by id
func (r *UserRepository) GetByID(ctx context.Context, id int) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar usuário: %w", err)
	}
	return user, nil
}

// GetOrCreate returns the user with email, creating it with firstName when
// missing. The boolean reports whether the user was created.
func (r *UserRepository) GetOrCreate(ctx context.Context, email, firstName string) (*model.User, bool, error) {
	email = normalizeEmail(email)
	if firstName == "" {
		firstName = defaultFirstName(email)
	}

	// ON CONFLICT DO NOTHING não devolve linha quando o usuário já existe
	query := `
		INSERT INTO users (email, first_name, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (email) DO NOTHING
		RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email, firstName))
	if err != nil {
		return nil, false, fmt.Errorf("erro ao criar usuário: %w", err)
	}
	if user != nil {
		return user, true, nil
	}

	user, err = r.GetByEmail(ctx, email)
	if err != nil {
		return nil, false, err
	}
	if user == nil {
		return nil, false, fmt.Errorf("usuário %s não encontrado após conflito", email)
	}
	return user, false, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// defaultFirstName usa a parte local do email quando o nome não é informado
func defaultFirstName(email string) string {
	local := email
	if i := strings.Index(email, "@"); i > 0 {
		local = email[:i]
	}
	if local == "" {
		return "friend"
	}
	runes := []rune(local)
	return strings.ToUpper(string(runes[0])) + string(runes[1:])
}

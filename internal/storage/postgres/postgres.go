package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/lib/pq"

	"github.com/harutok/counts-service/internal/config"
	"github.com/harutok/counts-service/internal/storage"
	"github.com/harutok/counts-service/internal/types"
	"github.com/harutok/counts-service/internal/types/users"
)

type Postgres struct {
	Db *sql.DB
}

func NewPostgres(cfg *config.Config) (*Postgres, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.PGSQL.Host, cfg.PGSQL.Port, cfg.PGSQL.User, cfg.PGSQL.Password, cfg.PGSQL.DBName, cfg.PGSQL.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	pg := &Postgres{Db: db}
	if err := pg.CreateTables(); err != nil {
		log.Fatal("Failed to create tables:", err)
	}

	return pg, nil
}

func (p *Postgres) CreateTables() error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS daily_roly_poly_direction_counts (
			id SERIAL PRIMARY KEY,
			user_id INTEGER NOT NULL,
			date DATE NOT NULL,
			east INTEGER NOT NULL DEFAULT 0,
			west INTEGER NOT NULL DEFAULT 0,
			south INTEGER NOT NULL DEFAULT 0,
			north INTEGER NOT NULL DEFAULT 0,
			UNIQUE (user_id, date)
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS daily_others_counts (
			id SERIAL PRIMARY KEY,
			user_id INTEGER NOT NULL,
			date DATE NOT NULL,
			dog INTEGER NOT NULL DEFAULT 0,
			cat INTEGER NOT NULL DEFAULT 0,
			butterfly INTEGER NOT NULL DEFAULT 0,
			UNIQUE (user_id, date)
		);
		`,
	}

	for _, q := range queries {
		if _, err := p.Db.Exec(q); err != nil {
			return err
		}
	}

	return nil
}

func (p *Postgres) CreateUser(ctx context.Context, email string) (users.User, error) {
	var user users.User
	query := `
	INSERT INTO users (email)
	VALUES ($1)
	RETURNING id, email
	`

	err := p.Db.QueryRowContext(ctx, query, email).Scan(&user.ID, &user.Email)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return users.User{}, storage.ErrDuplicateEmail
		}
		return users.User{}, err
	}

	return user, nil
}

func (p *Postgres) GetUser(ctx context.Context, id int64, email string) (users.User, error) {
	conds := []string{}
	args := []interface{}{}
	if id > 0 {
		args = append(args, id)
		conds = append(conds, fmt.Sprintf("id = $%d", len(args)))
	}
	if email != "" {
		args = append(args, email)
		conds = append(conds, fmt.Sprintf("email = $%d", len(args)))
	}
	if len(conds) == 0 {
		return users.User{}, errors.New("user lookup requires an id or email filter")
	}

	var user users.User
	query := "SELECT id, email FROM users WHERE " + strings.Join(conds, " AND ")

	err := p.Db.QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return users.User{}, storage.ErrNotFound
	}
	if err != nil {
		return users.User{}, err
	}

	return user, nil
}

func (p *Postgres) GetDayCounts(ctx context.Context, category types.Category, userID int64, day string) (map[string]int64, error) {
	// Column list comes from the category descriptor, never from callers.
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE user_id = $1 AND date = $2",
		strings.Join(category.Fields, ", "), category.Table,
	)

	values := make([]int64, len(category.Fields))
	dest := make([]interface{}, len(values))
	for i := range values {
		dest[i] = &values[i]
	}

	err := p.Db.QueryRowContext(ctx, query, userID, day).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(category.Fields))
	for i, field := range category.Fields {
		counts[field] = values[i]
	}

	return counts, nil
}

func (p *Postgres) IncrementDayCount(ctx context.Context, category types.Category, userID int64, day, field string) error {
	// The column identifier must be the descriptor's own literal; the
	// caller's string only selects it and never reaches the SQL text.
	column, ok := category.Column(field)
	if !ok {
		return storage.ErrInvalidField
	}

	// Single atomic upsert: first count-up of the day creates the row with
	// this field at 1 and every other field at its zero default; later
	// count-ups increment in place. Concurrent callers serialize on the
	// (user_id, date) unique constraint, so no update is ever lost.
	query := fmt.Sprintf(`
	INSERT INTO %[1]s (user_id, date, %[2]s)
	VALUES ($1, $2, 1)
	ON CONFLICT (user_id, date) DO UPDATE SET %[2]s = %[1]s.%[2]s + 1
	`, category.Table, column)

	result, err := p.Db.ExecContext(ctx, query, userID, day)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return storage.ErrWriteFailed
	}

	return nil
}

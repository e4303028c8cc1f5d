package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/aussiebroadwan/tabkeeper/internal/auth/domain"
	"github.com/aussiebroadwan/tabkeeper/internal/auth/store"
)

const clientColumns = `id, name, secret_hash, scopes, protected, created_at, updated_at`

type clientsRepo struct {
	q   querier
	now func() time.Time
}

func scanClient(row interface{ Scan(...any) error }) (domain.Client, error) {
	var (
		c                domain.Client
		secret           sql.NullString
		scopes           string
		created, updated int64
	)
	if err := row.Scan(&c.ID, &c.Name, &secret, &scopes, &c.Protected, &created, &updated); err != nil {
		return domain.Client{}, mapNotFound(err)
	}
	c.SecretHash = mapNullString(secret)
	c.Scopes = splitScopes(scopes)
	c.CreatedAt = unixTime(created)
	c.UpdatedAt = unixTime(updated)
	return c, nil
}

func (r *clientsRepo) GetClientByID(ctx context.Context, id string) (domain.Client, error) {
	return scanClient(r.q.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = ?`, id))
}

func (r *clientsRepo) ListClients(ctx context.Context) ([]domain.Client, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+clientColumns+` FROM clients ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (r *clientsRepo) CreateClient(ctx context.Context, c domain.Client) error {
	now := r.now().Unix()
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO clients (`+clientColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, mapStringNull(c.SecretHash), strings.Join(c.Scopes, " "), c.Protected, now, now,
	)
	return mapConstraint(err)
}

func (r *clientsRepo) UpdateClientScopes(ctx context.Context, clientID string, scopes []string) error {
	return expectOne(r.q.ExecContext(ctx,
		`UPDATE clients SET scopes = ?, updated_at = ? WHERE id = ?`,
		strings.Join(scopes, " "), r.now().Unix(), clientID,
	))
}

func (r *clientsRepo) DeleteClient(ctx context.Context, clientID string) error {
	return expectOne(r.q.ExecContext(ctx,
		`DELETE FROM clients WHERE id = ? AND protected = 0`, clientID))
}

func (r *clientsRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int64
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM clients`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}

// expectOne maps a statement that touched no rows to ErrNotFound.
func expectOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

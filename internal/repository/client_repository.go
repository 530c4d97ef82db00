package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/models"
)

// ClientRepository is the read side of client accounts. Client CRUD lives
// elsewhere; the booking core only verifies and names clients.
type ClientRepository struct {
	db *sql.DB
}

// NewClientRepository creates a new ClientRepository
func NewClientRepository(db *sql.DB) *ClientRepository {
	if db == nil {
		panic("ClientRepository: db is nil")
	}
	return &ClientRepository{db: db}
}

// GetByID retrieves a client by ID
func (r *ClientRepository) GetByID(ctx context.Context, q Querier, id int64) (*models.Client, error) {
	query := `
		SELECT c.id, c.nom, c.prenom, c.telephone, c.email,
			c.status, c.is_active, c.created_at, c.updated_at
		FROM clients c
		WHERE c.id = :1`

	var client models.Client
	var email sql.NullString
	var isActive int
	var createdAt, updatedAt sql.NullTime

	err := q.QueryRowContext(ctx, query, id).Scan(
		&client.ID, &client.Nom, &client.Prenom, &client.Telephone, &email,
		&client.Status, &isActive, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	client.Email = StringPtrFromNull(email)
	client.IsActive = IntToBool(isActive)
	client.CreatedAt = TimeValueFromNull(createdAt)
	client.UpdatedAt = TimeValueFromNull(updatedAt)
	return &client, nil
}

// DB exposes the pool for callers that run outside a transaction
func (r *ClientRepository) DB() Querier { return r.db }

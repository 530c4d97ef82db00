package models

import "time"

// ClientStatus represents the status of a client account
type ClientStatus string

const (
	ClientStatusActif    ClientStatus = "ACTIF"
	ClientStatusInactif  ClientStatus = "INACTIF"
	ClientStatusSuspendu ClientStatus = "SUSPENDU"
)

// Client represents a rental client.
// Column names keep the historical French schema (nom, prenom, telephone);
// the Booking Core only reads clients, CRUD lives elsewhere.
type Client struct {
	ID        int64        `json:"id"`
	Nom       string       `json:"nom"`
	Prenom    string       `json:"prenom"`
	Telephone string       `json:"telephone"`
	Email     *string      `json:"email,omitempty"`
	Status    ClientStatus `json:"status"`
	IsActive  bool         `json:"is_active"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// FullName returns "Prenom Nom" for display in conflict summaries and notifications
func (c *Client) FullName() string {
	if c == nil {
		return ""
	}
	if c.Prenom == "" {
		return c.Nom
	}
	return c.Prenom + " " + c.Nom
}

// ClientResponse represents the API response for a client
type ClientResponse struct {
	ID        int64        `json:"id"`
	Nom       string       `json:"nom"`
	Prenom    string       `json:"prenom"`
	Telephone string       `json:"telephone"`
	Email     *string      `json:"email,omitempty"`
	Status    ClientStatus `json:"status"`
}

// ToResponse converts a Client to ClientResponse
func (c *Client) ToResponse() ClientResponse {
	if c == nil {
		return ClientResponse{}
	}
	return ClientResponse{
		ID:        c.ID,
		Nom:       c.Nom,
		Prenom:    c.Prenom,
		Telephone: c.Telephone,
		Email:     c.Email,
		Status:    c.Status,
	}
}

package http

import (
	"time"

	"github.com/mrlokans/uploadauth/internal/entities"
)

// AccountResponse is the public view of an account.
type AccountResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

func newAccountResponse(a *entities.Account) AccountResponse {
	return AccountResponse{
		ID:        a.ID,
		Email:     a.Email,
		IsActive:  a.IsActive,
		IsAdmin:   a.IsAdmin,
		CreatedAt: a.CreatedAt,
	}
}

func newAccountResponses(accounts []entities.Account) []AccountResponse {
	out := make([]AccountResponse, 0, len(accounts))
	for i := range accounts {
		out = append(out, newAccountResponse(&accounts[i]))
	}
	return out
}

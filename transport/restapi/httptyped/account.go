package httptyped

import (
	"time"

	"github.com/yusufsyaifudin/appstore/internal/svc/authsvc"
)

type Account struct {
	ID         int64     `json:"id,string"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	Language   string    `json:"language"`
	Avatar     string    `json:"avatar,omitempty"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func AccountFromSvc(acc authsvc.Account) Account {
	return Account{
		ID:         acc.ID,
		Email:      acc.Email,
		Name:       acc.Name,
		Role:       string(acc.Role),
		Language:   string(acc.Language),
		Avatar:     acc.Avatar,
		IsVerified: acc.IsVerified,
		CreatedAt:  acc.CreatedAt,
		UpdatedAt:  acc.UpdatedAt,
	}
}

type AccountResp struct {
	Account Account `json:"account"`
}

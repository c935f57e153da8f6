package authsvc

import (
	"fmt"
	"time"

	"github.com/yusufsyaifudin/appstore/internal/svc/accountrepo"
	"github.com/yusufsyaifudin/appstore/internal/svc/locale"
	"github.com/yusufsyaifudin/appstore/internal/svc/policy"
	"github.com/yusufsyaifudin/appstore/internal/svc/svcerr"
	"github.com/yusufsyaifudin/appstore/pkg/validator"
)

func AccountFromRepo(acc accountrepo.Account) Account {
	return Account{
		ID:         acc.ID,
		Email:      acc.Email,
		Name:       acc.Name,
		Role:       policy.Role(acc.Role),
		Language:   locale.Lang(acc.Language),
		Avatar:     acc.Avatar,
		IsVerified: acc.IsVerified,
		CreatedAt:  time.UnixMicro(acc.CreatedAt).UTC(),
		UpdatedAt:  time.UnixMicro(acc.UpdatedAt).UTC(),
	}
}

func validateName(name string) error {
	if validator.Var(name, fmt.Sprintf("max=%d", maxNameLength)) != nil {
		return svcerr.InvalidInput("name must be at most %d characters", maxNameLength)
	}

	return nil
}

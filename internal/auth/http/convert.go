package http

import (
	"github.com/campusid/auth/internal/auth/domain"
	"github.com/campusid/auth/pkg/authsdk"
)

func toUserSummary(v domain.AccountView) authsdk.UserSummary {
	return authsdk.UserSummary{
		ID:        v.ID,
		Email:     v.Email,
		Role:      v.Role.String(),
		FirstName: v.FirstName,
		LastName:  v.LastName,
	}
}

func toAccountResponse(v domain.AccountView) authsdk.AccountResponse {
	return authsdk.AccountResponse{
		UserSummary: toUserSummary(v),
		Login:       v.Login,
	}
}

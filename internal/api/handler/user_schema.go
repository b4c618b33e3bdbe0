package handler

import (
	"time"

	"github.com/corehr/identity-service/internal/core/domain"
)

// userResponse is the wire shape for a user in any projection. Sensitive
// fields are pointers marked omitempty so a base projection serializes
// without the salary and national_id keys entirely, not as nulls.
type userResponse struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Salary     *string   `json:"salary,omitempty"`
	NationalID *string   `json:"national_id,omitempty"`
}

type listUsersResponse struct {
	Users []userResponse `json:"users"`
	Total int            `json:"total"`
}

type updateResponse struct {
	Updated bool `json:"updated"`
}

func toUserResponse(view domain.UserView) userResponse {
	switch v := view.(type) {
	case *domain.FullView:
		resp := baseResponse(v.BaseView)
		if v.Sensitive.Salary != nil {
			s := domain.FormatSalary(*v.Sensitive.Salary)
			resp.Salary = &s
		}
		resp.NationalID = v.Sensitive.NationalID
		return resp
	case *domain.BaseView:
		return baseResponse(*v)
	default:
		return userResponse{}
	}
}

func baseResponse(v domain.BaseView) userResponse {
	return userResponse{
		ID:        v.ID,
		Email:     v.Email,
		Name:      v.Name,
		Role:      string(v.Role),
		IsActive:  v.IsActive,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

func toListResponse(views []domain.UserView) listUsersResponse {
	users := make([]userResponse, 0, len(views))
	for _, v := range views {
		users = append(users, toUserResponse(v))
	}
	return listUsersResponse{Users: users, Total: len(users)}
}

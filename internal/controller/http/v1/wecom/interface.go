package wecom

import (
	"context"

	"manpower/backend/internal/repository/hrbackend"
)

type LineUsers interface {
	ListLineUsers(ctx context.Context) ([]hrbackend.LineUser, error)
	GetLineUser(ctx context.Context, id int) (hrbackend.LineUser, error)
	CreateLineUser(ctx context.Context, request hrbackend.LineUserRequest) (hrbackend.LineUser, error)
	UpdateLineUser(ctx context.Context, id int, request hrbackend.LineUserRequest) (*hrbackend.LineUser, error)
	DeleteLineUser(ctx context.Context, id int) error
	GetEmployeeActive(ctx context.Context) ([]hrbackend.EmployeeActive, error)
}

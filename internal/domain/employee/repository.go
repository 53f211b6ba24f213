package employee

import "context"

// Directory is the org-structure collaborator.
type Directory interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	GetDepartment(ctx context.Context, id string) (Department, error)
	ListActive(ctx context.Context) ([]Employee, error)
}

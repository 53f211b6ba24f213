package authority

import (
	"context"
	"errors"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/user"
)

// ErrUnauthorized is returned for every failed reviewer check. The concrete
// reason (unknown employee, no reporting line) is only logged.
var ErrUnauthorized = errors.New("you are not allowed to review requests for this employee")

// Checker decides whether an actor may approve or reject requests that
// concern an employee.
type Checker interface {
	Authorize(ctx context.Context, actor user.Identity, employeeID string) error
}

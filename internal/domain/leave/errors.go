package leave

import "errors"

var ErrInvalidInterval = errors.New("leave end date must not be before start date")

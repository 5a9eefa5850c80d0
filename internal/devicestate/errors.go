package devicestate

import "codeberg.org/mutker/devicectl/internal/errors"

const (
	ErrSubscribeFailed = errors.ErrorCode("devicestate_subscribe_failed")
	ErrNilAdapter      = errors.ErrorCode("devicestate_nil_adapter")
	ErrNilSource       = errors.ErrorCode("devicestate_nil_source")
)

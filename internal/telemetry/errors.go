package telemetry

import "codeberg.org/mutker/devicectl/internal/errors"

const (
	// Configuration Errors
	ErrInvalidConfig = errors.ErrorCode("telemetry_invalid_config")

	// Connection Errors
	ErrConnectFailed   = errors.ErrorCode("telemetry_connect_failed")
	ErrPublishFailed   = errors.ErrorCode("telemetry_publish_failed")
	ErrPublishTimeout  = errors.ErrorCode("telemetry_publish_timeout")
	ErrSinkUnavailable = errors.ErrorCode("telemetry_sink_unavailable")
	ErrSinkClosed      = errors.ErrorCode("telemetry_sink_closed")
	ErrListenFailed    = errors.ErrorCode("telemetry_listen_failed")

	// Operation Errors
	ErrEncodeFailed    = errors.ErrorCode("telemetry_encode_failed")
	ErrServiceShutdown = errors.ErrorCode("telemetry_service_shutdown_failed")
)

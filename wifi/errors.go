package wifi

import "errors"

var (
	ErrNoUSBAdapter     = errors.New("no USB wifi adapter found")
	ErrAdapterNotFound  = errors.New("wifi adapter not found")
	ErrDaemon           = errors.New("network daemon command failed")
	ErrConnectionFailed = errors.New("connection failed")
	ErrOutputParse      = errors.New("failed to parse daemon output")
	ErrExecution        = errors.New("failed to execute command")
	ErrNetworkNotFound  = errors.New("network not found")
	ErrNotSupported     = errors.New("not supported")
)

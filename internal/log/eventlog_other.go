//go:build !windows && !unix

package log

import "errors"

func openHostLog(_ string) (HostLog, error) {
	return nil, errors.New("host event log is not supported on this platform")
}

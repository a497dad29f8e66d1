//go:build !windows

package proc

import "errors"

var errNoProcessQuery = errors.New("process queries are only available on windows")

func openProcess(int) (processHandle, error) {
	return nil, errNoProcessQuery
}

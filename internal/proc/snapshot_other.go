//go:build !windows

package proc

import "github.com/pranshuparmar/wholocked/pkg/model"

func getAllProcessesOS() ([]model.ProcessSummary, error) {
	return nil, errNoProcessQuery
}

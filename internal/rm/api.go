// Package rm drives the Windows Restart Manager session protocol to find out
// which processes hold a file or directory open.
//
// A query is one short session: RmStartSession, RmRegisterResources with a
// single path, RmGetList, RmEndSession. The raw calls sit behind API so the
// protocol can be exercised without rstrtmgr.dll.
package rm

import "github.com/pranshuparmar/wholocked/pkg/model"

// Handle identifies an open restart manager session
type Handle uint32

// API is the raw restart manager surface. Implementations return a Status
// (or any other error) for non-zero results.
type API interface {
	StartSession() (Handle, string, error)
	RegisterFiles(h Handle, paths []string) error
	// GetList fills at most capacity holders. On StatusMoreData the returned
	// List carries Needed and no holders.
	GetList(h Handle, capacity int) (List, error)
	EndSession(h Handle) error
}

// List is the decoded result of one RmGetList call
type List struct {
	Holders []model.LockHolder
	Needed  int
	Reasons model.RebootReason
}

// System returns the restart manager of the running OS
func System() API {
	return systemAPI{}
}

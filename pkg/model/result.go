package model

import (
	"fmt"
	"strings"
)

// Lock pairs a holder with the path it was found on. Reasons is what
// RmGetList reported for that path as a whole.
type Lock struct {
	Path    string
	Holder  LockHolder
	Reasons RebootReason
}

// Report is the outcome of one command line target
type Report struct {
	Target        string
	Resolved      string
	Recursive     bool
	Locks         []Lock
	RebootReasons RebootReason
	Warnings      []string
}

// AddLock appends l. The first lock of a path that needs a reboot to be
// released also adds a warning naming the reasons.
func (r *Report) AddLock(l Lock) {
	if l.Reasons != RebootNone {
		r.RebootReasons |= l.Reasons
		if n := len(r.Locks); n == 0 || r.Locks[n-1].Path != l.Path {
			r.Warnings = append(r.Warnings, fmt.Sprintf("%s: reboot required (%s)", l.Path, strings.Join(l.Reasons.Names(), ", ")))
		}
	}
	r.Locks = append(r.Locks, l)
}

package model

import "time"

// LockHolder is a process the restart manager reports as holding a resource.
type LockHolder struct {
	PID         int
	Name        string
	ServiceName string
	AppType     AppType
	AppStatus   uint32
	SessionID   uint32
	Restartable bool

	// StartTime is kept as the raw FILETIME so it can be compared exactly
	// against the running process (PID reuse detection)
	StartTime Filetime

	// Times is nil until the holder has been enriched
	Times *ProcessTimes
}

// ProcessTimes holds the details fetched by a secondary query keyed by PID
// and start time
type ProcessTimes struct {
	Exit   time.Time // zero while the process is still running
	Kernel time.Duration
	User   time.Duration
	Image  string
}

// FullName returns the full image path when it is known, else the app name
func (h LockHolder) FullName() string {
	if h.Times != nil && h.Times.Image != "" {
		return h.Times.Image
	}
	return h.Name
}

// ProcessSummary holds basic information about a process for ancestry lookups
type ProcessSummary struct {
	PID     int
	PPID    int
	Command string
}

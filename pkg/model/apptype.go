package model

import "strconv"

// AppType classifies a lock holder (RM_APP_TYPE)
type AppType uint32

const (
	AppUnknown     AppType = 0
	AppMainWindow  AppType = 1
	AppOtherWindow AppType = 2
	AppService     AppType = 3
	AppExplorer    AppType = 4
	AppConsole     AppType = 5
	AppCritical    AppType = 1000
)

var appTypeNames = map[AppType]string{
	AppUnknown:     "unknown",
	AppMainWindow:  "main-window",
	AppOtherWindow: "other-window",
	AppService:     "service",
	AppExplorer:    "explorer",
	AppConsole:     "console",
	AppCritical:    "critical",
}

func (a AppType) String() string {
	if name, ok := appTypeNames[a]; ok {
		return name
	}
	return "app-type(" + strconv.FormatUint(uint64(a), 10) + ")"
}

func (a AppType) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// RebootReason is the bit set RmGetList reports alongside the list
type RebootReason uint32

const (
	RebootNone             RebootReason = 0
	RebootPermissionDenied RebootReason = 0x1
	RebootSessionMismatch  RebootReason = 0x2
	RebootCriticalProcess  RebootReason = 0x4
	RebootCriticalService  RebootReason = 0x8
	RebootDetectedSelf     RebootReason = 0x10
)

var rebootReasonNames = []struct {
	flag RebootReason
	name string
}{
	{RebootPermissionDenied, "permission-denied"},
	{RebootSessionMismatch, "session-mismatch"},
	{RebootCriticalProcess, "critical-process"},
	{RebootCriticalService, "critical-service"},
	{RebootDetectedSelf, "detected-self"},
}

// Names lists the reasons set in r, in flag order
func (r RebootReason) Names() []string {
	var out []string
	for _, rn := range rebootReasonNames {
		if r&rn.flag != 0 {
			out = append(out, rn.name)
		}
	}
	return out
}

//go:build windows

package rm

import (
	"unsafe"

	"github.com/pranshuparmar/wholocked/pkg/model"
	"golang.org/x/sys/windows"
)

const (
	cchRMSessionKey = 32 // sizeof(GUID) * 2
	cchRMMaxAppName = 255
	cchRMMaxSvcName = 63
)

var (
	modrstrtmgr = windows.NewLazySystemDLL("rstrtmgr.dll")

	procRmStartSession      = modrstrtmgr.NewProc("RmStartSession")
	procRmRegisterResources = modrstrtmgr.NewProc("RmRegisterResources")
	procRmGetList           = modrstrtmgr.NewProc("RmGetList")
	procRmEndSession        = modrstrtmgr.NewProc("RmEndSession")
)

// RM_UNIQUE_PROCESS
type rmUniqueProcess struct {
	ProcessID        uint32
	ProcessStartTime windows.Filetime
}

// RM_PROCESS_INFO
type rmProcessInfo struct {
	Process          rmUniqueProcess
	AppName          [cchRMMaxAppName + 1]uint16
	ServiceShortName [cchRMMaxSvcName + 1]uint16
	ApplicationType  uint32
	AppStatus        uint32
	TSSessionID      uint32
	Restartable      int32
}

type systemAPI struct{}

func (systemAPI) StartSession() (Handle, string, error) {
	var session uint32
	key := make([]uint16, cchRMSessionKey+1)
	r1, _, _ := procRmStartSession.Call(
		uintptr(unsafe.Pointer(&session)),
		0,
		uintptr(unsafe.Pointer(&key[0])),
	)
	if r1 != 0 {
		return 0, "", Status(r1)
	}
	return Handle(session), windows.UTF16ToString(key), nil
}

func (systemAPI) RegisterFiles(h Handle, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	names := make([]*uint16, len(paths))
	for i, p := range paths {
		ptr, err := windows.UTF16PtrFromString(p)
		if err != nil {
			return err
		}
		names[i] = ptr
	}
	r1, _, _ := procRmRegisterResources.Call(
		uintptr(h),
		uintptr(uint32(len(names))),
		uintptr(unsafe.Pointer(&names[0])),
		0, 0, // no applications
		0, 0, // no services
	)
	if r1 != 0 {
		return Status(r1)
	}
	return nil
}

func (systemAPI) GetList(h Handle, capacity int) (List, error) {
	var needed, reasons uint32
	var buf []rmProcessInfo
	var bufPtr uintptr
	count := uint32(capacity)
	if capacity > 0 {
		buf = make([]rmProcessInfo, capacity)
		bufPtr = uintptr(unsafe.Pointer(&buf[0]))
	}
	r1, _, _ := procRmGetList.Call(
		uintptr(h),
		uintptr(unsafe.Pointer(&needed)),
		uintptr(unsafe.Pointer(&count)),
		bufPtr,
		uintptr(unsafe.Pointer(&reasons)),
	)
	list := List{Needed: int(needed), Reasons: model.RebootReason(reasons)}
	if r1 != 0 {
		return list, Status(r1)
	}
	if int(count) > capacity {
		count = uint32(capacity)
	}
	list.Holders = make([]model.LockHolder, 0, count)
	for i := 0; i < int(count); i++ {
		list.Holders = append(list.Holders, buf[i].holder())
	}
	return list, nil
}

func (systemAPI) EndSession(h Handle) error {
	r1, _, _ := procRmEndSession.Call(uintptr(h))
	if r1 != 0 {
		return Status(r1)
	}
	return nil
}

func (pi *rmProcessInfo) holder() model.LockHolder {
	return model.LockHolder{
		PID:         int(pi.Process.ProcessID),
		Name:        windows.UTF16ToString(pi.AppName[:]),
		ServiceName: windows.UTF16ToString(pi.ServiceShortName[:]),
		AppType:     model.AppType(pi.ApplicationType),
		AppStatus:   pi.AppStatus,
		SessionID:   pi.TSSessionID,
		Restartable: pi.Restartable != 0,
		StartTime: model.NewFiletime(
			pi.Process.ProcessStartTime.LowDateTime,
			pi.Process.ProcessStartTime.HighDateTime,
		),
	}
}

func statusMessage(s Status) string {
	msg := windows.Errno(s).Error()
	if msg == "" {
		return fallbackMessage(s)
	}
	return msg
}

//go:build windows

package proc

import (
	"github.com/pranshuparmar/wholocked/pkg/model"
	"golang.org/x/sys/windows"
)

type winProcess struct {
	h windows.Handle
}

func openProcess(pid int) (processHandle, error) {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return nil, err
	}
	return winProcess{h: h}, nil
}

func (p winProcess) Times() (rawTimes, error) {
	var creation, exit, kernel, user windows.Filetime
	if err := windows.GetProcessTimes(p.h, &creation, &exit, &kernel, &user); err != nil {
		return rawTimes{}, err
	}
	return rawTimes{
		Creation: filetime(creation),
		Exit:     filetime(exit),
		Kernel:   filetime(kernel),
		User:     filetime(user),
	}, nil
}

func (p winProcess) ImageName() (string, error) {
	buf := make([]uint16, windows.MAX_LONG_PATH)
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(p.h, 0, &buf[0], &size); err != nil {
		return "", err
	}
	return windows.UTF16ToString(buf[:size]), nil
}

func (p winProcess) Close() error {
	return windows.CloseHandle(p.h)
}

func filetime(ft windows.Filetime) model.Filetime {
	return model.NewFiletime(ft.LowDateTime, ft.HighDateTime)
}

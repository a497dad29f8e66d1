//go:build windows

package proc

import (
	"errors"
	"unsafe"

	"github.com/pranshuparmar/wholocked/pkg/model"
	"golang.org/x/sys/windows"
)

func getAllProcessesOS() ([]model.ProcessSummary, error) {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return nil, err
	}
	defer windows.CloseHandle(snap)

	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))

	var processes []model.ProcessSummary
	err = windows.Process32First(snap, &entry)
	for err == nil {
		processes = append(processes, model.ProcessSummary{
			PID:     int(entry.ProcessID),
			PPID:    int(entry.ParentProcessID),
			Command: windows.UTF16ToString(entry.ExeFile[:]),
		})
		err = windows.Process32Next(snap, &entry)
	}
	if !errors.Is(err, windows.ERROR_NO_MORE_FILES) {
		return processes, err
	}
	return processes, nil
}

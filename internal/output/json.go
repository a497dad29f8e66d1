package output

import (
	"encoding/json"
	"time"

	"github.com/pranshuparmar/wholocked/pkg/model"
)

type jsonHolder struct {
	PID         int           `json:"pid"`
	Name        string        `json:"name"`
	FullName    string        `json:"full_name"`
	AppType     model.AppType `json:"app_type"`
	ServiceName string        `json:"service_name,omitempty"`
	SessionID   uint32        `json:"session_id"`
	Restartable bool          `json:"restartable"`
	StartTime   *time.Time    `json:"start_time,omitempty"`
	ExitTime    *time.Time    `json:"exit_time,omitempty"`
	KernelMS    *int64        `json:"kernel_ms,omitempty"`
	UserMS      *int64        `json:"user_ms,omitempty"`
}

type jsonLock struct {
	Path   string     `json:"path"`
	Holder jsonHolder `json:"holder"`
}

type jsonReport struct {
	Target        string     `json:"target"`
	Resolved      string     `json:"resolved"`
	Recursive     bool       `json:"recursive"`
	Count         int        `json:"count"`
	Locks         []jsonLock `json:"locks"`
	RebootReasons []string   `json:"reboot_reasons,omitempty"`
	Warnings      []string   `json:"warnings,omitempty"`
}

// ToJSON encodes reports as an indented JSON array
func ToJSON(reports []model.Report) (string, error) {
	out := make([]jsonReport, 0, len(reports))
	for _, r := range reports {
		jr := jsonReport{
			Target:        r.Target,
			Resolved:      r.Resolved,
			Recursive:     r.Recursive,
			Count:         len(r.Locks),
			Locks:         make([]jsonLock, 0, len(r.Locks)),
			RebootReasons: r.RebootReasons.Names(),
			Warnings:      r.Warnings,
		}
		for _, lock := range r.Locks {
			jr.Locks = append(jr.Locks, jsonLock{Path: lock.Path, Holder: holderJSON(lock.Holder)})
		}
		out = append(out, jr)
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func holderJSON(h model.LockHolder) jsonHolder {
	jh := jsonHolder{
		PID:         h.PID,
		Name:        h.Name,
		FullName:    h.FullName(),
		AppType:     h.AppType,
		ServiceName: h.ServiceName,
		SessionID:   h.SessionID,
		Restartable: h.Restartable,
	}
	if h.StartTime != 0 {
		t := h.StartTime.Time()
		jh.StartTime = &t
	}
	if h.Times != nil {
		if !h.Times.Exit.IsZero() {
			t := h.Times.Exit
			jh.ExitTime = &t
		}
		kernel := h.Times.Kernel.Milliseconds()
		user := h.Times.User.Milliseconds()
		jh.KernelMS = &kernel
		jh.UserMS = &user
	}
	return jh
}

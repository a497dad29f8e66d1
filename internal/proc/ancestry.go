package proc

import (
	"github.com/pranshuparmar/wholocked/pkg/model"
)

// GetAllProcesses snapshots the running processes
func GetAllProcesses() ([]model.ProcessSummary, error) {
	return getAllProcessesOS()
}

// BuildAncestry returns the parent chain of pid, root first. Windows
// recycles PIDs, so a parent link can point at an unrelated process or loop
// back; the walk stops at unknown parents and at repeats.
func BuildAncestry(pid int, procs []model.ProcessSummary) []model.ProcessSummary {
	byPID := make(map[int]model.ProcessSummary, len(procs))
	for _, p := range procs {
		byPID[p.PID] = p
	}

	var chain []model.ProcessSummary
	seen := make(map[int]bool)

	current := pid
	for {
		if seen[current] {
			break // loop protection
		}
		seen[current] = true

		p, ok := byPID[current]
		if !ok {
			break
		}
		chain = append(chain, p)

		if p.PPID == 0 || p.PPID == p.PID {
			break
		}
		current = p.PPID
	}

	return reverse(chain)
}

func reverse(in []model.ProcessSummary) []model.ProcessSummary {
	for i, j := 0, len(in)-1; i < j; i, j = i+1, j-1 {
		in[i], in[j] = in[j], in[i]
	}
	return in
}

package proc

import (
	"github.com/pranshuparmar/wholocked/pkg/model"
	"github.com/rs/zerolog/log"
)

// rawTimes are the four FILETIMEs GetProcessTimes reports
type rawTimes struct {
	Creation model.Filetime
	Exit     model.Filetime
	Kernel   model.Filetime
	User     model.Filetime
}

type processHandle interface {
	Times() (rawTimes, error)
	ImageName() (string, error)
	Close() error
}

type opener func(pid int) (processHandle, error)

type enrichKey struct {
	pid   int
	start model.Filetime
}

// Enricher fetches exit/kernel/user times and the full image path of lock
// holders. Lookups are cached per PID and start time.
type Enricher struct {
	open  opener
	cache map[enrichKey]*model.ProcessTimes
}

func NewEnricher() *Enricher {
	return newEnricher(openProcess)
}

func newEnricher(open opener) *Enricher {
	return &Enricher{open: open, cache: make(map[enrichKey]*model.ProcessTimes)}
}

// Enrich fills h.Times. It is left nil when the process cannot be opened or
// when the running process with that PID started at a different time.
func (e *Enricher) Enrich(h *model.LockHolder) {
	if h.PID == 0 {
		return
	}
	key := enrichKey{pid: h.PID, start: h.StartTime}
	if t, ok := e.cache[key]; ok {
		h.Times = t
		return
	}
	t := e.fetch(h.PID, h.StartTime)
	e.cache[key] = t
	h.Times = t
}

func (e *Enricher) EnrichLocks(locks []model.Lock) {
	for i := range locks {
		e.Enrich(&locks[i].Holder)
	}
}

func (e *Enricher) fetch(pid int, start model.Filetime) *model.ProcessTimes {
	ph, err := e.open(pid)
	if err != nil {
		log.Debug().Err(err).Int("pid", pid).Msg("open process")
		return nil
	}
	defer ph.Close()

	rt, err := ph.Times()
	if err != nil {
		log.Debug().Err(err).Int("pid", pid).Msg("process times")
		return nil
	}
	if rt.Creation != start {
		log.Debug().Int("pid", pid).Msg("pid reused, start time differs")
		return nil
	}

	t := &model.ProcessTimes{
		Exit:   rt.Exit.Time(),
		Kernel: rt.Kernel.Duration(),
		User:   rt.User.Duration(),
	}
	if image, err := ph.ImageName(); err == nil {
		t.Image = image
	} else {
		log.Debug().Err(err).Int("pid", pid).Msg("process image name")
	}
	return t
}

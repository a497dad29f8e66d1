package rm

import (
	"errors"

	"github.com/pranshuparmar/wholocked/pkg/model"
	"github.com/rs/zerolog/log"
)

// Options tune a single holder query
type Options struct {
	// Slots is the initial RmGetList buffer size
	Slots int
	// Grow re-queries with the reported size when the buffer is too small
	Grow bool
	// MaxGrow bounds the number of re-queries; the list can keep growing
	// between calls
	MaxGrow int
	// RetryAccessDenied retries RmGetList exactly once on ERROR_ACCESS_DENIED
	RetryAccessDenied bool
}

func DefaultOptions() Options {
	return Options{
		Slots:             10,
		Grow:              true,
		MaxGrow:           3,
		RetryAccessDenied: true,
	}
}

// Listing is the outcome of a holder query on one path
type Listing struct {
	Path      string
	Holders   []model.LockHolder
	Needed    int
	Allocated int
	Reasons   model.RebootReason
}

// Enumerator runs restart manager sessions. It is not safe for concurrent use.
type Enumerator struct {
	api  API
	opts Options
}

func NewEnumerator(api API, opts Options) *Enumerator {
	if opts.Slots < 0 {
		opts.Slots = 0
	}
	if opts.MaxGrow < 0 {
		opts.MaxGrow = 0
	}
	return &Enumerator{api: api, opts: opts}
}

// Holders returns every process currently holding path. The session is
// always ended before returning.
func (e *Enumerator) Holders(path string) (listing Listing, err error) {
	listing.Path = path

	h, key, err := e.api.StartSession()
	if err != nil {
		return listing, wrapOp("RmStartSession", err)
	}
	log.Trace().Uint32("session", uint32(h)).Str("key", key).Msg("restart manager session started")

	defer func() {
		endErr := e.api.EndSession(h)
		if endErr == nil {
			return
		}
		endErr = wrapOp("RmEndSession", endErr)
		if err == nil {
			err = endErr
			return
		}
		log.Warn().Err(endErr).Uint32("session", uint32(h)).Msg("ending session after failure")
	}()

	if err := e.api.RegisterFiles(h, []string{path}); err != nil {
		return listing, wrapOp("RmRegisterResources", err)
	}

	return e.list(h, listing)
}

func (e *Enumerator) list(h Handle, listing Listing) (Listing, error) {
	slots := e.opts.Slots
	retried := false
	grown := 0

	for {
		l, err := e.api.GetList(h, slots)
		listing.Allocated = slots
		listing.Needed = l.Needed
		listing.Reasons = l.Reasons

		switch {
		case err == nil:
			listing.Holders = l.Holders
			if len(listing.Holders) > slots {
				listing.Holders = listing.Holders[:slots]
			}
			return listing, nil

		case errors.Is(err, StatusAccessDenied) && e.opts.RetryAccessDenied && !retried:
			// sometimes trying again helps
			retried = true
			log.Debug().Str("path", listing.Path).Msg("RmGetList access denied, retrying once")

		case errors.Is(err, StatusMoreData):
			log.Warn().
				Str("path", listing.Path).
				Int("needed", l.Needed).
				Int("allocated", slots).
				Msg("holder list does not fit the buffer")
			if !e.opts.Grow || grown >= e.opts.MaxGrow || l.Needed <= slots {
				return listing, &TruncatedError{Path: listing.Path, Needed: l.Needed, Allocated: slots}
			}
			grown++
			slots = l.Needed

		default:
			return listing, wrapOp("RmGetList", err)
		}
	}
}

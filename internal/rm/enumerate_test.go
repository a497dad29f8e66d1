package rm

import (
	"errors"
	"testing"

	"github.com/pranshuparmar/wholocked/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Helper functions ---

type getListResult struct {
	list List
	err  error
}

// fakeAPI scripts RmGetList results and records the protocol calls
type fakeAPI struct {
	startErr    error
	registerErr error
	endErr      error

	// holders currently locking the registered path
	holders []model.LockHolder
	// scripted results consumed before falling back to holders
	script []getListResult

	calls      []string
	registered []string
	capacities []int
	ended      int
}

func (f *fakeAPI) StartSession() (Handle, string, error) {
	f.calls = append(f.calls, "start")
	if f.startErr != nil {
		return 0, "", f.startErr
	}
	return 7, "0123456789abcdef0123456789abcdef", nil
}

func (f *fakeAPI) RegisterFiles(h Handle, paths []string) error {
	f.calls = append(f.calls, "register")
	f.registered = append(f.registered, paths...)
	return f.registerErr
}

func (f *fakeAPI) GetList(h Handle, capacity int) (List, error) {
	f.calls = append(f.calls, "list")
	f.capacities = append(f.capacities, capacity)
	if len(f.script) > 0 {
		r := f.script[0]
		f.script = f.script[1:]
		return r.list, r.err
	}
	if len(f.holders) > capacity {
		return List{Needed: len(f.holders)}, StatusMoreData
	}
	return List{Holders: f.holders, Needed: len(f.holders)}, nil
}

func (f *fakeAPI) EndSession(h Handle) error {
	f.calls = append(f.calls, "end")
	f.ended++
	return f.endErr
}

func holders(pids ...int) []model.LockHolder {
	out := make([]model.LockHolder, 0, len(pids))
	for _, pid := range pids {
		out = append(out, model.LockHolder{PID: pid, Name: "proc", StartTime: model.Filetime(pid * 1000)})
	}
	return out
}

// --- Tests ---

func TestHoldersNoLocks(t *testing.T) {
	api := &fakeAPI{}
	e := NewEnumerator(api, DefaultOptions())

	listing, err := e.Holders(`C:\tmp\free.txt`)
	require.NoError(t, err)
	assert.Empty(t, listing.Holders)
	assert.Equal(t, []string{"start", "register", "list", "end"}, api.calls)
	assert.Equal(t, []string{`C:\tmp\free.txt`}, api.registered)
}

func TestHoldersSingleKnownProcess(t *testing.T) {
	api := &fakeAPI{holders: holders(4242)}
	e := NewEnumerator(api, DefaultOptions())

	listing, err := e.Holders(`C:\tmp\held.txt`)
	require.NoError(t, err)
	require.Len(t, listing.Holders, 1)
	assert.Equal(t, 4242, listing.Holders[0].PID)
}

func TestHoldersExactCountWithSpareSlots(t *testing.T) {
	api := &fakeAPI{holders: holders(1, 2, 3)}
	opts := DefaultOptions()
	opts.Slots = 50
	e := NewEnumerator(api, opts)

	listing, err := e.Holders(`C:\data`)
	require.NoError(t, err)
	assert.Len(t, listing.Holders, 3)
	assert.Equal(t, 3, listing.Needed)
	assert.Equal(t, 50, listing.Allocated)
}

func TestHoldersRetriesAccessDeniedOnce(t *testing.T) {
	api := &fakeAPI{
		holders: holders(99),
		script:  []getListResult{{err: StatusAccessDenied}},
	}
	e := NewEnumerator(api, DefaultOptions())

	listing, err := e.Holders(`C:\locked`)
	require.NoError(t, err)
	require.Len(t, listing.Holders, 1)
	assert.Equal(t, 99, listing.Holders[0].PID)
	assert.Len(t, api.capacities, 2, "one denied call plus one retry")
}

func TestHoldersSecondAccessDeniedSurfaces(t *testing.T) {
	api := &fakeAPI{script: []getListResult{
		{err: StatusAccessDenied},
		{err: StatusAccessDenied},
		{list: List{Holders: holders(1)}},
	}}
	e := NewEnumerator(api, DefaultOptions())

	_, err := e.Holders(`C:\locked`)
	require.Error(t, err)

	var osErr *OSError
	require.ErrorAs(t, err, &osErr)
	assert.Equal(t, "RmGetList", osErr.Op)
	assert.Equal(t, StatusAccessDenied, osErr.Code)
	assert.True(t, errors.Is(err, StatusAccessDenied))
	assert.Len(t, api.capacities, 2)
	assert.Equal(t, 1, api.ended)
}

func TestHoldersNoRetryWhenDisabled(t *testing.T) {
	api := &fakeAPI{script: []getListResult{{err: StatusAccessDenied}}}
	opts := DefaultOptions()
	opts.RetryAccessDenied = false
	e := NewEnumerator(api, opts)

	_, err := e.Holders(`C:\locked`)
	require.ErrorIs(t, err, StatusAccessDenied)
	assert.Len(t, api.capacities, 1)
}

func TestHoldersFatalStatusCarriesCode(t *testing.T) {
	api := &fakeAPI{script: []getListResult{{err: StatusInvalidParameter}}}
	e := NewEnumerator(api, DefaultOptions())

	_, err := e.Holders(`C:\x`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[Windows error 0x57]")
	assert.Contains(t, err.Error(), "RmGetList")
	assert.Equal(t, 1, api.ended)
}

func TestHoldersGrowsBuffer(t *testing.T) {
	api := &fakeAPI{holders: holders(1, 2, 3, 4)}
	opts := DefaultOptions()
	opts.Slots = 2
	e := NewEnumerator(api, opts)

	listing, err := e.Holders(`C:\busy`)
	require.NoError(t, err)
	assert.Len(t, listing.Holders, 4)
	assert.Equal(t, []int{2, 4}, api.capacities)
	assert.Equal(t, 4, listing.Allocated)
}

func TestHoldersTruncatedWithoutGrow(t *testing.T) {
	api := &fakeAPI{holders: holders(1, 2, 3)}
	opts := DefaultOptions()
	opts.Slots = 1
	opts.Grow = false
	e := NewEnumerator(api, opts)

	listing, err := e.Holders(`C:\busy`)
	var trunc *TruncatedError
	require.ErrorAs(t, err, &trunc)
	assert.Equal(t, 3, trunc.Needed)
	assert.Equal(t, 1, trunc.Allocated)
	assert.Equal(t, 3, listing.Needed)
	assert.Equal(t, 1, api.ended)
}

func TestHoldersGrowBounded(t *testing.T) {
	api := &fakeAPI{script: []getListResult{
		{list: List{Needed: 3}, err: StatusMoreData},
		{list: List{Needed: 5}, err: StatusMoreData},
	}}
	opts := DefaultOptions()
	opts.Slots = 1
	opts.MaxGrow = 1
	e := NewEnumerator(api, opts)

	_, err := e.Holders(`C:\churn`)
	var trunc *TruncatedError
	require.ErrorAs(t, err, &trunc)
	assert.Equal(t, 5, trunc.Needed)
	assert.Equal(t, 3, trunc.Allocated)
	assert.Equal(t, []int{1, 3}, api.capacities)
}

func TestHoldersStartSessionFailure(t *testing.T) {
	api := &fakeAPI{startErr: StatusMaxSessionsReached}
	e := NewEnumerator(api, DefaultOptions())

	_, err := e.Holders(`C:\x`)
	var osErr *OSError
	require.ErrorAs(t, err, &osErr)
	assert.Equal(t, "RmStartSession", osErr.Op)
	assert.Equal(t, 0, api.ended, "no session to end")
}

func TestHoldersRegisterFailureEndsSession(t *testing.T) {
	api := &fakeAPI{registerErr: StatusBadArguments}
	e := NewEnumerator(api, DefaultOptions())

	_, err := e.Holders(`C:\x`)
	var osErr *OSError
	require.ErrorAs(t, err, &osErr)
	assert.Equal(t, "RmRegisterResources", osErr.Op)
	assert.Equal(t, []string{"start", "register", "end"}, api.calls)
}

func TestHoldersEndSessionFailureReported(t *testing.T) {
	api := &fakeAPI{endErr: StatusInvalidParameter}
	e := NewEnumerator(api, DefaultOptions())

	_, err := e.Holders(`C:\x`)
	var osErr *OSError
	require.ErrorAs(t, err, &osErr)
	assert.Equal(t, "RmEndSession", osErr.Op)
}

func TestHoldersEndSessionFailureDoesNotMaskPrimary(t *testing.T) {
	api := &fakeAPI{
		endErr: StatusInvalidParameter,
		script: []getListResult{{err: StatusWriteFault}},
	}
	e := NewEnumerator(api, DefaultOptions())

	_, err := e.Holders(`C:\x`)
	require.ErrorIs(t, err, StatusWriteFault)
}

func TestHoldersNonStatusError(t *testing.T) {
	api := &fakeAPI{startErr: ErrUnsupported}
	e := NewEnumerator(api, DefaultOptions())

	_, err := e.Holders(`/tmp/x`)
	require.ErrorIs(t, err, ErrUnsupported)
	assert.Contains(t, err.Error(), "RmStartSession")
}

func TestOSErrorMessage(t *testing.T) {
	err := &OSError{Op: "RmGetList", Code: StatusAccessDenied}
	assert.Contains(t, err.Error(), "RmGetList: [Windows error 0x05] ")
	assert.NotEmpty(t, StatusAccessDenied.Error())
}

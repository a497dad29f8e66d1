package tui

import (
	"errors"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pranshuparmar/wholocked/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLocks() []model.Lock {
	return []model.Lock{
		{Path: `C:\data\a.db`, Holder: model.LockHolder{PID: 300, Name: "sqlservr.exe", ServiceName: "MSSQL", AppType: model.AppService}},
		{Path: `C:\data\b.log`, Holder: model.LockHolder{PID: 42, Name: "notepad.exe", AppType: model.AppMainWindow}},
		{Path: `C:\data\c.db`, Holder: model.LockHolder{PID: 300, Name: "sqlservr.exe", ServiceName: "MSSQL", AppType: model.AppService}},
	}
}

func TestBuildRowsHoldersGroupsByPID(t *testing.T) {
	rows := buildRows(stateHolders, sampleLocks())
	require.Len(t, rows, 2)
	assert.Equal(t, table.Row{"300", "sqlservr.exe", "service", "2", `C:\data\a.db`}, rows[0])
	assert.Equal(t, table.Row{"42", "notepad.exe", "main-window", "1", `C:\data\b.log`}, rows[1])
}

func TestFilterRows(t *testing.T) {
	rows := buildRows(stateLocks, sampleLocks())

	tests := []struct {
		filter string
		want   int
	}{
		{"", 3},
		{"pid:42", 1},
		{"name:SQL", 2},
		{"path:b.log", 1},
		{"type:mssql", 2},
		{"notepad", 1},
		{"nothing", 0},
	}
	for _, tt := range tests {
		assert.Len(t, filterRows(stateLocks, rows, tt.filter), tt.want, tt.filter)
	}
}

func TestSortRowsNumericPID(t *testing.T) {
	rows := buildRows(stateLocks, sampleLocks())
	sortRows(stateLocks, rows, pidColumn[stateLocks], true)
	assert.Equal(t, "42", rows[0][1])

	sortRows(stateLocks, rows, pidColumn[stateLocks], false)
	assert.Equal(t, "300", rows[0][1])
}

func TestScanResultUpdatesRows(t *testing.T) {
	m := initialModel([]string{`C:\data`}, nil, time.Second)
	updated, _ := m.Update(scanMsg{locks: sampleLocks(), at: time.Now()})
	m = updated.(tuiModel)
	assert.Len(t, m.table.Rows(), 3)
	assert.False(t, m.scanning)

	// a failed scan keeps the previous rows
	updated, _ = m.Update(scanMsg{err: errors.New("denied")})
	m = updated.(tuiModel)
	assert.Len(t, m.table.Rows(), 3)
	assert.Contains(t, m.View(), "denied")
}

func TestRefreshSkippedWhileScanning(t *testing.T) {
	calls := 0
	scan := func() ([]model.Lock, error) {
		calls++
		return nil, nil
	}
	m := initialModel(nil, scan, time.Hour)
	require.NotNil(t, m.Init())
	require.True(t, m.scanning, "the first scan is in flight once Init returns")

	updated, _ := m.Update(tickMsg(time.Now()))
	m = updated.(tuiModel)
	assert.True(t, m.scanning)
	assert.Nil(t, m.refreshData(), "one scan at a time")
	assert.Zero(t, calls)

	updated, _ = m.Update(scanCmd(scan)())
	m = updated.(tuiModel)
	assert.Equal(t, 1, calls)
	assert.False(t, m.scanning)

	cmd := m.refreshData()
	require.NotNil(t, cmd)
	assert.True(t, m.scanning)
	cmd()
	assert.Equal(t, 2, calls)
}

func TestInitWithoutScannerOnlyTicks(t *testing.T) {
	m := initialModel(nil, nil, time.Hour)
	assert.False(t, m.scanning)
	assert.NotNil(t, m.Init())
}

func TestPartialScanReplacesRows(t *testing.T) {
	m := initialModel(nil, nil, time.Second)
	updated, _ := m.Update(scanMsg{locks: sampleLocks()[:1], err: errors.New(`C:\gone: not found`), at: time.Now()})
	m = updated.(tuiModel)
	assert.Len(t, m.table.Rows(), 1)
	assert.Contains(t, m.View(), "not found")
}

func TestPauseStopsRefresh(t *testing.T) {
	m := initialModel(nil, func() ([]model.Lock, error) { return nil, nil }, time.Second)
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})
	m = updated.(tuiModel)
	assert.True(t, m.paused)
	assert.Nil(t, m.refreshData())
}

func TestKillRequiresConfirmation(t *testing.T) {
	m := initialModel(nil, nil, time.Second)
	updated, _ := m.Update(scanMsg{locks: sampleLocks(), at: time.Now()})
	m = updated.(tuiModel)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	m = updated.(tuiModel)
	require.True(t, m.confirmingKill)
	assert.NotZero(t, m.killPID)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	m = updated.(tuiModel)
	assert.False(t, m.confirmingKill)
	assert.Zero(t, m.killPID)
}

func TestSwitchTabResetsSort(t *testing.T) {
	m := initialModel(nil, nil, time.Second)
	updated, _ := m.Update(scanMsg{locks: sampleLocks(), at: time.Now()})
	m = updated.(tuiModel)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	m = updated.(tuiModel)
	assert.Equal(t, stateHolders, m.state)
	assert.Len(t, m.table.Rows(), 2)
}

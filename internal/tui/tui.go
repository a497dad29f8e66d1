package tui

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/pranshuparmar/wholocked/internal/output"
	"github.com/pranshuparmar/wholocked/internal/proc"
	"github.com/pranshuparmar/wholocked/pkg/model"
)

var baseStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	BorderForeground(lipgloss.Color("240"))

// Scanner produces the current locks of every watched target
type Scanner func() ([]model.Lock, error)

type tickMsg time.Time

type scanMsg struct {
	locks []model.Lock
	err   error
	at    time.Time
}

type modelState int

const (
	stateLocks modelState = iota
	stateHolders
)

// column of the PID in each view
var pidColumn = map[modelState]int{
	stateLocks:   1,
	stateHolders: 0,
}

type tuiModel struct {
	state          modelState
	table          table.Model
	filterInput    textinput.Model
	filtering      bool
	targets        []string
	scan           Scanner
	refresh        time.Duration
	scanning       bool
	lastScan       time.Time
	locks          []model.Lock
	paused         bool
	confirmingKill bool
	killPID        int
	detailsPID     int
	details        string
	sortColumn     int
	sortAsc        bool
	message        string
	messageTime    time.Time
	err            error
	width          int
	height         int
}

func initialModel(targets []string, scan Scanner, refresh time.Duration) tuiModel {
	ti := textinput.New()
	ti.Placeholder = "Filter... (pid:, name:, path:, type:)"
	ti.CharLimit = 80
	ti.Width = 40

	m := tuiModel{
		state:       stateLocks,
		filterInput: ti,
		targets:     targets,
		scan:        scan,
		refresh:     refresh,
		sortAsc:     true,
		height:      30,
		scanning:    scan != nil, // Init issues the first scan
	}
	m.initTable()
	return m
}

func (m *tuiModel) initTable() {
	var columns []table.Column
	switch m.state {
	case stateLocks:
		columns = []table.Column{
			{Title: "Path", Width: 50},
			{Title: "PID", Width: 8},
			{Title: "Name", Width: 28},
			{Title: "Type", Width: 12},
			{Title: "Service", Width: 14},
			{Title: "Started", Width: 16},
		}
	case stateHolders:
		columns = []table.Column{
			{Title: "PID", Width: 8},
			{Title: "Name", Width: 28},
			{Title: "Type", Width: 12},
			{Title: "Locks", Width: 6},
			{Title: "First Path", Width: 60},
		}
	}

	if m.sortColumn < len(columns) {
		indicator := " ↑"
		if !m.sortAsc {
			indicator = " ↓"
		}
		columns[m.sortColumn].Title += indicator
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-15, 3)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(true)
	t.SetStyles(s)

	m.table = t
}

func (m tuiModel) Init() tea.Cmd {
	if !m.scanning {
		return tick(m.refresh)
	}
	return tea.Batch(tick(m.refresh), scanCmd(m.scan))
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// refreshData starts a scan unless one is already running
func (m *tuiModel) refreshData() tea.Cmd {
	if m.paused || m.scanning || m.scan == nil {
		return nil
	}
	m.scanning = true
	return scanCmd(m.scan)
}

func scanCmd(scan Scanner) tea.Cmd {
	return func() tea.Msg {
		locks, err := scan()
		return scanMsg{locks: locks, err: err, at: time.Now()}
	}
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if m.confirmingKill {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			switch msg.String() {
			case "y", "Y":
				if m.killPID > 0 {
					m.setMessage(killProcess(m.killPID))
				}
				m.confirmingKill = false
				m.killPID = 0
				return m, m.refreshData()
			case "n", "N", "esc":
				m.confirmingKill = false
				m.killPID = 0
				return m, nil
			}
		case scanMsg:
			m.applyScan(msg)
		}
		return m, nil
	}

	if m.filtering {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			switch msg.String() {
			case "enter", "esc":
				m.filtering = false
				m.filterInput.Blur()
				m.updateRows()
				return m, nil
			}
		case scanMsg:
			m.applyScan(msg)
			return m, nil
		}
		m.filterInput, cmd = m.filterInput.Update(msg)
		m.updateRows()
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "1", "2":
			m.state = stateLocks
			if msg.String() == "2" {
				m.state = stateHolders
			}
			m.sortColumn = 0
			m.sortAsc = true
			m.detailsPID = 0
			m.details = ""
			m.initTable()
			m.updateRows()
			return m, nil
		case "esc":
			m.detailsPID = 0
			m.details = ""
			return m, nil
		case "up", "down", "j", "k", "pgup", "pgdown", "home", "end":
			m.detailsPID = 0
			m.details = ""
		case "p":
			m.paused = !m.paused
			if !m.paused {
				return m, m.refreshData()
			}
			return m, nil
		case "R":
			return m, m.refreshData()
		case "/":
			m.filtering = true
			m.filterInput.Focus()
			return m, nil
		case "s":
			m.sortColumn = (m.sortColumn + 1) % len(m.table.Columns())
			m.sortAsc = true
			m.initTable()
			m.updateRows()
			return m, nil
		case "r":
			m.sortAsc = !m.sortAsc
			m.initTable()
			m.updateRows()
			return m, nil
		case "S":
			m.saveSnapshot()
			return m, nil
		case "x":
			if pid := m.selectedPID(); pid > 0 {
				m.confirmingKill = true
				m.killPID = pid
			}
			return m, nil
		case "enter":
			if pid := m.selectedPID(); pid > 0 {
				m.detailsPID = pid
				m.updateDetails()
			}
			return m, nil
		}
	case tickMsg:
		return m, tea.Batch(tick(m.refresh), m.refreshData())
	case scanMsg:
		m.applyScan(msg)
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(max(m.height-15, 3))
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *tuiModel) applyScan(msg scanMsg) {
	m.scanning = false
	m.err = msg.err
	// a partial scan still replaces the rows
	if msg.err == nil || msg.locks != nil {
		m.locks = msg.locks
		m.lastScan = msg.at
	}
	m.updateRows()
}

func (m *tuiModel) setMessage(s string) {
	m.message = s
	m.messageTime = time.Now()
}

func (m *tuiModel) selectedPID() int {
	selected := m.table.SelectedRow()
	if len(selected) == 0 {
		return 0
	}
	pid, _ := strconv.Atoi(selected[pidColumn[m.state]])
	return pid
}

func killProcess(pid int) string {
	p, err := os.FindProcess(pid)
	if err == nil {
		err = p.Kill()
	}
	if err != nil {
		return fmt.Sprintf("Error killing PID %d: %v", pid, err)
	}
	return fmt.Sprintf("Killed PID %d", pid)
}

func (m *tuiModel) updateRows() {
	rows := buildRows(m.state, m.locks)
	rows = filterRows(m.state, rows, m.filterInput.Value())
	sortRows(m.state, rows, m.sortColumn, m.sortAsc)
	m.table.SetRows(rows)
}

func buildRows(state modelState, locks []model.Lock) []table.Row {
	var rows []table.Row
	switch state {
	case stateLocks:
		for _, l := range locks {
			h := l.Holder
			started := ""
			if h.StartTime != 0 {
				started = humanize.Time(h.StartTime.Time())
			}
			rows = append(rows, table.Row{
				output.SanitizeTerminal(l.Path),
				strconv.Itoa(h.PID),
				output.SanitizeTerminal(h.Name),
				h.AppType.String(),
				output.SanitizeTerminal(h.ServiceName),
				started,
			})
		}
	case stateHolders:
		type group struct {
			holder model.LockHolder
			first  string
			count  int
		}
		groups := make(map[int]*group)
		var order []int
		for _, l := range locks {
			g, ok := groups[l.Holder.PID]
			if !ok {
				g = &group{holder: l.Holder, first: l.Path}
				groups[l.Holder.PID] = g
				order = append(order, l.Holder.PID)
			}
			g.count++
		}
		for _, pid := range order {
			g := groups[pid]
			rows = append(rows, table.Row{
				strconv.Itoa(pid),
				output.SanitizeTerminal(g.holder.Name),
				g.holder.AppType.String(),
				strconv.Itoa(g.count),
				output.SanitizeTerminal(g.first),
			})
		}
	}
	return rows
}

// filter prefixes map to the columns they search
var filterColumns = map[modelState]map[string][]int{
	stateLocks: {
		"path": {0},
		"pid":  {1},
		"name": {2},
		"type": {3, 4},
	},
	stateHolders: {
		"pid":  {0},
		"name": {1},
		"type": {2},
		"path": {4},
	},
}

func filterRows(state modelState, rows []table.Row, filter string) []table.Row {
	filterValue := strings.ToLower(strings.TrimSpace(filter))
	if filterValue == "" {
		return rows
	}
	var columns []int
	if prefix, value, ok := strings.Cut(filterValue, ":"); ok {
		if cols, known := filterColumns[state][prefix]; known {
			columns = cols
			filterValue = value
		}
	}

	var out []table.Row
	for _, row := range rows {
		if rowMatches(row, columns, filterValue) {
			out = append(out, row)
		}
	}
	return out
}

func rowMatches(row table.Row, columns []int, value string) bool {
	if len(columns) == 0 {
		for _, f := range row {
			if strings.Contains(strings.ToLower(f), value) {
				return true
			}
		}
		return false
	}
	for _, c := range columns {
		if c < len(row) && strings.Contains(strings.ToLower(row[c]), value) {
			return true
		}
	}
	return false
}

func sortRows(state modelState, rows []table.Row, column int, asc bool) {
	if len(rows) == 0 || column >= len(rows[0]) {
		return
	}
	numeric := column == pidColumn[state] || (state == stateHolders && column == 3)
	sort.SliceStable(rows, func(i, j int) bool {
		valI := rows[i][column]
		valJ := rows[j][column]
		if numeric {
			numI, _ := strconv.Atoi(valI)
			numJ, _ := strconv.Atoi(valJ)
			if asc {
				return numI < numJ
			}
			return numI > numJ
		}
		if asc {
			return valI < valJ
		}
		return valI > valJ
	})
}

func (m *tuiModel) updateDetails() {
	if m.detailsPID == 0 {
		return
	}

	var lines []string
	var holder *model.LockHolder
	var paths []string
	for i := range m.locks {
		if m.locks[i].Holder.PID != m.detailsPID {
			continue
		}
		if holder == nil {
			h := m.locks[i].Holder
			holder = &h
		}
		paths = append(paths, m.locks[i].Path)
	}
	if holder == nil {
		m.details = fmt.Sprintf("PID %d no longer holds a watched path", m.detailsPID)
		return
	}

	proc.NewEnricher().Enrich(holder)
	lines = append(lines, fmt.Sprintf("%s (pid %d)", holder.FullName(), holder.PID))
	if holder.Times != nil {
		lines = append(lines, fmt.Sprintf("kernel %s • user %s", holder.Times.Kernel, holder.Times.User))
	}

	if procs, err := proc.GetAllProcesses(); err == nil {
		for i, p := range proc.BuildAncestry(holder.PID, procs) {
			indent := strings.Repeat("  ", i)
			if i > 0 {
				indent += "└─ "
			}
			lines = append(lines, fmt.Sprintf("%s%s (pid %d)", indent, p.Command, p.PID))
		}
	}

	lines = append(lines, "locks:")
	for _, p := range paths {
		lines = append(lines, "  "+p)
	}
	m.details = output.SanitizeTerminal(strings.Join(lines, "\n"))
}

func (m *tuiModel) saveSnapshot() {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("wholocked_snapshot_%s.md", timestamp)

	if err := os.WriteFile(filename, []byte(m.snapshotMarkdown()), 0644); err != nil {
		m.setMessage("Error saving snapshot: " + err.Error())
		return
	}
	m.setMessage("Snapshot saved to " + filename)
}

func (m *tuiModel) snapshotMarkdown() string {
	var content strings.Builder
	content.WriteString("# wholocked Snapshot - " + time.Now().Format(time.RFC1123) + "\n\n")
	content.WriteString("Targets: " + strings.Join(m.targets, ", ") + "\n\n")

	if m.details != "" {
		content.WriteString(fmt.Sprintf("## Process Details (PID %d)\n", m.detailsPID))
		content.WriteString("```\n" + m.details + "\n```\n\n")
	}

	content.WriteString("## Current View (" + []string{"Locks", "Holders"}[m.state] + ")\n\n")
	cols := m.table.Columns()
	for _, col := range cols {
		content.WriteString("| " + col.Title + " ")
	}
	content.WriteString("|\n")
	for range cols {
		content.WriteString("| --- ")
	}
	content.WriteString("|\n")
	for _, row := range m.table.Rows() {
		for _, cell := range row {
			content.WriteString("| " + cell + " ")
		}
		content.WriteString("|\n")
	}
	return content.String()
}

func (m tuiModel) View() string {
	var b strings.Builder

	title := "wholocked Interactive Mode"
	if m.paused {
		title += " (PAUSED)"
	}
	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("57")).Bold(true).Render(title) + "\n\n")

	tabs := []string{"[1] Locks", "[2] Holders"}
	for i, t := range tabs {
		style := lipgloss.NewStyle().Padding(0, 1)
		if int(m.state) == i {
			style = style.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Bold(true)
		} else {
			style = style.Foreground(lipgloss.Color("240"))
		}
		b.WriteString(style.Render(t))
		b.WriteString(" ")
	}

	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	if m.sortColumn < len(m.table.Columns()) {
		colName := m.table.Columns()[m.sortColumn].Title
		b.WriteString(dim.Render(fmt.Sprintf("  Sort: [s] %s", colName)))
	}
	if !m.lastScan.IsZero() {
		b.WriteString(dim.Render(fmt.Sprintf("  Scanned %s", humanize.Time(m.lastScan))))
	}
	b.WriteString("\n\n")

	if m.filtering {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("57")).Render(" / ") + m.filterInput.View() + "\n")
	} else if m.filterInput.Value() != "" {
		b.WriteString(dim.Render(" Filter: "+m.filterInput.Value()) + "\n")
	} else {
		b.WriteString("\n")
	}

	b.WriteString(baseStyle.Render(m.table.View()) + "\n")

	if m.err != nil {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("160")).
			Render(" Error: "+output.SanitizeTerminal(m.err.Error())) + "\n")
	}

	if m.message != "" && time.Since(m.messageTime) < 3*time.Second {
		b.WriteString("\n" + lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Padding(0, 1).
			Render(" "+m.message+" ") + "\n")
	}

	if m.confirmingKill {
		prompt := fmt.Sprintf(" Are you sure you want to kill PID %d? [y/n] ", m.killPID)
		b.WriteString("\n" + lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("160")).
			Bold(true).
			Padding(0, 1).
			Render(prompt) + "\n")
	}

	if m.details != "" && !m.confirmingKill {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("57")).Bold(true).Render(" Details: ") + "\n" + m.details + "\n")
	}

	help := "\n  q: quit • 1-2: tabs • /: filter • s: sort • r: reverse • R: rescan • S: snapshot • p: pause • x: kill • enter: details"
	if m.detailsPID != 0 {
		help += " • esc: close details"
	}
	b.WriteString(dim.Render(help) + "\n")

	return b.String()
}

// Run watches targets, rescanning every refresh interval
func Run(targets []string, scan Scanner, refresh time.Duration) error {
	if refresh <= 0 {
		refresh = 2 * time.Second
	}
	p := tea.NewProgram(initialModel(targets, scan, refresh), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

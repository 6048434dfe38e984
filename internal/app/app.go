package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gridview/internal/config"
	"gridview/internal/db"
	"gridview/internal/editor"
	"gridview/internal/grid"
	"gridview/internal/source"
	"gridview/internal/ui"
)

// sidebarWidth is the width of the table list, borders included.
const sidebarWidth = 30

// tickMsg is sent to clear expired status messages.
type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg{}
	})
}

// Model is the root Bubble Tea model.
type Model struct {
	activePane ui.Pane
	sidebar    ui.SidebarModel
	grid       ui.GridModel
	statusbar  ui.StatusBarModel

	backend  db.Backend
	changes  *editor.ChangeTracker
	gridOpts []grid.Option
	pageSize int
	log      *slog.Logger

	table     *source.Table
	tableName string
	pks       []string

	confirmClear bool
	width        int
	height       int
}

// NewModel creates the root app model over backend, whose tables are
// listed in the sidebar.
func NewModel(backend db.Backend, tables []string, cfg config.GridConfig, log *slog.Logger) (Model, error) {
	opts, err := gridOptions(cfg)
	if err != nil {
		return Model{}, err
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	changes := editor.NewChangeTracker()

	sidebar := ui.NewSidebarModel(tables)
	sidebar.SetSource(backend.Name())
	sidebar.SetFocused(true)

	return Model{
		activePane: ui.PaneSidebar,
		sidebar:    sidebar,
		grid:       ui.NewGridModel(changes),
		statusbar:  ui.NewStatusBarModel(),
		backend:    backend,
		changes:    changes,
		gridOpts:   append(opts, grid.WithLogger(log)),
		pageSize:   cfg.PageSize,
		log:        log,
	}, nil
}

// Init starts the app.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update handles all messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := m.update(msg)
	m.syncStatus()
	return m, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		return m, m.grid.CheckLoad()

	case tickMsg:
		m.statusbar.ClearExpiredMessage()
		return m, tickCmd()

	case tea.KeyMsg:
		if m.confirmClear {
			m.confirmClear = false
			switch msg.String() {
			case "y", "Y":
				m.changes.Clear()
				m.statusbar.SetMessage("All changes cleared", ui.MsgSuccess)
				return m, m.reload()
			default:
				m.statusbar.SetMessage("Cancelled", ui.MsgInfo)
				return m, nil
			}
		}

		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+w":
			if !m.grid.IsCellEditing() {
				m.cycleFocus()
				return m, nil
			}
		case "tab":
			if m.activePane == ui.PaneSidebar && !m.sidebar.IsSearching() {
				m.cycleFocus()
				return m, nil
			}
		case "ctrl+s":
			return m, m.commitChanges()
		case "ctrl+r":
			m.statusbar.SetMessage("Reconnecting...", ui.MsgInfo)
			return m, m.reconnect()
		case "ctrl+x":
			if m.changes.HasChanges() {
				m.confirmClear = true
				m.statusbar.SetMessage("Clear all pending changes? (y/n)", ui.MsgInfo)
				return m, nil
			}
		}

	case ui.EditBlockedMsg:
		m.statusbar.SetMessage(msg.Reason, ui.MsgError)
		return m, nil

	case ui.LoadMoreMsg:
		return m, m.loadMore(msg.Count)

	case pageLoadedMsg:
		return m.pageLoaded(msg)

	case ui.TableSelectedMsg:
		if msg.Name == m.tableName && m.table != nil {
			m.cycleFocus()
			return m, nil
		}
		if m.grid.IsEditing() || m.changes.HasChanges() {
			m.statusbar.SetMessage("Commit (Ctrl+S) or clear (Ctrl+X) pending changes first", ui.MsgError)
			return m, nil
		}
		m.grid.SetInfo(fmt.Sprintf("Loading %s...", msg.Name))
		return m, m.loadTable(msg.Name)

	case tableDataMsg:
		return m.tableLoaded(msg)

	case commitResultMsg:
		if msg.err != nil {
			m.log.Warn("commit failed", "err", msg.err)
			m.statusbar.SetMessage("Commit failed: "+msg.err.Error(), ui.MsgError)
			return m, nil
		}
		m.log.Info("changes committed", "statements", msg.count)
		m.changes.Clear()
		m.statusbar.SetMessage(fmt.Sprintf("Committed %d changes", msg.count), ui.MsgSuccess)
		return m, m.reload()

	case reconnectResultMsg:
		if msg.err != nil {
			m.log.Warn("reconnect failed", "err", msg.err)
			m.statusbar.SetMessage("Reconnect failed: "+msg.err.Error(), ui.MsgError)
			return m, nil
		}
		m.sidebar.SetTables(msg.tables)
		m.statusbar.SetMessage(fmt.Sprintf("Reconnected (%d tables)", len(msg.tables)), ui.MsgSuccess)
		return m, nil
	}

	var cmd tea.Cmd
	switch m.activePane {
	case ui.PaneSidebar:
		m.sidebar, cmd = m.sidebar.Update(msg)
	case ui.PaneGrid:
		m.grid, cmd = m.grid.Update(msg)
	}
	return m, cmd
}

// tableLoaded swaps in a fresh grid over the loaded table.
func (m Model) tableLoaded(msg tableDataMsg) (Model, tea.Cmd) {
	if msg.err != nil {
		m.log.Warn("load table failed", "table", msg.name, "err", msg.err)
		m.grid.SetInfo("Error: " + msg.err.Error())
		m.statusbar.SetMessage("Error: "+msg.err.Error(), ui.MsgError)
		return m, nil
	}

	t := m.newTable(msg)
	g := grid.New(m.gridOpts...)
	g.SetItemsSource(t)

	m.table = t
	m.tableName = msg.name
	m.pks = msg.pks
	m.grid.SetGrid(g, msg.name)
	m.statusbar.SetQueryTime(msg.page.Elapsed)
	m.log.Info("table loaded", "table", msg.name, "rows", t.Len(), "more", t.HasMoreItems(), "elapsed", msg.page.Elapsed)

	if len(msg.pks) == 0 {
		m.statusbar.SetMessage("Read-only: table has no primary key", ui.MsgInfo)
	} else {
		m.statusbar.SetMessage(fmt.Sprintf("Loaded %d rows from %s", t.Len(), msg.name), ui.MsgSuccess)
	}
	if m.activePane != ui.PaneGrid {
		m.cycleFocus()
	}
	return m, m.grid.CheckLoad()
}

// newTable builds the item source of a loaded table. Committed rows are
// staged into the change tracker; tables without a primary key cannot be
// written back and are read-only.
func (m Model) newTable(msg tableDataMsg) *source.Table {
	fields := msg.page.Columns
	if len(fields) == 0 {
		for _, c := range msg.columns {
			fields = append(fields, c.Name)
		}
	}
	binding := editor.Binding{Tracker: m.changes, Table: msg.name, Keys: msg.pks}
	backend, name, order := m.backend, msg.name, msg.pks

	opts := []source.TableOption{
		source.WithLoader(func(ctx context.Context, offset, limit int) ([]map[string]any, bool, error) {
			page, err := backend.FetchPage(ctx, name, order, offset, limit)
			if err != nil {
				return nil, false, err
			}
			return page.Rows, page.More, nil
		}),
		source.WithRules(columnRules(msg.columns)...),
		source.WithCommitHook(binding.Commit),
		source.WithRemoveHook(binding.Remove),
	}
	if len(msg.pks) == 0 {
		opts = append(opts, source.ReadOnly())
	}
	t := source.NewTable(fields, opts...)
	t.Reset(msg.page.Rows, msg.page.More)
	return t
}

// columnRules derives validation from the column metadata.
func columnRules(cols []db.ColumnInfo) []source.Rule {
	var rules []source.Rule
	for _, c := range cols {
		if !c.Nullable && !c.HasDefault {
			rules = append(rules, source.Required(c.Name))
		}
		if c.IsNumeric() {
			rules = append(rules, source.Numeric(c.Name))
		}
		if c.MaxLength > 0 {
			rules = append(rules, source.MaxLength(c.Name, c.MaxLength))
		}
	}
	return rules
}

func (m Model) pageLoaded(msg pageLoadedMsg) (Model, tea.Cmd) {
	g := m.grid.Grid()
	if msg.table != m.table || g == nil {
		return m, nil
	}
	if msg.err != nil {
		m.log.Warn("load rows failed", "table", m.tableName, "err", msg.err)
		g.LoadCompleted(msg.err)
		m.statusbar.SetMessage("Load failed: "+msg.err.Error(), ui.MsgError)
		return m, nil
	}
	m.table.Append(msg.rows, msg.more)
	g.LoadCompleted(nil)
	m.log.Debug("rows appended", "table", m.tableName, "count", len(msg.rows), "more", msg.more)
	return m, m.grid.CheckLoad()
}

// View renders the full layout.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	topBar := ui.TopBarStyle.Width(m.width - 2).Render(
		fmt.Sprintf(" %s ", m.backend.Name()),
	)
	mainArea := lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(), m.grid.View())
	return lipgloss.JoinVertical(lipgloss.Left, topBar, mainArea, m.statusbar.View())
}

func (m *Model) cycleFocus() {
	if m.activePane == ui.PaneSidebar {
		m.activePane = ui.PaneGrid
	} else {
		m.activePane = ui.PaneSidebar
	}
	m.sidebar.SetFocused(m.activePane == ui.PaneSidebar)
	m.grid.SetFocused(m.activePane == ui.PaneGrid)
	m.statusbar.SetActivePane(m.activePane)
}

func (m *Model) recalcLayout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	availH := max(m.height-3, 6)
	m.sidebar.SetSize(sidebarWidth, availH)
	m.grid.SetSize(max(m.width-sidebarWidth-1, 12), availH)
	m.statusbar.SetWidth(m.width)
}

// syncStatus mirrors the grid and change state into the status bar.
func (m *Model) syncStatus() {
	m.statusbar.SetPendingChanges(m.changes.PendingCount())

	mode := ui.ModeBrowse
	switch {
	case m.confirmClear:
		mode = ui.ModeConfirm
	case m.activePane == ui.PaneGrid && m.grid.IsCellEditing():
		mode = ui.ModeEdit
	case m.activePane == ui.PaneGrid && m.grid.IsSearching():
		mode = ui.ModeSearch
	}
	m.statusbar.SetMode(mode)

	g := m.grid.Grid()
	if g == nil || m.table == nil {
		m.statusbar.SetRows(0, false, false)
		m.statusbar.SetSelected(0)
		return
	}
	m.statusbar.SetRows(m.table.Len(), m.table.HasMoreItems(), g.IsLoading())
	m.statusbar.SetSelected(len(g.SelectedItems()))
}

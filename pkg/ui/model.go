// Package ui is the terminal front end of a radial tree session.
//
// The tree is listed in pre-order and appears ring by ring as the session
// reveals it. Moving the cursor is the pointer: leaving one node and entering
// the next. Space clicks (pins) the route under the cursor. The side panel is
// the session's display target.
package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/radialtree/internal/datasource"
	"github.com/vanderheijden86/radialtree/pkg/config"
	"github.com/vanderheijden86/radialtree/pkg/debug"
	"github.com/vanderheijden86/radialtree/pkg/hierarchy"
	"github.com/vanderheijden86/radialtree/pkg/metrics"
	"github.com/vanderheijden86/radialtree/pkg/record"
	"github.com/vanderheijden86/radialtree/pkg/scene"
	"github.com/vanderheijden86/radialtree/pkg/sequencer"
	"github.com/vanderheijden86/radialtree/pkg/session"
	"github.com/vanderheijden86/radialtree/pkg/watcher"
)

// View width thresholds for adaptive layout
const (
	SplitViewThreshold = 100
	MinDetailPaneWidth = 40
)

// eventBuffer bounds queued session events. Events only signal that the
// scene changed, so dropping one under pressure loses nothing.
const eventBuffer = 64

// focus represents which UI element has keyboard focus
type focus int

const (
	focusList focus = iota
	focusDetail
	focusSettings
)

// SessionEventMsg carries a session change into the update loop.
type SessionEventMsg struct {
	Event session.Event
}

// FileChangedMsg carries a change of the data file on disk.
type FileChangedMsg struct {
	Event watcher.Event
}

// RecordsLoadedMsg delivers a reload of the data source.
type RecordsLoadedMsg struct {
	Records []record.Record
	Err     error
}

// WaitForEventCmd returns a command that waits for the next session event.
func WaitForEventCmd(ch <-chan session.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return SessionEventMsg{Event: ev}
	}
}

// WatchFileCmd waits for the next change of the data file.
func WatchFileCmd(ctx context.Context, w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		ev, err := w.Wait(ctx)
		if err != nil {
			return nil
		}
		return FileChangedMsg{Event: ev}
	}
}

// ReloadCmd reads the data source again in the background.
func ReloadCmd(ctx context.Context, src datasource.DataSource) tea.Cmd {
	return func() tea.Msg {
		res := <-datasource.LoadAsync(ctx, src)
		return RecordsLoadedMsg{Records: res.Records, Err: res.Err}
	}
}

// dataPanel is the session's display target.
type dataPanel struct {
	mu     sync.Mutex
	target string
	text   string
}

func (p *dataPanel) SetText(target, text string) {
	p.mu.Lock()
	p.target, p.text = target, text
	p.mu.Unlock()
}

func (p *dataPanel) get() (string, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.target, p.text
}

// row is one listed node with a snapshot of its element styles.
type row struct {
	node      *hierarchy.Node
	branch    scene.Element
	hasBranch bool
	shape     scene.Element
	text      scene.Element
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithWatcher reloads the data source whenever w reports a change.
func WithWatcher(w *watcher.Watcher) ModelOption {
	return func(m *Model) { m.watcher = w }
}

// WithClock sets the clock of the reveal sequence.
func WithClock(c sequencer.Clock) ModelOption {
	return func(m *Model) { m.clock = c }
}

// WithConfigPath sets where the save key writes options.
func WithConfigPath(path string) ModelOption {
	return func(m *Model) { m.configPath = path }
}

// WithContext bounds the session and background loads.
func WithContext(ctx context.Context) ModelOption {
	return func(m *Model) { m.ctx = ctx }
}

// Model is the main bubbletea model.
type Model struct {
	ctx        context.Context
	cancel     context.CancelFunc
	sess       *session.Session
	events     chan session.Event
	panel      *dataPanel
	clock      sequencer.Clock
	watcher    *watcher.Watcher
	configPath string

	source  datasource.DataSource
	records []record.Record

	rows    []row
	cursor  int
	offset  int
	hovered *hierarchy.Node
	step    int

	focused    focus
	settings   *SettingsForm
	detail     viewport.Model
	mdRenderer *glamour.TermRenderer
	mdWidth    int
	help       help.Model
	keys       keyMap
	theme      Theme

	width  int
	height int
	status string
	err    error
}

// NewModel renders records in a new session and returns the model showing it.
func NewModel(opts config.Options, source datasource.DataSource, records []record.Record, options ...ModelOption) Model {
	m := Model{
		ctx:     context.Background(),
		events:  make(chan session.Event, eventBuffer),
		panel:   &dataPanel{},
		clock:   sequencer.RealClock{},
		source:  source,
		records: records,
		detail:  viewport.New(MinDetailPaneWidth, 10),
		help:    help.New(),
		keys:    defaultKeyMap(),
		theme:   TestTheme(),
		width:   80,
		height:  24,
	}
	for _, o := range options {
		o(&m)
	}
	m.ctx, m.cancel = context.WithCancel(m.ctx)

	events := m.events
	m.sess = session.New(opts,
		session.WithClock(m.clock),
		session.WithDisplay(m.panel),
		session.WithSeparator("\n"),
		session.WithOnChange(func(ev session.Event) {
			select {
			case events <- ev:
			default:
			}
		}),
	)
	m.err = m.sess.Render(m.ctx, records)
	m.refresh()
	m.updateDetail()
	return m
}

// Init starts listening for session events and file changes.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{WaitForEventCmd(m.events)}
	if m.watcher != nil {
		cmds = append(cmds, WatchFileCmd(m.ctx, m.watcher))
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// Session events keep flowing while the settings form is open.
	if ev, ok := msg.(SessionEventMsg); ok {
		if ev.Event.Kind == session.EventRevealed || ev.Event.Kind == session.EventGenerated {
			m.step = ev.Event.Step
		}
		m.refresh()
		return m, WaitForEventCmd(m.events)
	}

	// The settings form needs every message type, not just keys.
	if m.focused == focusSettings && m.settings != nil {
		if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
			m.closeSettings("settings discarded")
			return m, nil
		}
		model, cmd := m.settings.form.Update(msg)
		if f, ok := model.(*huh.Form); ok {
			m.settings.form = f
		}
		switch m.settings.form.State {
		case huh.StateCompleted:
			m.applySettings()
		case huh.StateAborted:
			m.closeSettings("settings discarded")
		}
		return m, cmd
	}

	switch msg := msg.(type) {
	case FileChangedMsg:
		switch msg.Event.Op {
		case watcher.Modified:
			debug.Log("ui: data source changed, reloading")
			metrics.Reloads.Inc()
			cmds = append(cmds, ReloadCmd(m.ctx, m.source))
		case watcher.Removed:
			m.status = "data file removed; keeping last tree"
		case watcher.Failed:
			m.err = msg.Event.Err
			m.status = "watch error"
		}
		if m.watcher != nil {
			cmds = append(cmds, WatchFileCmd(m.ctx, m.watcher))
		}

	case RecordsLoadedMsg:
		if msg.Err != nil {
			m.err = msg.Err
			m.status = "reload failed"
			break
		}
		diff := datasource.CompareRecords(m.records, msg.Records)
		m.records = msg.Records
		if !diff.HasChanges() && m.sess.Scene() != nil {
			m.status = diff.Summary()
			break
		}
		m.rerender()
		m.status = diff.Summary()

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resize()

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKey(msg))
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Close()
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return nil
	case key.Matches(msg, m.keys.Focus):
		if m.focused == focusList {
			m.focused = focusDetail
		} else {
			m.focused = focusList
		}
		return nil
	case key.Matches(msg, m.keys.Settings):
		return m.openSettings()
	case key.Matches(msg, m.keys.Save):
		m.saveOptions()
		return nil
	case key.Matches(msg, m.keys.Reload):
		if m.source.Path == "" {
			return nil
		}
		m.status = "reloading…"
		return ReloadCmd(m.ctx, m.source)
	case key.Matches(msg, m.keys.Copy):
		m.copyData()
		return nil
	}

	if m.focused == focusDetail {
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return cmd
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(m.cursor - 1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(m.cursor + 1)
	case key.Matches(msg, m.keys.Top):
		m.moveCursor(0)
	case key.Matches(msg, m.keys.Bottom):
		m.moveCursor(len(m.rows) - 1)
	case key.Matches(msg, m.keys.Pin):
		m.click()
	}
	return nil
}

// rerender renders the current records with the current options.
func (m *Model) rerender() {
	m.hovered = nil
	m.step = 0
	m.err = m.sess.Render(m.ctx, m.records)
	m.refresh()
	m.updateDetail()
}

// refresh snapshots the visible nodes and their styles from the scene.
func (m *Model) refresh() {
	var current string
	if n := m.CursorNode(); n != nil {
		current = n.ID()
	}

	var rows []row
	m.sess.View(func(sc *scene.Scene) {
		sc.Tree.Root.EachBefore(func(n *hierarchy.Node) {
			shape := sc.Select(sc.ShapeID(n))
			if shape == nil || !shape.Visible() {
				return
			}
			r := row{node: n, shape: *shape}
			if t := sc.Select(sc.TextID(n)); t != nil {
				r.text = *t
			}
			if id := sc.BranchID(n); id != "" {
				if b := sc.Select(id); b != nil {
					r.branch, r.hasBranch = *b, true
				}
			}
			rows = append(rows, r)
		})
	})
	m.rows = rows

	m.cursor = 0
	for i, r := range rows {
		if r.node.ID() == current {
			m.cursor = i
			break
		}
	}
	m.clampOffset()
}

func (m *Model) moveCursor(i int) {
	if len(m.rows) == 0 {
		return
	}
	if i < 0 {
		i = 0
	}
	if i >= len(m.rows) {
		i = len(m.rows) - 1
	}
	m.cursor = i
	next := m.rows[i].node

	if m.hovered != nil && m.hovered != next {
		if _, err := m.sess.LeaveNode(m.hovered); err != nil {
			debug.Log("ui: leave %s: %v", m.hovered.ID(), err)
		}
	}
	if m.hovered != next {
		if _, err := m.sess.EnterNode(next); err != nil {
			debug.Log("ui: enter %s: %v", next.ID(), err)
		}
		m.hovered = next
	}
	m.refresh()
	m.updateDetail()
}

func (m *Model) click() {
	n := m.CursorNode()
	if n == nil {
		return
	}
	if _, err := m.sess.ClickNode(n); err != nil {
		m.err = err
		return
	}
	m.refresh()
	if m.sess.Pinned() {
		m.status = "pinned " + n.Record.Label()
	} else {
		m.status = "unpinned"
	}
}

func (m *Model) copyData() {
	_, text := m.panel.get()
	if text == "" {
		m.status = "nothing to copy"
		return
	}
	if err := clipboard.WriteAll(text); err != nil {
		m.status = fmt.Sprintf("clipboard: %v", err)
		return
	}
	m.status = "copied data to clipboard"
}

func (m *Model) openSettings() tea.Cmd {
	m.settings = NewSettingsForm(m.sess.Options())
	m.settings.form = m.settings.form.WithWidth(m.width)
	m.focused = focusSettings
	return m.settings.form.Init()
}

func (m *Model) closeSettings(status string) {
	m.settings = nil
	m.focused = focusList
	m.status = status
}

// applySettings sets every changed option by name and renders again.
func (m *Model) applySettings() {
	changed := m.settings.Changed()
	for name, v := range changed {
		if err := m.sess.SetOption(name, v); err != nil {
			m.closeSettings(err.Error())
			return
		}
	}
	m.closeSettings(fmt.Sprintf("applied %d setting(s)", len(changed)))
	if len(changed) > 0 {
		m.rerender()
	}
}

func (m *Model) saveOptions() {
	path := m.configPath
	if path == "" {
		path = config.ConfigPath()
	}
	if err := config.SaveTo(m.sess.Options(), path); err != nil {
		m.status = fmt.Sprintf("save failed: %v", err)
		return
	}
	m.status = "saved " + path
}

// Close stops the reveal and any background work.
func (m *Model) Close() {
	m.sess.Stop()
	if m.cancel != nil {
		m.cancel()
	}
	if m.watcher != nil {
		m.watcher.Stop()
	}
}

func (m *Model) listHeight() int {
	h := m.height - 4
	if m.help.ShowAll {
		h -= 4
	}
	if h < 1 {
		h = 1
	}
	return h
}

func (m *Model) clampOffset() {
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m *Model) detailWidth() int {
	if m.width < SplitViewThreshold {
		return 0
	}
	w := m.width / 3
	if w < MinDetailPaneWidth {
		w = MinDetailPaneWidth
	}
	return w
}

func (m *Model) resize() {
	w := m.detailWidth()
	if w > 0 {
		m.detail.Width = w - 2
		m.detail.Height = m.listHeight()
	}
	m.clampOffset()
	m.updateDetail()
}

// detailMarkdown describes the cursor node and the display target contents.
func (m *Model) detailMarkdown() string {
	var sb strings.Builder
	if n := m.CursorNode(); n != nil {
		fmt.Fprintf(&sb, "## %s\n\n", n.Record.Label())
		fmt.Fprintf(&sb, "`%s` · depth %d · row %d\n\n", n.ID(), n.Depth, n.Row())
		if !n.IsLeaf() {
			fmt.Fprintf(&sb, "_%d children_\n\n", len(n.Children))
		}
	}
	target, text := m.panel.get()
	if target == "" {
		target = m.sess.Options().DataBoxID
	}
	fmt.Fprintf(&sb, "### %s\n\n", target)
	if text == "" {
		sb.WriteString("_hover a leaf to show its data_\n")
		return sb.String()
	}
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintf(&sb, "- %s\n", line)
	}
	return sb.String()
}

func (m *Model) updateDetail() {
	w := m.detail.Width
	if w <= 0 {
		return
	}
	md := m.detailMarkdown()
	if m.mdRenderer == nil || m.mdWidth != w {
		m.mdRenderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(w),
		)
		m.mdWidth = w
	}
	if m.mdRenderer != nil {
		if out, err := m.mdRenderer.Render(md); err == nil {
			m.detail.SetContent(out)
			return
		}
	}
	m.detail.SetContent(md)
}

// View renders the screen.
func (m Model) View() string {
	defer metrics.Timer(metrics.UIRender)()

	if m.focused == focusSettings && m.settings != nil {
		return lipgloss.JoinVertical(lipgloss.Left,
			m.theme.Header.Render("Settings"),
			m.settings.form.View(),
		)
	}

	header := m.renderHeader()
	footer := m.renderFooter()

	listWidth := m.width
	dw := m.detailWidth()
	if dw > 0 {
		listWidth = m.width - dw
	}
	list := m.renderList(listWidth - 2)

	listStyle := PanelStyle
	detailStyle := PanelStyle
	if m.focused == focusDetail {
		detailStyle = FocusedPanelStyle
	} else {
		listStyle = FocusedPanelStyle
	}
	body := listStyle.Width(listWidth - 2).Render(list)
	if dw > 0 {
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			body,
			detailStyle.Width(dw-2).Render(m.detail.View()),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m Model) renderHeader() string {
	title := "radial tree"
	maxRing := 0
	if t := m.sess.Tree(); t != nil {
		title = t.Root.Record.Label()
		maxRing = t.MaxDepth
	}
	info := fmt.Sprintf(" ring %d/%d · %d shown ", m.step, maxRing, len(m.rows))
	badge := RenderStateBadge(m.sess.Generated(), m.sess.Pinned())
	left := m.theme.Header.Render(truncate(title, m.width/2))
	return lipgloss.JoinHorizontal(lipgloss.Top, left, m.theme.Status.Render(info), badge)
}

func (m Model) renderFooter() string {
	status := m.status
	if m.source.Path != "" {
		status = strings.TrimSpace(m.source.String() + "  " + status)
	}
	line := m.theme.Status.Render(truncate(status, m.width))
	if m.err != nil {
		line = m.theme.Error.Render(truncate("error: "+m.err.Error(), m.width))
	}
	return lipgloss.JoinVertical(lipgloss.Left, line, m.help.View(m.keys))
}

func (m Model) renderList(width int) string {
	if len(m.rows) == 0 {
		if m.err != nil {
			return m.theme.MutedText.Render("nothing to show")
		}
		return m.theme.MutedText.Render("revealing…")
	}
	h := m.listHeight()
	end := m.offset + h
	if end > len(m.rows) {
		end = len(m.rows)
	}
	lines := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		lines = append(lines, m.renderRow(m.rows[i], i == m.cursor, width))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRow(r row, selected bool, width int) string {
	rend := m.theme.Renderer
	var sb strings.Builder
	if selected {
		sb.WriteString(m.theme.PrimaryBold.Render("▸ "))
	} else {
		sb.WriteString("  ")
	}
	sb.WriteString(indent(r.node.Depth))
	used := 2 + len(indent(r.node.Depth))

	if r.hasBranch {
		sb.WriteString(rend.NewStyle().
			Foreground(SceneColour(r.branch.Stroke, r.branch.Opacity)).
			Render("└─"))
		used += 2
	}
	marker := "○"
	if r.node.IsLeaf() {
		marker = "●"
	}
	sb.WriteString(rend.NewStyle().
		Foreground(SceneColour(r.shape.Fill, r.shape.Opacity)).
		Render(marker))
	sb.WriteString(" ")
	used += 2

	if r.text.Visible() {
		label := truncate(r.text.Label, width-used)
		style := m.theme.Base.Foreground(SceneColour(r.text.Fill, r.text.Opacity))
		if selected {
			style = style.Inherit(m.theme.Selected)
			label = padRight(label, width-used)
		}
		sb.WriteString(style.Render(label))
	}
	return sb.String()
}

// Session returns the session behind the model.
func (m Model) Session() *session.Session { return m.sess }

// CursorNode returns the node under the cursor, or nil.
func (m Model) CursorNode() *hierarchy.Node {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor].node
}

// VisibleNodes returns the listed nodes in display order.
func (m Model) VisibleNodes() []*hierarchy.Node {
	out := make([]*hierarchy.Node, len(m.rows))
	for i, r := range m.rows {
		out[i] = r.node
	}
	return out
}

// DataText returns the display target's current contents.
func (m Model) DataText() string {
	_, text := m.panel.get()
	return text
}

// Status returns the status line message.
func (m Model) Status() string { return m.status }

// Err returns the last render or load error.
func (m Model) Err() error { return m.err }

// SettingsOpen reports whether the settings form is open.
func (m Model) SettingsOpen() bool { return m.focused == focusSettings }

// Settings returns the open settings form, or nil.
func (m Model) Settings() *SettingsForm { return m.settings }

// ApplySettings applies the open form as if submitted.
func (m Model) ApplySettings() Model {
	if m.settings != nil {
		m.applySettings()
	}
	return m
}

// Refresh re-reads the scene, as a session event would.
func (m Model) Refresh() Model {
	m.refresh()
	return m
}

package ui_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/radialtree/internal/datasource"
	"github.com/vanderheijden86/radialtree/pkg/config"
	"github.com/vanderheijden86/radialtree/pkg/session"
	"github.com/vanderheijden86/radialtree/pkg/testutil"
	"github.com/vanderheijden86/radialtree/pkg/ui"
	"github.com/vanderheijden86/radialtree/pkg/watcher"
)

func staticOptions() config.Options {
	opts := config.DefaultOptions()
	opts.EnableTransitions = false
	return opts
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func press(t *testing.T, m ui.Model, keys ...string) (ui.Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(keyMsg(k))
		m = next.(ui.Model)
	}
	return m, cmd
}

func labels(m ui.Model) []string {
	var out []string
	for _, n := range m.VisibleNodes() {
		out = append(out, n.Record.Label())
	}
	return out
}

func TestModel_RevealsRingByRing(t *testing.T) {
	clock := testutil.NewManualClock()
	m := ui.NewModel(config.DefaultOptions(), datasource.DataSource{}, testutil.SampleRecords(), ui.WithClock(clock))
	defer m.Close()

	if n := len(m.VisibleNodes()); n != 0 {
		t.Fatalf("visible before first step = %d", n)
	}

	wants := []int{1, 3, 6, 10}
	for step, want := range wants {
		clock.Advance(1500 * time.Millisecond)
		m = m.Refresh()
		if got := len(m.VisibleNodes()); got != want {
			t.Errorf("after step %d: %d visible, want %d", step, got, want)
		}
	}
	if !m.Session().Generated() {
		t.Error("session should be generated after the last ring")
	}
}

func TestModel_PreOrderListing(t *testing.T) {
	m := ui.NewModel(staticOptions(), datasource.DataSource{}, testutil.SampleRecords())
	defer m.Close()

	got := strings.Join(labels(m), ",")
	want := "shelter,DOG,LABRADOR RETR,Rex,Bella,PIT BULL,Max,CAT,DOMESTIC SH,Tom"
	if got != want {
		t.Errorf("listing = %s\nwant      %s", got, want)
	}
}

func TestModel_CursorHoverHighlightsRoute(t *testing.T) {
	opts := staticOptions()
	m := ui.NewModel(opts, datasource.DataSource{}, testutil.SampleRecords())
	defer m.Close()

	m, _ = press(t, m, "j", "j", "j")
	if n := m.CursorNode(); n == nil || n.Row() != 6 {
		t.Fatalf("cursor on %v, want Rex", n)
	}
	sc := m.Session().Scene()
	if e := sc.Select("s3i6"); e.Fill != opts.NodeColourOnHover {
		t.Errorf("Rex fill = %s", e.Fill)
	}
	if e := sc.Select("b0i1"); e.Stroke != opts.BranchColourOnHover {
		t.Errorf("route branch stroke = %s", e.Stroke)
	}
	if !strings.HasPrefix(m.DataText(), "Name : Rex\nType : DOG\n") {
		t.Errorf("data = %q", m.DataText())
	}

	m, _ = press(t, m, "j")
	if e := sc.Select("s3i6"); e.Fill != opts.NodeColour {
		t.Errorf("Rex fill after leave = %s", e.Fill)
	}
	if e := sc.Select("s3i7"); e.Fill != opts.NodeColourOnHover {
		t.Errorf("Bella fill = %s", e.Fill)
	}

	m, _ = press(t, m, "G")
	if n := m.CursorNode(); n.Row() != 9 {
		t.Errorf("bottom = row %d", n.Row())
	}
	m, _ = press(t, m, "g", "k")
	if n := m.CursorNode(); n.Row() != 0 {
		t.Errorf("top = row %d", n.Row())
	}
}

func TestModel_SpaceTogglesPin(t *testing.T) {
	m := ui.NewModel(staticOptions(), datasource.DataSource{}, testutil.SampleRecords())
	defer m.Close()

	m, _ = press(t, m, "j", "j", "j", "space")
	if !m.Session().Pinned() {
		t.Fatal("space should pin")
	}
	if !strings.HasPrefix(m.Status(), "pinned") {
		t.Errorf("status = %q", m.Status())
	}
	m, _ = press(t, m, "space")
	if m.Session().Pinned() {
		t.Error("second space should unpin")
	}
}

func TestModel_SettingsForm(t *testing.T) {
	m := ui.NewModel(staticOptions(), datasource.DataSource{}, testutil.SampleRecords())
	defer m.Close()

	m, _ = press(t, m, "s")
	if !m.SettingsOpen() {
		t.Fatal("s should open settings")
	}
	m.Settings().Set("node_colour", "#00FF00")
	m = m.ApplySettings()
	if m.SettingsOpen() {
		t.Error("settings still open after apply")
	}
	if got := m.Session().Options().NodeColour; got != "#00FF00" {
		t.Errorf("node_colour = %s", got)
	}
	if e := m.Session().Scene().Select("s0i0"); e.Fill != "#00FF00" {
		t.Errorf("scene not re-rendered: fill %s", e.Fill)
	}
	if m.Status() != "applied 1 setting(s)" {
		t.Errorf("status = %q", m.Status())
	}

	m, _ = press(t, m, "s", "esc")
	if m.SettingsOpen() {
		t.Error("esc should close settings")
	}
	if m.Status() != "settings discarded" {
		t.Errorf("status = %q", m.Status())
	}
}

func TestModel_SaveOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	m := ui.NewModel(staticOptions(), datasource.DataSource{}, testutil.SampleRecords(), ui.WithConfigPath(path))
	defer m.Close()

	m, _ = press(t, m, "w")
	got, err := config.LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if got.EnableTransitions {
		t.Error("saved options should keep transitions off")
	}
	if !strings.HasPrefix(m.Status(), "saved") {
		t.Errorf("status = %q", m.Status())
	}
}

func TestModel_RecordsLoaded(t *testing.T) {
	m := ui.NewModel(staticOptions(), datasource.DataSource{}, testutil.SampleRecords())
	defer m.Close()

	next, _ := m.Update(ui.RecordsLoadedMsg{Records: testutil.SampleRecords()})
	m = next.(ui.Model)
	if m.Status() != "no changes (10 records)" {
		t.Errorf("status = %q", m.Status())
	}

	next, _ = m.Update(ui.RecordsLoadedMsg{Records: testutil.SampleRecords()[:7]})
	m = next.(ui.Model)
	if m.Status() != "-3 (10 -> 7 records)" {
		t.Errorf("status = %q", m.Status())
	}
	if n := len(m.VisibleNodes()); n != 7 {
		t.Errorf("visible = %d", n)
	}

	next, _ = m.Update(ui.RecordsLoadedMsg{Err: errors.New("boom")})
	m = next.(ui.Model)
	if m.Err() == nil || m.Status() != "reload failed" {
		t.Errorf("err = %v status = %q", m.Err(), m.Status())
	}
}

func TestModel_FileChanged(t *testing.T) {
	m := ui.NewModel(staticOptions(), datasource.DataSource{}, testutil.SampleRecords())
	defer m.Close()

	next, cmd := m.Update(ui.FileChangedMsg{Event: watcher.Event{Op: watcher.Modified}})
	m = next.(ui.Model)
	if cmd == nil {
		t.Error("a modified file should schedule a reload")
	}

	next, _ = m.Update(ui.FileChangedMsg{Event: watcher.Event{Op: watcher.Removed}})
	m = next.(ui.Model)
	if m.Status() != "data file removed; keeping last tree" {
		t.Errorf("status = %q", m.Status())
	}
	if n := len(m.VisibleNodes()); n != 10 {
		t.Errorf("removal should keep the tree, visible = %d", n)
	}

	boom := errors.New("inotify overflow")
	next, _ = m.Update(ui.FileChangedMsg{Event: watcher.Event{Op: watcher.Failed, Err: boom}})
	m = next.(ui.Model)
	if !errors.Is(m.Err(), boom) || m.Status() != "watch error" {
		t.Errorf("err = %v status = %q", m.Err(), m.Status())
	}
}

func TestReloadCmd_ReadsSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.csv")
	if err := os.WriteFile(path, []byte("id\nroot\nroot.a\nroot.b\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	src, err := datasource.Resolve(path)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	msg := ui.ReloadCmd(context.Background(), src)()
	loaded, ok := msg.(ui.RecordsLoadedMsg)
	if !ok {
		t.Fatalf("msg = %T", msg)
	}
	if loaded.Err != nil || len(loaded.Records) != 3 {
		t.Errorf("loaded %d records, err %v", len(loaded.Records), loaded.Err)
	}
}

func TestModel_RenderErrorShown(t *testing.T) {
	recs := testutil.Records("a", "b")
	m := ui.NewModel(staticOptions(), datasource.DataSource{}, recs)
	defer m.Close()

	if m.Err() == nil {
		t.Fatal("two roots should fail to render")
	}
	if len(m.VisibleNodes()) != 0 {
		t.Error("failed render should show nothing")
	}
	if !strings.Contains(m.View(), "error:") {
		t.Error("view should show the error")
	}
}

func TestModel_View(t *testing.T) {
	m := ui.NewModel(staticOptions(), datasource.DataSource{}, testutil.SampleRecords())
	defer m.Close()

	next, _ := m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	m = next.(ui.Model)
	view := m.View()
	for _, want := range []string{"shelter", "Rex", "Tom", "READY"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m, _ = press(t, m, "space")
	if !strings.Contains(m.View(), "PINNED") {
		t.Error("view should show the pinned badge")
	}
}

func TestModel_SessionEventRearms(t *testing.T) {
	m := ui.NewModel(staticOptions(), datasource.DataSource{}, testutil.SampleRecords())
	defer m.Close()

	_, cmd := m.Update(ui.SessionEventMsg{Event: session.Event{Kind: session.EventRevealed, Step: 1}})
	if cmd == nil {
		t.Fatal("session events should re-arm the listener")
	}
}

func TestModel_Quit(t *testing.T) {
	m := ui.NewModel(staticOptions(), datasource.DataSource{}, testutil.SampleRecords())
	_, cmd := press(t, m, "q")
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestWaitForEventCmd(t *testing.T) {
	ch := make(chan session.Event, 1)
	ch <- session.Event{Kind: session.EventGenerated, Step: 3}
	msg := ui.WaitForEventCmd(ch)()
	ev, ok := msg.(ui.SessionEventMsg)
	if !ok || ev.Event.Kind != session.EventGenerated || ev.Event.Step != 3 {
		t.Errorf("msg = %#v", msg)
	}

	close(ch)
	if msg := ui.WaitForEventCmd(ch)(); msg != nil {
		t.Errorf("closed channel msg = %#v", msg)
	}
}

package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/tubarr-tui/internal/prefs"
	"github.com/five82/tubarr-tui/internal/state"
	"github.com/five82/tubarr-tui/internal/tubarr"
	"github.com/five82/tubarr-tui/internal/views"
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Router    *views.Router
	Store     *state.Store
	ThemeName string
	PrefsPath string
	LogPath   string
	PushState func() string // nil hides the push indicator
}

// inputMode is what the single-line input is editing.
type inputMode int

const (
	inputNone inputMode = iota
	inputFilter
	inputSearch
	inputPath
)

// Model is the root application state for Bubble Tea. Controllers own all
// data; the model only holds cursors, dialogs and in-progress edits.
type Model struct {
	// Configuration
	ctx       context.Context
	router    *views.Router
	c         *views.Controllers
	store     *state.Store
	prefsPath string
	logPath   string
	pushState func() string
	changes   <-chan struct{}
	keys      keyMap

	// UI state
	theme  Theme
	width  int
	height int
	ready  bool

	cursor        map[string]int
	playlistFocus bool

	input     textinput.Model
	inputMode inputMode

	// draft is an unsaved settings edit.
	draft *tubarr.Settings

	modal    Modal
	showHelp bool

	flash      string
	flashError bool
	flashAt    time.Time

	// Log overlay
	logViewport viewport.Model
	logState    logState
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Nightfox"
	}

	input := textinput.New()
	input.Prompt = "/ "
	input.CharLimit = 256

	return Model{
		ctx:       ctx,
		router:    opts.Router,
		c:         opts.Router.Controllers(),
		store:     opts.Store,
		prefsPath: opts.PrefsPath,
		logPath:   opts.LogPath,
		pushState: opts.PushState,
		keys:      DefaultKeyMap(),
		theme:     GetTheme(themeName),
		cursor:    make(map[string]int),
		input:     input,
		logState:  logState{follow: true},
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tickCmd(DefaultUIInterval),
		waitForChange(m.changes),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.initLogViewport()
		}
		m.ready = true
		m.resizeLogViewport()
		return m, nil

	case changedMsg:
		// Everything renders from controller snapshots; redrawing is enough.
		return m, waitForChange(m.changes)

	case tickMsg:
		return m.handleTick(time.Time(msg))

	case opDoneMsg:
		return m.handleOpDone(msg)

	case navDoneMsg:
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.setFlash(views.UserMessage(msg.err, "Could not load "+msg.view.Name()), true)
		}
		return m, nil

	case previewMsg:
		if msg.err != nil {
			m.modal = noticeModal{title: "Preview failed", text: views.UserMessage(msg.err, "Could not load the channel preview")}
			return m, nil
		}
		m.cursor[views.ViewPreview] = 0
		return m, m.navigate(views.PreviewView{Preview: msg.preview})

	case settingsSavedMsg:
		if msg.err != nil {
			m.modal = noticeModal{title: "Settings not saved", text: views.UserMessage(msg.err, msg.err.Error())}
			return m, nil
		}
		m.draft = nil
		m.setFlash("Settings saved", false)
		return m, nil

	case keyGeneratedMsg:
		if msg.err != nil {
			m.modal = noticeModal{title: "Error", text: views.UserMessage(msg.err, "Could not generate an API key")}
			return m, nil
		}
		if m.draft != nil {
			m.draft.APIKey = msg.key
		}
		m.setFlash("New API key generated", false)
		return m, nil

	case logsMsg:
		m.handleLogs(msg)
		return m, nil
	}

	if m.modal != nil {
		modal, cmd, closed := m.modal.Update(msg, m.keys)
		m.modal = modal
		if closed {
			m.modal = nil
		}
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

// handleKey routes keyboard input: overlays first, then global keys, then
// the active view.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		modal, cmd, closed := m.modal.Update(msg, m.keys)
		m.modal = modal
		if closed {
			m.modal = nil
		}
		return m, cmd
	}

	if m.logState.open {
		return m.handleLogsKey(msg)
	}

	if m.inputMode != inputNone {
		return m.handleInputKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		if m.prefsPath != "" {
			_ = prefs.SaveTheme(m.prefsPath, m.theme.Name)
		}
		return m, nil

	case key.Matches(msg, m.keys.Logs):
		return m.openLogs()

	case key.Matches(msg, m.keys.ViewHome):
		return m, m.navigate(views.HomeView{})

	case key.Matches(msg, m.keys.ViewActivity):
		return m, m.navigate(views.ActivityView{})

	case key.Matches(msg, m.keys.ViewSearch):
		return m.openSearch()

	case key.Matches(msg, m.keys.ViewSettings):
		return m, m.navigate(views.SettingsView{})

	case key.Matches(msg, m.keys.Tab):
		return m, m.navigate(cycleView(m.router.Current(), 1))

	case key.Matches(msg, m.keys.ShiftTab):
		return m, m.navigate(cycleView(m.router.Current(), -1))

	case key.Matches(msg, m.keys.Escape):
		return m.back()
	}

	switch m.router.Current().(type) {
	case views.HomeView:
		return m.handleHomeKey(msg)
	case views.ChannelView:
		return m.handleChannelKey(msg)
	case views.PlaylistView:
		return m.handlePlaylistKey(msg)
	case views.ActivityView:
		return m.handleActivityKey(msg)
	case views.SearchView:
		return m.handleSearchKey(msg)
	case views.PreviewView:
		return m.handlePreviewKey(msg)
	case views.SettingsView:
		return m.handleSettingsKey(msg)
	}
	return m, nil
}

// tabs are the top-level views reachable with tab and the number keys.
var tabs = []views.View{views.HomeView{}, views.ActivityView{}, views.SearchView{}, views.SettingsView{}}

// tabIndex maps any view onto its tab: detail views belong to the tab they
// were opened from.
func tabIndex(v views.View) int {
	switch v.(type) {
	case views.ActivityView:
		return 1
	case views.SearchView, views.PreviewView:
		return 2
	case views.SettingsView:
		return 3
	default:
		return 0
	}
}

func cycleView(current views.View, step int) views.View {
	i := (tabIndex(current) + step + len(tabs)) % len(tabs)
	return tabs[i]
}

// back returns to the parent of the current view.
func (m Model) back() (tea.Model, tea.Cmd) {
	switch v := m.router.Current().(type) {
	case views.HomeView:
		return m, nil
	case views.ChannelView:
		if m.playlistFocus {
			m.playlistFocus = false
			return m, nil
		}
		return m, m.navigate(views.HomeView{})
	case views.PlaylistView:
		return m, m.navigate(views.ChannelView{ChannelID: v.ChannelID})
	case views.PreviewView:
		return m, m.navigate(views.SearchView{})
	case views.SettingsView:
		if m.draft != nil {
			m.draft = nil
			m.setFlash("Changes discarded", false)
			return m, nil
		}
	}
	return m, m.navigate(views.HomeView{})
}

func (m Model) openSearch() (tea.Model, tea.Cmd) {
	cmd := m.navigate(views.SearchView{})
	if len(m.c.Search.Snapshot().Items) == 0 {
		return m.startInput(inputSearch, m.c.Search.Snapshot().Query), cmd
	}
	return m, cmd
}

// handleTick expires the flash line and follows the log file.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{tickCmd(DefaultUIInterval)}
	if m.flash != "" && now.Sub(m.flashAt) > FlashDuration {
		m.flash = ""
	}
	if m.logState.open && m.logState.follow {
		cmds = append(cmds, m.loadLogs())
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleOpDone(msg opDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if errors.Is(msg.err, context.Canceled) {
			return m, nil
		}
		text := msg.notice
		if text == "" {
			text = views.UserMessage(msg.err, "Could not "+msg.what)
		}
		m.modal = noticeModal{title: "Error", text: text}
		return m, nil
	}
	if msg.info != "" {
		m.setFlash(msg.info, false)
	}
	if msg.next != nil {
		return m, m.navigate(msg.next)
	}
	return m, nil
}

func (m *Model) setFlash(text string, isError bool) {
	m.flash = text
	m.flashError = isError
	m.flashAt = time.Now()
}

// startInput focuses the line input for mode, prefilled with value.
func (m Model) startInput(mode inputMode, value string) Model {
	m.inputMode = mode
	switch mode {
	case inputFilter:
		m.input.Prompt = "filter: "
	case inputSearch:
		m.input.Prompt = "search: "
	case inputPath:
		m.input.Prompt = "download path: "
	}
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
	return m
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	mode := m.inputMode
	switch msg.String() {
	case "esc":
		m.inputMode = inputNone
		m.input.Blur()
		return m, nil
	case "enter":
		m.inputMode = inputNone
		m.input.Blur()
		value := strings.TrimSpace(m.input.Value())
		switch mode {
		case inputFilter:
			m.c.Detail.SetQuery(value)
		case inputSearch:
			m.cursor[views.ViewSearch] = 0
			return m, m.run("search", "", func(ctx context.Context) error {
				return m.c.Search.Run(ctx, value)
			})
		case inputPath:
			d := m.editDraft()
			d.DefaultPath = value
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if mode == inputFilter {
		// Filtering is local to the loaded window, so apply as the user types.
		m.c.Detail.SetQuery(m.input.Value())
		m.cursor[views.ViewChannel] = 0
	}
	return m, cmd
}

// Messages

type tickMsg time.Time

// changedMsg reports that the store changed since the last redraw.
type changedMsg struct{}

// opDoneMsg is the outcome of a user action. A failure becomes a blocking
// notice; success shows info and optionally moves to next.
type opDoneMsg struct {
	what   string
	err    error
	info   string
	notice string // replaces the derived failure text when set
	next   views.View
}

type navDoneMsg struct {
	view views.View
	err  error
}

type previewMsg struct {
	preview tubarr.ChannelPreview
	err     error
}

type settingsSavedMsg struct{ err error }

type keyGeneratedMsg struct {
	key string
	err error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForChange blocks until the store signals a change. It is re-issued
// after every changedMsg, so at most one wait is outstanding.
func waitForChange(changes <-chan struct{}) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return changedMsg{}
	}
}

// navigate switches views off the UI goroutine; Navigate blocks on the
// entering view's first load.
func (m Model) navigate(v views.View) tea.Cmd {
	ctx, router := m.ctx, m.router
	return func() tea.Msg {
		return navDoneMsg{view: v, err: router.Navigate(ctx, v)}
	}
}

// run performs a controller operation off the UI goroutine.
func (m Model) run(what, info string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{what: what, err: fn(ctx), info: info}
	}
}

// subscribe turns store notifications into a coalescing signal. Store
// subscribers run on whichever goroutine wrote, so the send never blocks.
func subscribe(store *state.Store) (<-chan struct{}, func()) {
	changes := make(chan struct{}, 1)
	unsubscribe := store.Subscribe(func(state.Kind) {
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	return changes, unsubscribe
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	if opts.Store != nil {
		changes, unsubscribe := subscribe(opts.Store)
		defer unsubscribe()
		m.changes = changes
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}

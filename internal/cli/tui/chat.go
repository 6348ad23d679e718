package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mansidw/aakar-cli/internal/cli/ui"
	"github.com/mansidw/aakar-cli/internal/domain"
	"github.com/mansidw/aakar-cli/internal/domain/entity"
	"github.com/mansidw/aakar-cli/internal/usecase"
)

// UI configuration constants
const (
	defaultWindowWidth   = 100
	defaultWindowHeight  = 40
	sidebarWidth         = 26
	inputCharLimit       = 4000
	headerHeightReserved = 2
	footerHeightReserved = 4
	minContentHeight     = 5
	closeTimeout         = 5 * time.Second
)

var (
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	boldStyle    = lipgloss.NewStyle().Bold(true)
	accentStyle  = lipgloss.NewStyle().Foreground(ui.ColorAccent)
	userStyle    = lipgloss.NewStyle().Foreground(ui.ColorUser).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(ui.ColorError)
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	sidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(lipgloss.Color("238")).
			PaddingRight(1)
)

// DocumentOpener reads back the payload behind a resource handle so it can
// be saved to disk. Backends that hand out remote links leave it nil.
type DocumentOpener interface {
	OpenHandle(handle entity.ResourceHandle) (entity.Blob, error)
}

// Options configures the chat TUI
type Options struct {
	Format   entity.RequestFormat
	Renderer *ui.ArtifactRenderer
	Opener   DocumentOpener
	SaveDir  string
	// Hydrate loads stored sessions from the backend when the program starts
	Hydrate bool
}

// ChatProgram encapsulates the chat TUI program
type ChatProgram struct {
	ctrl  *usecase.ConversationController
	model chatModel
}

// NewChatProgram creates a new chat program instance
func NewChatProgram(ctx context.Context, ctrl *usecase.ConversationController, opts Options) *ChatProgram {
	return &ChatProgram{ctrl: ctrl, model: initialModel(ctx, ctrl, opts)}
}

// Run starts the chat TUI and tears the conversation down when it exits
func (p *ChatProgram) Run() error {
	program := tea.NewProgram(p.model, tea.WithAltScreen())
	_, runErr := program.Run()

	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := p.ctrl.Close(ctx); err != nil && runErr == nil {
		return err
	}
	return runErr
}

// chatModel is the Bubble Tea model containing all chat interface state
type chatModel struct {
	// Dependencies
	ctx      context.Context
	ctrl     *usecase.ConversationController
	renderer *ui.ArtifactRenderer
	opener   DocumentOpener
	saveDir  string
	hydrate  bool

	// UI components
	input       textinput.Model
	contentView viewport.Model
	spinner     spinner.Model

	format entity.RequestFormat
	// unread marks sessions that received a reply while not selected
	unread map[entity.SessionID]bool
	notice string

	// Window dimensions
	width  int
	height int
}

// initialModel creates the initial chat model
func initialModel(ctx context.Context, ctrl *usecase.ConversationController, opts Options) chatModel {
	input := textinput.New()
	input.Placeholder = "Ask for a report..."
	input.Focus()
	input.CharLimit = inputCharLimit
	input.Prompt = ""

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle

	renderer := opts.Renderer
	if renderer == nil {
		renderer = ui.NewArtifactRenderer(nil)
	}
	format := opts.Format
	if format == "" {
		format = entity.FormatPDF
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if ctrl.Store().ActiveSessionID() == "" {
		ctrl.CreateSession()
	}

	m := chatModel{
		ctx:         ctx,
		ctrl:        ctrl,
		renderer:    renderer,
		opener:      opts.Opener,
		saveDir:     opts.SaveDir,
		hydrate:     opts.Hydrate,
		input:       input,
		contentView: viewport.New(defaultWindowWidth, defaultWindowHeight),
		spinner:     sp,
		format:      format,
		unread:      make(map[entity.SessionID]bool),
	}
	m.resize(defaultWindowWidth, defaultWindowHeight)
	return m
}

// Init initializes the model (Bubble Tea interface)
func (m chatModel) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.hydrate {
		cmds = append(cmds, m.hydrateSessions())
	}
	return tea.Batch(cmds...)
}

// Message type definitions
type (
	replyMsg    struct{ outcome usecase.SendOutcome }
	hydratedMsg struct {
		inserted int
		err      error
	}
	savedMsg struct {
		path string
		err  error
	}
)

// Update processes messages and updates the model (Bubble Tea interface)
func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd, handled := m.handleKeyPress(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		if handled {
			return m, tea.Batch(cmds...)
		}

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case replyMsg:
		m.handleReply(msg.outcome)

	case hydratedMsg:
		if msg.err != nil {
			m.notice = errorStyle.Render("Could not load stored sessions")
		} else if msg.inserted > 0 {
			m.notice = dimStyle.Render(fmt.Sprintf("Loaded %d stored session(s)", msg.inserted))
		}
		m.refreshContent()

	case savedMsg:
		if msg.err != nil {
			m.notice = errorStyle.Render("Save failed: " + msg.err.Error())
		} else {
			m.notice = dimStyle.Render("Saved " + msg.path)
		}

	case spinner.TickMsg:
		// stop ticking once nothing is in flight
		if !m.anyAwaiting() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKeyPress handles keyboard input. handled reports whether the key
// was consumed and must not reach the input field.
func (m *chatModel) handleKeyPress(msg tea.KeyMsg) (cmd tea.Cmd, handled bool) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return tea.Quit, true

	case "enter":
		return m.send(), true

	case "tab":
		m.format = m.format.Next()
		return nil, true

	case "ctrl+n":
		m.ctrl.CreateSession()
		m.notice = ""
		m.refreshContent()
		return nil, true

	case "ctrl+x":
		if id := m.ctrl.Store().ActiveSessionID(); id != "" {
			m.ctrl.DeleteSession(m.ctx, id)
			delete(m.unread, id)
			m.selectNeighbour(0)
		}
		m.refreshContent()
		return nil, true

	case "ctrl+up", "alt+up":
		m.selectNeighbour(-1)
		return nil, true

	case "ctrl+down", "alt+down":
		m.selectNeighbour(1)
		return nil, true

	case "pgup":
		m.contentView.ViewUp()
		return nil, true

	case "pgdown":
		m.contentView.ViewDown()
		return nil, true

	case "up":
		m.contentView.LineUp(1)
		return nil, true

	case "down":
		m.contentView.LineDown(1)
		return nil, true

	case "ctrl+s":
		return m.saveDocument(), true
	}
	return nil, false
}

// send submits the input to the active session
func (m *chatModel) send() tea.Cmd {
	text := m.input.Value()
	if strings.TrimSpace(text) == "" {
		return nil
	}

	done, err := m.ctrl.SendMessageAsync(m.ctx, text, m.format)
	switch {
	case domain.IsSessionBusy(err):
		m.notice = errorStyle.Render("A report is still being generated in this session")
		return nil
	case err != nil:
		m.notice = errorStyle.Render(err.Error())
		return nil
	}

	m.input.Reset()
	m.notice = ""
	m.refreshContent()
	return tea.Batch(waitForReply(done), m.spinner.Tick)
}

// waitForReply delivers the outcome of an async send
func waitForReply(done <-chan usecase.SendOutcome) tea.Cmd {
	return func() tea.Msg {
		return replyMsg{outcome: <-done}
	}
}

func (m *chatModel) handleReply(out usecase.SendOutcome) {
	if out.Discarded || out.Skipped {
		m.refreshContent()
		return
	}
	if out.SessionID != m.ctrl.Store().ActiveSessionID() {
		m.unread[out.SessionID] = true
	}
	m.refreshContent()
}

// selectNeighbour moves the selection by delta in sidebar order. With
// delta 0 it selects the last session when nothing is active.
func (m *chatModel) selectNeighbour(delta int) {
	sessions := m.ctrl.Store().Sessions()
	if len(sessions) == 0 {
		return
	}

	active := m.ctrl.Store().ActiveSessionID()
	idx := len(sessions) - 1
	for i, s := range sessions {
		if s.ID == active {
			idx = (i + delta + len(sessions)) % len(sessions)
			break
		}
	}

	id := sessions[idx].ID
	if err := m.ctrl.SelectSession(id); err != nil {
		return
	}
	delete(m.unread, id)
	m.refreshContent()
}

// saveDocument writes the newest document of the active session to disk
func (m *chatModel) saveDocument() tea.Cmd {
	log := m.ctrl.Store().ActiveMessages()
	var doc *entity.DocumentArtifact
	for i := len(log) - 1; i >= 0; i-- {
		if d, ok := log[i].Artifact.(entity.DocumentArtifact); ok {
			doc = &d
			break
		}
	}
	if doc == nil {
		m.notice = dimStyle.Render("No document in this session")
		return nil
	}
	if m.opener == nil {
		m.notice = dimStyle.Render("Open " + string(doc.Handle))
		return nil
	}

	opener, dir, target := m.opener, m.saveDir, *doc
	return func() tea.Msg {
		blob, err := opener.OpenHandle(target.Handle)
		if err != nil {
			return savedMsg{err: err}
		}
		name := target.FileName
		if name == "" {
			name = "report." + string(target.DocumentKind)
		}
		path := filepath.Join(dir, filepath.Base(name))
		if err := os.WriteFile(path, blob.Data, 0o644); err != nil {
			return savedMsg{err: err}
		}
		return savedMsg{path: path}
	}
}

func (m *chatModel) hydrateSessions() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		n, err := ctrl.Hydrate(ctx)
		return hydratedMsg{inserted: n, err: err}
	}
}

func (m chatModel) anyAwaiting() bool {
	for _, s := range m.ctrl.Store().Sessions() {
		if m.ctrl.IsAwaiting(s.ID) {
			return true
		}
	}
	return false
}

// resize handles window size changes
func (m *chatModel) resize(width, height int) {
	m.width = width
	m.height = height

	contentHeight := height - headerHeightReserved - footerHeightReserved
	if contentHeight < minContentHeight {
		contentHeight = minContentHeight
	}

	mainWidth := m.mainWidth()
	m.contentView.Width = mainWidth
	m.contentView.Height = contentHeight
	m.input.Width = mainWidth - 3

	// Reapply wrapping when window size changes
	m.refreshContent()
}

func (m chatModel) mainWidth() int {
	w := m.width - sidebarWidth - 2
	if w < 20 {
		w = 20
	}
	return w
}

// refreshContent re-renders the active session into the viewport
func (m *chatModel) refreshContent() {
	width := m.mainWidth() - 2
	var b strings.Builder

	messages := m.ctrl.Store().ActiveMessages()
	if len(messages) == 0 {
		b.WriteString(dimStyle.Render("Ask a question to generate a report."))
	}
	for _, msg := range messages {
		if msg.Sender == entity.SenderUser {
			b.WriteString(userStyle.Render("You"))
		} else {
			b.WriteString(accentStyle.Render("Assistant"))
		}
		b.WriteString("\n")
		b.WriteString(m.renderer.Render(msg, width))
		b.WriteString("\n\n")
	}

	if m.ctrl.IsAwaiting(m.ctrl.Store().ActiveSessionID()) {
		b.WriteString(accentStyle.Render("Assistant"))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("Generating report..."))
	}

	m.contentView.SetContent(strings.TrimRight(b.String(), "\n"))
	m.contentView.GotoBottom()
}

func (m chatModel) renderSidebar() string {
	var lines []string
	lines = append(lines, boldStyle.Render("Sessions"), "")

	active := m.ctrl.Store().ActiveSessionID()
	for _, s := range m.ctrl.Store().Sessions() {
		marker := "  "
		style := dimStyle
		if s.ID == active {
			marker = "▸ "
			style = accentStyle
		}

		suffix := ""
		switch {
		case m.ctrl.IsAwaiting(s.ID):
			suffix = " " + m.spinner.View()
		case m.unread[s.ID]:
			suffix = " " + accentStyle.Render("•")
		}

		name := ui.Truncate(s.DisplayName, sidebarWidth-5)
		lines = append(lines, marker+style.Render(name)+suffix)
	}
	if len(lines) == 2 {
		lines = append(lines, dimStyle.Render("Ctrl+N to start"))
	}

	return sidebarStyle.
		Width(sidebarWidth).
		Height(m.height - 1).
		Render(strings.Join(lines, "\n"))
}

// View renders the UI (Bubble Tea interface)
func (m chatModel) View() string {
	// Top status bar
	title := "No session"
	if s, ok := m.ctrl.Store().ActiveSession(); ok {
		title = s.DisplayName
	}
	status := boldStyle.Render(title) + dimStyle.Render(" • format ") + accentStyle.Render(string(m.format))

	// Input area
	activeID := m.ctrl.Store().ActiveSessionID()
	var inputView string
	switch {
	case activeID == "":
		inputView = dimStyle.Render("> Create a session with Ctrl+N")
	case m.ctrl.IsAwaiting(activeID):
		inputView = dimStyle.Render("> ") + m.spinner.View() + dimStyle.Render(" waiting for report...")
	default:
		inputView = promptStyle.Render("> ") + m.input.View()
	}

	help := dimStyle.Render("Enter send • Tab format • Ctrl+N new • Ctrl+X delete • Ctrl+↑↓ switch • Ctrl+S save • Esc quit")

	parts := []string{status, "", m.contentView.View(), "", inputView}
	if m.notice != "" {
		parts = append(parts, m.notice)
	}
	parts = append(parts, help)

	main := lipgloss.JoinVertical(lipgloss.Left, parts...)
	return lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), " ", main)
}

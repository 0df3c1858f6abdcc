// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"log"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/medchat-tui/internal/model"
	"github.com/jeranaias/medchat-tui/internal/panel"
	"github.com/jeranaias/medchat-tui/internal/render"
	"github.com/jeranaias/medchat-tui/internal/reveal"
	"github.com/jeranaias/medchat-tui/internal/store"
	"github.com/jeranaias/medchat-tui/internal/ui/components"
	"github.com/jeranaias/medchat-tui/internal/ui/styles"
)

// =============================================================================
// FOCUS
// =============================================================================

// Focus is the pane receiving navigation keys.
type Focus int

const (
	FocusInput Focus = iota
	FocusSidebar
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Options configures a new Model.
type Options struct {
	// Initial seeds the sidebar before the first refresh completes.
	Initial []model.Conversation

	// RevealInterval is the delay between reveal ticks.
	RevealInterval time.Duration

	// SidebarOpen shows the conversation list at startup.
	SidebarOpen bool

	// Now overrides the clock. Tests use it for stable temp ids and dates.
	Now func() time.Time
}

// Model is the Bubble Tea model for the chat client.
type Model struct {
	theme   *styles.Theme
	deps    Deps
	session *store.Session
	keys    KeyMap
	now     func() time.Time

	width  int
	height int

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  components.Spinner

	focus         Focus
	sidebarOpen   bool
	sidebarConfig bool // ui.sidebar_open as last loaded
	sidebarCursor int

	// selected is the assistant message targeted by feedback and panels.
	selected model.ID

	feedback      *components.FeedbackForm
	graph         *panel.GraphPanel
	related       *panel.RelatedPanel
	graphRenderer *components.GraphRenderer

	revealInterval time.Duration

	// rendered is the session revision last written to the viewport.
	rendered uint64

	quitting  bool
	loggedOut bool
}

// New creates a chat model.
func New(theme *styles.Theme, deps Deps, opts Options) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "의학 연구 관련 질문을 입력하세요..."
	ti.CharLimit = 4000
	ti.Focus()

	vp := viewport.New(80, 20)
	vp.SetContent("")

	interval := opts.RevealInterval
	if interval <= 0 {
		interval = reveal.DefaultInterval
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	s := store.New()
	if len(opts.Initial) > 0 {
		s.Hydrate(opts.Initial)
	}

	m := Model{
		theme:          theme,
		deps:           deps,
		session:        s,
		keys:           DefaultKeyMap(),
		now:            now,
		viewport:       vp,
		input:          ti,
		spinner:        components.NewSpinner(render.LoadingText),
		sidebarOpen:    opts.SidebarOpen,
		sidebarConfig:  opts.SidebarOpen,
		graph:          &panel.GraphPanel{},
		related:        &panel.RelatedPanel{},
		graphRenderer:  &components.GraphRenderer{},
		revealInterval: interval,
	}
	m.syncSidebarCursor()
	return m
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the first conversation list refresh.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, FetchConversationsCmd(m.deps, true))
}

// Update handles a message and returns the next model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleResize(msg)

	case tea.KeyMsg:
		m, cmd = m.handleKey(msg)

	case ConversationsMsg:
		cmd = m.handleConversations(msg)

	case MessagesMsg:
		m.session.FinishLoad(msg.ConversationID, msg.Messages, msg.Err)
		m.ensureSelection()

	case CreatedMsg:
		cmd = m.handleCreated(msg)

	case DeletedMsg:
		if err := m.session.FinishDelete(msg.ID, msg.Err); err == nil {
			cmd = FetchConversationsCmd(m.deps, false)
		}

	case SentMsg:
		cmd = m.handleSent(msg)

	case reveal.TickMsg:
		ok, finished := m.session.Reveal.Advance(msg.HandleID)
		if ok && !finished {
			cmd = reveal.Tick(msg.HandleID, m.revealInterval)
		}
		m.session.Dirty++

	case FeedbackMsg:
		if msg.Err != nil {
			m.session.FailFeedback(msg.MessageID, msg.Err)
		} else {
			m.session.ApplyFeedback(msg.MessageID, msg.Patch)
		}

	case GraphMsg:
		if m.graph.Finish(msg.MessageID, msg.Graph, msg.Err) {
			m.session.Dirty++
		}

	case RelatedMsg:
		if m.related.Finish(msg.MessageID, msg.Questions, msg.Err) {
			m.session.Dirty++
		}

	case ConfigReloadedMsg:
		m.applyConfig(msg)

	case tea.MouseMsg:
		if !m.session.Dialog.Open() {
			m.viewport, cmd = m.viewport.Update(msg)
		}

	case LoggedOutMsg:
		if msg.Err != nil {
			log.Printf("LOGOUT_FAILED | error=%v", msg.Err)
		}
		m.quitting = true
		m.loggedOut = true
		return m, tea.Quit

	default:
		m, cmd = m.forward(msg)
	}

	cmd = tea.Batch(cmd, m.syncSpinner())
	m.refresh()
	return m, cmd
}

// View renders the screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.render()
}

// =============================================================================
// RESULT HANDLERS
// =============================================================================

func (m *Model) handleConversations(msg ConversationsMsg) tea.Cmd {
	if msg.Err != nil {
		m.session.FailConversations(msg.Err)
		return nil
	}
	cmds := []tea.Cmd{SaveSnapshotCmd(m.deps, msg.List)}
	if id, ok := m.session.ApplyConversations(msg.List, msg.Preserve); ok {
		cmds = append(cmds, m.loadMessages(id, false))
	}
	m.syncSidebarCursor()
	m.ensureSelection()
	return tea.Batch(cmds...)
}

func (m *Model) handleCreated(msg CreatedMsg) tea.Cmd {
	ticket, err := m.session.FinishCreate(msg.Conversation, msg.Err, m.now())
	if err != nil {
		return nil
	}
	m.syncSidebarCursor()
	m.selected = ""
	cmds := []tea.Cmd{FetchConversationsCmd(m.deps, true)}
	if ticket != nil {
		cmds = append(cmds, SendCmd(m.deps, ticket))
	}
	return tea.Batch(cmds...)
}

func (m *Model) handleSent(msg SentMsg) tea.Cmd {
	var (
		msgs    []*model.Message
		warning string
	)
	if msg.Result != nil {
		msgs, warning = msg.Result.Messages, msg.Result.Warning
	}
	handles := m.session.FinishSend(msg.Ticket, msgs, warning, msg.Err)
	if msg.Err != nil {
		return nil
	}

	cmds := make([]tea.Cmd, 0, len(handles)+1)
	for _, h := range handles {
		cmds = append(cmds, reveal.Tick(h.ID(), m.revealInterval))
	}
	if msg.Ticket != nil {
		if current, _ := m.session.Current(); current == msg.Ticket.ConversationID {
			m.selected = lastAssistant(m.session.CurrentMessages())
		}
	}
	cmds = append(cmds, FetchConversationsCmd(m.deps, true))
	return tea.Batch(cmds...)
}

func (m *Model) applyConfig(msg ConfigReloadedMsg) {
	if msg.Config == nil {
		return
	}
	if d := msg.Config.UI.RevealInterval(); d > 0 {
		m.revealInterval = d
	}
	if msg.Config.UI.Theme != "" && msg.Config.UI.Theme != m.theme.Name {
		m.theme = styles.NewThemeNamed(msg.Config.UI.Theme)
	}
	// Only a change of the setting moves the sidebar; a ctrl+b toggle
	// survives unrelated edits.
	if open := msg.Config.UI.SidebarOpen; open != m.sidebarConfig {
		m.sidebarConfig = open
		m.sidebarOpen = open
		if !m.sidebarOpen && m.focus == FocusSidebar {
			m.focusInput()
		}
	}
	m.layout()
}

// =============================================================================
// STORE OPERATIONS
// =============================================================================

// loadMessages issues a fetch for id unless the cache can be used.
func (m *Model) loadMessages(id model.ID, force bool) tea.Cmd {
	if !m.session.BeginLoad(id, force) {
		return nil
	}
	return FetchMessagesCmd(m.deps, id)
}

// openConversation makes id current and loads it if needed.
func (m *Model) openConversation(id model.ID) tea.Cmd {
	needsFetch := m.session.Select(id)
	m.selected = ""
	m.ensureSelection()
	if needsFetch {
		return m.loadMessages(id, false)
	}
	return nil
}

// send submits the compose input.
func (m *Model) send() tea.Cmd {
	content := m.input.Value()
	ticket, action := m.session.BeginSend(content, m.now())
	switch action {
	case store.SendNeedsConversation:
		m.input.Reset()
		return tea.Batch(CreateConversationCmd(m.deps), AppendHistoryCmd(m.deps, content))
	case store.SendReady:
		m.input.Reset()
		return tea.Batch(SendCmd(m.deps, ticket), AppendHistoryCmd(m.deps, content))
	}
	return nil
}

// =============================================================================
// SELECTION
// =============================================================================

func (m *Model) syncSidebarCursor() {
	current, ok := m.session.Current()
	if ok {
		if i := model.IndexOf(m.session.Conversations, current); i >= 0 {
			m.sidebarCursor = i
			return
		}
	}
	if m.sidebarCursor >= len(m.session.Conversations) {
		m.sidebarCursor = len(m.session.Conversations) - 1
	}
	if m.sidebarCursor < 0 {
		m.sidebarCursor = 0
	}
}

// ensureSelection keeps the selected answer inside the current conversation,
// defaulting to the newest answer.
func (m *Model) ensureSelection() {
	msgs := m.session.CurrentMessages()
	for _, msg := range msgs {
		if msg.ID == m.selected && msg.IsAssistant() {
			return
		}
	}
	m.selected = lastAssistant(msgs)
}

// moveSelection selects the previous (delta < 0) or next answer.
func (m *Model) moveSelection(delta int) {
	var answers []model.ID
	for _, msg := range m.session.CurrentMessages() {
		if msg.IsAssistant() {
			answers = append(answers, msg.ID)
		}
	}
	if len(answers) == 0 {
		m.selected = ""
		return
	}
	idx := len(answers) - 1
	for i, id := range answers {
		if id == m.selected {
			idx = i
			break
		}
	}
	idx += delta
	if idx < 0 {
		idx = 0
	}
	if idx >= len(answers) {
		idx = len(answers) - 1
	}
	m.selected = answers[idx]
	m.session.Dirty++
}

// selectedMessage returns the targeted answer, if it is still cached.
func (m *Model) selectedMessage() *model.Message {
	if m.selected.IsZero() {
		return nil
	}
	msg, _ := m.session.FindMessage(m.selected)
	if msg == nil || !msg.IsAssistant() {
		return nil
	}
	return msg
}

func lastAssistant(msgs []*model.Message) model.ID {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].IsAssistant() {
			return msgs[i].ID
		}
	}
	return ""
}

// =============================================================================
// HELPERS
// =============================================================================

func (m *Model) focusInput() {
	m.focus = FocusInput
	m.input.Focus()
}

func (m *Model) focusSidebar() {
	m.focus = FocusSidebar
	m.input.Blur()
	m.syncSidebarCursor()
}

// busy reports whether anything is waiting on the network.
func (m *Model) busy() bool {
	return m.session.Sending || m.session.LoadingMessages ||
		m.graph.Phase() == panel.PhaseLoading || m.related.Phase() == panel.PhaseLoading
}

func (m *Model) syncSpinner() tea.Cmd {
	if !m.busy() {
		m.spinner.Stop()
		return nil
	}
	m.spinner.SetMessage(m.spinnerMessage())
	m.spinner.SetShowTimer(m.session.Sending)
	return m.spinner.Start()
}

// spinnerMessage names what the spinner is waiting for. An open panel
// takes precedence since it covers the input line.
func (m *Model) spinnerMessage() string {
	switch {
	case m.session.Dialog.Kind == store.DialogGraph && m.graph.Phase() == panel.PhaseLoading:
		return panel.GraphLoadingText
	case m.session.Dialog.Kind == store.DialogRelated && m.related.Phase() == panel.PhaseLoading:
		return panel.RelatedLoadingText
	case m.session.Sending:
		return render.PendingText
	default:
		return render.LoadingText
	}
}

// forward passes messages the controller does not own to the focused
// component.
func (m Model) forward(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.spinner, cmd = m.spinner.Update(msg)
	cmds = append(cmds, cmd)

	if m.session.Dialog.Kind == store.DialogFeedback && m.feedback != nil {
		cmds = append(cmds, m.feedback.Update(msg))
	} else {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Session returns the underlying session.
func (m Model) Session() *store.Session { return m.session }

// Input returns the compose input value.
func (m Model) Input() string { return m.input.Value() }

// Selected returns the targeted answer id.
func (m Model) Selected() model.ID { return m.selected }

// FocusedPane returns the focused pane.
func (m Model) FocusedPane() Focus { return m.focus }

// SidebarOpen reports whether the conversation list is shown.
func (m Model) SidebarOpen() bool { return m.sidebarOpen }

// Graph returns the concept graph panel.
func (m Model) Graph() *panel.GraphPanel { return m.graph }

// Related returns the related questions panel.
func (m Model) Related() *panel.RelatedPanel { return m.related }

// FeedbackForm returns the open feedback form, or nil.
func (m Model) FeedbackForm() *components.FeedbackForm { return m.feedback }

// RevealInterval returns the current reveal tick interval.
func (m Model) RevealInterval() time.Duration { return m.revealInterval }

// LoggedOut reports whether the session ended with a logout.
func (m Model) LoggedOut() bool { return m.loggedOut }

// Package tui is the terminal chat client. It is the display surface
// for the typing queue: agent responses reveal character by character
// the same way the web client renders them.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/modelmayhem/mayhem/internal/core"
)

var (
	// Colors for chat
	chatPurple    = lipgloss.Color("#A855F7")
	chatGreen     = lipgloss.Color("#22C55E")
	chatRed       = lipgloss.Color("#EF4444")
	chatGray      = lipgloss.Color("#6B7280")
	chatWhite     = lipgloss.Color("#F9FAFB")

	// Styles for chat
	chatTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(chatPurple).
			MarginBottom(1)

	chatUserMsgStyle = lipgloss.NewStyle().
				Foreground(chatWhite).
				Background(chatPurple).
				Padding(0, 1).
				MarginTop(1)

	chatUserLabelStyle = lipgloss.NewStyle().
				Foreground(chatPurple).
				Bold(true)

	chatAgentLabelStyle = lipgloss.NewStyle().
				Foreground(chatGreen).
				Bold(true)

	chatAgentMsgStyle = lipgloss.NewStyle().
				Foreground(chatWhite).
				MarginTop(1)

	chatErrorMsgStyle = lipgloss.NewStyle().
				Foreground(chatRed).
				Bold(true)

	chatInputBoxStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(chatPurple).
				Padding(0, 1)

	chatInputBoxFocusedStyle = lipgloss.NewStyle().
					Border(lipgloss.RoundedBorder()).
					BorderForeground(chatGreen).
					Padding(0, 1)

	chatStatusStyle = lipgloss.NewStyle().
			Foreground(chatGray).
			MarginTop(1)

	chatHelpStyle = lipgloss.NewStyle().
			Foreground(chatGray)
)

// Event is what the engine pushes to the chat UI.
type Event struct {
	// Kind is "typing", "complete", "pass_done" or "error".
	Kind      string
	AgentName string
	Text      string
	IsTyping  bool
}

// entry is a settled transcript line.
type entry struct {
	Speaker string // empty for user messages
	Content string
	IsError bool
}

// ChatModel is the bubbletea model for the chat UI.
type ChatModel struct {
	// UI components
	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model

	// State
	mode     core.Mode
	entries  []entry
	active   *Event // message currently being revealed
	thinking bool
	width    int
	height   int
	ready    bool

	// Channel for sending user input
	inputChan chan<- string
	// Channel for receiving engine events
	eventChan <-chan Event
	// Context for cancellation
	ctx    context.Context
	cancel context.CancelFunc
}

// Messages
type engineEventMsg Event
type chatDoneMsg struct{}

// NewChatModel creates a new chat TUI model.
func NewChatModel(mode core.Mode, inputChan chan<- string, eventChan <-chan Event) ChatModel {
	ta := textarea.New()
	ta.Placeholder = "Type your message..."
	ta.Focus()
	ta.CharLimit = 4000
	ta.SetWidth(80)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false) // Enter sends message

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(chatPurple)

	vp := viewport.New(80, 20)

	ctx, cancel := context.WithCancel(context.Background())

	return ChatModel{
		textarea:  ta,
		viewport:  vp,
		spinner:   sp,
		mode:      mode,
		inputChan: inputChan,
		eventChan: eventChan,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (m ChatModel) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.waitForEvent(),
	)
}

func (m ChatModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.ctx.Done():
			return chatDoneMsg{}
		case ev, ok := <-m.eventChan:
			if !ok {
				return chatDoneMsg{}
			}
			return engineEventMsg(ev)
		}
	}
}

func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancel()
			return m, tea.Quit

		case tea.KeyEnter:
			if !m.thinking {
				input := strings.TrimSpace(m.textarea.Value())
				if input != "" {
					m.entries = append(m.entries, entry{Content: input})
					m.textarea.Reset()
					m.thinking = true
					m.updateViewport()

					go func() {
						select {
						case m.inputChan <- input:
						case <-m.ctx.Done():
						}
					}()
				}
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 3
		inputHeight := 5
		helpHeight := 2
		viewportHeight := m.height - headerHeight - inputHeight - helpHeight - 2

		if !m.ready {
			m.viewport = viewport.New(m.width-2, viewportHeight)
			m.viewport.YPosition = headerHeight
			m.ready = true
		} else {
			m.viewport.Width = m.width - 2
			m.viewport.Height = viewportHeight
		}

		m.textarea.SetWidth(m.width - 4)
		m.updateViewport()

	case engineEventMsg:
		ev := Event(msg)
		switch ev.Kind {
		case "typing":
			m.active = &ev
		case "complete":
			m.active = nil
			m.entries = append(m.entries, entry{Speaker: ev.AgentName, Content: ev.Text})
		case "pass_done":
			m.active = nil
			m.thinking = false
		case "error":
			m.active = nil
			m.thinking = false
			m.entries = append(m.entries, entry{Content: ev.Text, IsError: true})
		}
		m.updateViewport()
		cmds = append(cmds, m.waitForEvent())

	case chatDoneMsg:
		m.thinking = false

	case spinner.TickMsg:
		if m.thinking {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	// Update textarea
	if !m.thinking {
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *ChatModel) updateViewport() {
	var content strings.Builder

	for _, e := range m.entries {
		switch {
		case e.IsError:
			content.WriteString(chatErrorMsgStyle.Render("Error: "+e.Content) + "\n\n")
		case e.Speaker == "":
			content.WriteString(chatUserLabelStyle.Render("You") + "\n")
			content.WriteString(chatUserMsgStyle.Render(e.Content) + "\n\n")
		default:
			content.WriteString(chatAgentLabelStyle.Render(e.Speaker) + "\n")
			content.WriteString(chatAgentMsgStyle.Render(e.Content) + "\n\n")
		}
	}

	if m.active != nil {
		content.WriteString(chatAgentLabelStyle.Render(m.active.AgentName) + "\n")
		text := m.active.Text
		if m.active.IsTyping {
			text += "▌"
		}
		content.WriteString(chatAgentMsgStyle.Render(text) + "\n\n")
	}

	m.viewport.SetContent(content.String())
	m.viewport.GotoBottom()
}

func (m ChatModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder

	// Header
	header := chatTitleStyle.Render("mayhem") + "  " + chatStatusStyle.Render("mode: "+string(m.mode))
	b.WriteString(header + "\n")
	b.WriteString(strings.Repeat("─", m.width-2) + "\n")

	// Messages viewport
	b.WriteString(m.viewport.View() + "\n")

	// Thinking indicator
	if m.thinking && m.active == nil {
		b.WriteString(m.spinner.View() + " " + chatStatusStyle.Render("Thinking...") + "\n")
	} else {
		b.WriteString("\n")
	}

	// Input area
	b.WriteString(strings.Repeat("─", m.width-2) + "\n")

	inputStyle := chatInputBoxStyle
	if !m.thinking {
		inputStyle = chatInputBoxFocusedStyle
	}
	b.WriteString(inputStyle.Render(m.textarea.View()) + "\n")

	// Help
	help := chatHelpStyle.Render("Enter to send • Esc to quit")
	b.WriteString(help)

	return b.String()
}

// RunChat starts the chat TUI.
func RunChat(mode core.Mode, inputChan chan<- string, eventChan <-chan Event) error {
	model := NewChatModel(mode, inputChan, eventChan)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

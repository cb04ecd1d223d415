package main

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/companion-engine/pkg/chat"
	"github.com/jwebster45206/companion-engine/pkg/session"
)

const PlaceHolderText = "Type your message here..."

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *http.Client
	session      *session.Session
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool

	// World selection state
	showWorldModal bool
	worlds         []string
	selectedWorld  int
	loadingWorlds  bool

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type turnResponseMsg struct {
	response *chat.TurnResponse
	err      error
}

type sessionMsg struct {
	session *session.Session
	err     error
}

type worldsLoadedMsg struct {
	worlds []string
	err    error
}

type sessionCreatedMsg struct {
	session *session.Session
	intro   *chat.TurnResponse
	err     error
}

type progressTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	companionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 1000
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:         cfg,
		client:         client,
		textarea:       ta,
		chatViewport:   chatVp,
		metaViewport:   metaVp,
		ready:          false,
		showWorldModal: true,
		loadingWorlds:  true,
		selectedWorld:  0,
	}
}

func (m *ConsoleUI) companionName() string {
	if m.session != nil && m.session.Game.CompanionName != "" {
		return m.session.Game.CompanionName
	}
	return "Companion"
}

func writeMetadata(s *session.Session) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("GAME STATE") + "\n\n")

	content.WriteString("World:\n")
	content.WriteString(s.Meta.WorldID + "\n\n")

	content.WriteString("Companion:\n")
	content.WriteString(s.Game.CompanionName + "\n\n")

	content.WriteString("Location:\n")
	content.WriteString(s.Game.Location + "\n\n")

	content.WriteString(fmt.Sprintf("Time: %s\n", s.Game.TimeOfDay))
	content.WriteString(fmt.Sprintf("Gold: %d\n", s.Game.Gold))
	content.WriteString(fmt.Sprintf("HP: %d\n", s.Game.HP))
	content.WriteString(fmt.Sprintf("Turn: %d\n\n", s.Meta.TurnCount))

	if len(s.Game.Affinity) > 0 {
		content.WriteString("Affinity:\n")
		names := make([]string, 0, len(s.Game.Affinity))
		for name := range s.Game.Affinity {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			content.WriteString(fmt.Sprintf("• %s: %d\n", name, s.Game.Affinity[name]))
		}
		content.WriteString("\n")
	}

	if len(s.Game.Inventory) > 0 {
		content.WriteString("Inventory:\n")
		for _, item := range s.Game.Inventory {
			content.WriteString("• " + item + "\n")
		}
	} else {
		content.WriteString("Inventory:\nEmpty\n")
	}

	content.WriteString("\n")
	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• /help: Help\n")
	content.WriteString("• /copy: Copy reply\n")

	return content.String()
}

// writeChatContent rebuilds the chat panel from session history for the
// current viewport width
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6 // Account for left(3) + right(3) padding

	var content strings.Builder
	content.WriteString(titleStyle.Render("COMPANION ENGINE") + "\n\n")
	content.WriteString("Type your messages below to play.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(chatWidth-6, 1))) + "\n\n")

	if m.session != nil {
		for _, msg := range m.session.History {
			switch msg.Role {
			case chat.RoleModel:
				content.WriteString(m.formatCompanionResponse(msg.Content, chatWidth) + "\n\n")
			case chat.RoleUser:
				content.WriteString(userStyle.Render("You: ") + wordwrap.String(msg.Content, chatWidth-6) + "\n\n")
			}
		}
	}

	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m ConsoleUI) Init() tea.Cmd {
	if m.showWorldModal {
		return m.loadWorlds()
	}
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle world modal first
	if m.showWorldModal {
		return m.updateWorldModal(msg)
	}

	// Handle quit modal second
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.textarea, tiCmd = m.textarea.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(tiCmd, vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		chatWidth := int(float64(m.width)*0.75) - 4
		metaWidth := m.width - chatWidth - 6

		m.chatViewport.Width = chatWidth - 2
		m.chatViewport.Height = m.height - 7
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4
		m.textarea.SetWidth(chatWidth - 4)

		m.ready = true
		m.writeChatContent()
		if m.session != nil {
			m.metaViewport.SetContent(writeMetadata(m.session))
		}

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}

			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			m.textarea.Reset()
			m.loading = true
			m.progressTick = 0

			// Show the player's message immediately; the server appends
			// it to history on its side too.
			m.session.History = append(m.session.History, chat.Message{
				Role:    chat.RoleUser,
				Content: input,
			})
			m.writeChatContent()

			return m, tea.Batch(m.sendTurnMessage(input), progressTick())
		}

	case turnResponseMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.writeChatContent()
			currentContent := m.chatViewport.View()
			errorMsg := errorStyle.Render("Error: "+msg.err.Error()) + "\n\n"
			m.chatViewport.SetContent(currentContent + errorMsg)
		} else {
			m.session.History = append(m.session.History, chat.Message{
				Role:    chat.RoleModel,
				Content: msg.response.Narrative,
			})
			m.writeChatContent()
		}
		m.chatViewport.GotoBottom()
		return m, m.refreshSession()

	case sessionMsg:
		if msg.err == nil && msg.session != nil {
			m.session = msg.session
			m.metaViewport.SetContent(writeMetadata(m.session))
			m.writeChatContent()
		}

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeChatContent()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func (m *ConsoleUI) formatCompanionResponse(response string, width int) string {
	// Check if response already has a speaker prefix
	hasPrefix := false
	if idx := strings.Index(response, ":"); idx > 0 && idx <= 20 {
		speaker := response[:idx]
		if len(strings.Fields(speaker)) <= 2 {
			hasPrefix = true
		}
	}

	wrapWidth := width
	if !hasPrefix {
		wrapWidth = width - len(m.companionName()+": ")
	}

	wrappedResponse := wordwrap.String(response, wrapWidth)
	lines := strings.Split(wrappedResponse, "\n")
	var formattedLines []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			formattedLines = append(formattedLines, "")
			continue
		}

		if idx := strings.Index(trimmed, ":"); idx > 0 && idx <= 20 {
			speaker := trimmed[:idx]
			rest := trimmed[idx+1:]
			if len(strings.Fields(speaker)) <= 2 {
				formattedLines = append(formattedLines, speakerStyle.Render(speaker+":")+rest)
				continue
			}
		}

		formattedLines = append(formattedLines, line)
	}

	result := strings.Join(formattedLines, "\n")
	if !hasPrefix {
		result = companionStyle.Render(m.companionName()+": ") + result
	}

	return result
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	cmd := strings.ToLower(strings.TrimSpace(input))

	switch cmd {
	case "/help":
		helpText := `
Commands:
• /help - Show this help
• /copy - Copy the last reply to the clipboard
• Ctrl+C - Quit game

How to play:
• Type your actions and press Enter
• Your companion responds in character
• Be descriptive for better responses
`
		currentContent := m.chatViewport.View()
		m.chatViewport.SetContent(currentContent + titleStyle.Render("Help:") + helpText + "\n")
		m.chatViewport.GotoBottom()

	case "/copy":
		last := m.session.LastModelMessage()
		var note string
		if last == "" {
			note = errorStyle.Render("Nothing to copy yet.")
		} else if err := clipboard.WriteAll(last); err != nil {
			note = errorStyle.Render("Copy failed: " + err.Error())
		} else {
			note = loadingStyle.Render("Copied last reply to clipboard.")
		}
		currentContent := m.chatViewport.View()
		m.chatViewport.SetContent(currentContent + note + "\n\n")
		m.chatViewport.GotoBottom()
	}

	m.textarea.Reset()
	return m, nil
}

func (m ConsoleUI) sendTurnMessage(message string) tea.Cmd {
	return func() tea.Msg {
		resp, err := sendTurn(m.client, m.config.APIBaseURL, m.config.Slot, message)
		return turnResponseMsg{resp, err}
	}
}

func (m ConsoleUI) refreshSession() tea.Cmd {
	return func() tea.Msg {
		s, err := loadSession(m.client, m.config.APIBaseURL, m.config.Slot)
		return sessionMsg{s, err}
	}
}

func (m ConsoleUI) loadWorlds() tea.Cmd {
	return func() tea.Msg {
		worlds, err := listWorlds(m.client, m.config.APIBaseURL)
		return worldsLoadedMsg{worlds, err}
	}
}

func (m ConsoleUI) createSessionFromWorld(worldID string) tea.Cmd {
	return func() tea.Msg {
		s, intro, err := createSession(m.client, m.config.APIBaseURL, m.config.Slot, worldID)
		return sessionCreatedMsg{s, intro, err}
	}
}

func (m ConsoleUI) updateWorldModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case worldsLoadedMsg:
		m.loadingWorlds = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.worlds = msg.worlds
		}

	case sessionCreatedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.session = msg.session
			m.showWorldModal = false
			if m.width > 0 && m.height > 0 {
				chatWidth := int(float64(m.width)*0.75) - 4
				metaWidth := m.width - chatWidth - 6
				m.chatViewport.Width = chatWidth - 2
				m.chatViewport.Height = m.height - 7
				m.metaViewport.Width = metaWidth - 2
				m.metaViewport.Height = m.height - 4
				m.textarea.SetWidth(chatWidth - 4)
			}
			m.writeChatContent()
			m.metaViewport.SetContent(writeMetadata(m.session))
			m.textarea.Focus()
			m.ready = true
		}
		return m, textarea.Blink

	case tea.KeyMsg:
		if m.loadingWorlds {
			if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
				return m, tea.Quit
			}
			return m, nil
		}

		if m.err != nil {
			if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
				m.showQuitModal = true
				return m, nil
			}
			return m, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyUp:
			if m.selectedWorld > 0 {
				m.selectedWorld--
			}
		case tea.KeyDown:
			if m.selectedWorld < len(m.worlds)-1 {
				m.selectedWorld++
			}
		case tea.KeyEnter:
			if len(m.worlds) > 0 {
				m.loading = true
				return m, m.createSessionFromWorld(m.worlds[m.selectedWorld])
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				if !m.showWorldModal {
					m.textarea.Focus()
					return m, textarea.Blink
				}
				return m, nil
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Progress is autosaved after every turn.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderWorldModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	if m.loadingWorlds {
		content.WriteString(modalTitleStyle.Render("Loading Worlds..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Please wait while we fetch available worlds..."))
	} else if m.err != nil {
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(fmt.Sprintf("Failed to load worlds: %v", m.err)))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	} else if m.loading {
		content.WriteString(modalTitleStyle.Render("Starting Game..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Your companion is getting ready..."))
	} else {
		content.WriteString(modalTitleStyle.Render("Select a World"))
		content.WriteString("\n\n")

		for i, w := range m.worlds {
			if i == m.selectedWorld {
				content.WriteString(modalSelectedItemStyle.Render(fmt.Sprintf("▶ %s", w)))
			} else {
				content.WriteString(modalItemStyle.Render(fmt.Sprintf("  %s", w)))
			}
			content.WriteString("\n")
		}

		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showWorldModal {
		return m.renderWorldModal()
	}

	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 1))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.chatViewport.Width - 6
	if usable <= 0 {
		usable = 30 // fallback before sizing
	}

	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓")
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

// progressTick creates a command that sends a progress tick message
func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}

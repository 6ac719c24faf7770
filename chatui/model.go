// Copyright 2026 The Bloc Authors
// SPDX-License-Identifier: Apache-2.0

// Package chatui is the bubbletea terminal UI for a single channel: a
// scrollback viewport over the message cache and an input line for
// sending.
//
// The model reads from the messages Repository and never mutates the
// cache directly; live events land in the cache via the reconciler,
// and the program is nudged with a Refresh message to re-render.
package chatui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/alexispurslane/bloc/lib/ref"
	"github.com/alexispurslane/bloc/messages"
	"github.com/alexispurslane/bloc/revolt"
)

// historyPageSize is how many messages each history fetch requests.
const historyPageSize = 50

// Refresh tells the model to re-read the message cache. The main
// program sends one for every live event the reconciler applies.
type Refresh struct{}

// pageLoadedMsg carries the result of a history fetch.
type pageLoadedMsg struct {
	list []revolt.Message
	err  error
}

// sentMsg carries the result of a send.
type sentMsg struct {
	err error
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true)

	authorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	systemStyle = lipgloss.NewStyle().
			Faint(true).
			Italic(true)

	editedStyle = lipgloss.NewStyle().
			Faint(true)

	reactionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	statusStyle = lipgloss.NewStyle().
			Faint(true)
)

// Model is the bubbletea model for one channel.
type Model struct {
	repository *messages.Repository
	channel    ref.ChannelID
	selfID     ref.UserID

	viewport viewport.Model
	input    textinput.Model

	list    []revolt.Message
	status  string
	loading bool
	ready   bool
}

// NewModel creates a Model for the given channel.
func NewModel(repository *messages.Repository, channel ref.ChannelID, selfID ref.UserID) Model {
	input := textinput.New()
	input.Placeholder = "message " + channel.String()
	input.Focus()
	input.CharLimit = 2000

	return Model{
		repository: repository,
		channel:    channel,
		selfID:     selfID,
		input:      input,
		status:     "loading history...",
		loading:    true,
	}
}

// Init fetches the initial history page.
func (m Model) Init() tea.Cmd {
	return m.fetchInitial()
}

func (m Model) fetchInitial() tea.Cmd {
	return func() tea.Msg {
		list, err := m.repository.FetchChannelMessages(context.Background(), m.channel, revolt.MessageQuery{
			Limit: historyPageSize,
			Sort:  revolt.SortLatest,
		})
		return pageLoadedMsg{list: list, err: err}
	}
}

// fetchOlder pages back from the oldest cached message.
func (m Model) fetchOlder() tea.Cmd {
	if len(m.list) == 0 || m.repository.Store().AtBeginning(m.channel) {
		return nil
	}
	oldest := m.list[len(m.list)-1].ID
	return func() tea.Msg {
		list, err := m.repository.FetchChannelMessages(context.Background(), m.channel, revolt.MessageQuery{
			Limit:  historyPageSize,
			Before: oldest,
			Sort:   revolt.SortLatest,
		})
		return pageLoadedMsg{list: list, err: err}
	}
}

func (m Model) send(content string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.repository.SendMessage(context.Background(), m.channel, revolt.SendMessageRequest{
			Content: content,
		})
		return sentMsg{err: err}
	}
}

// Update handles bubbletea messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		headerHeight := lipgloss.Height(m.headerView())
		inputHeight := 1
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-inputHeight-1)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - inputHeight - 1
		}
		m.input.Width = msg.Width - 3
		m.viewport.SetContent(m.renderMessages())
		m.viewport.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			content := strings.TrimSpace(m.input.Value())
			if content == "" {
				return m, nil
			}
			m.input.Reset()
			m.status = "sending..."
			return m, m.send(content)
		case tea.KeyPgUp:
			if cmd := m.fetchOlder(); cmd != nil {
				m.loading = true
				m.status = "loading older messages..."
				return m, cmd
			}
			m.status = "beginning of channel history"
			return m, nil
		}

	case pageLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.status = errorStyle.Render(msg.err.Error())
			return m, nil
		}
		wasAtBottom := m.viewport.AtBottom()
		m.list = msg.list
		m.status = fmt.Sprintf("%d messages", len(m.list))
		m.viewport.SetContent(m.renderMessages())
		if wasAtBottom {
			m.viewport.GotoBottom()
		}
		return m, nil

	case sentMsg:
		if msg.err != nil {
			m.status = errorStyle.Render(msg.err.Error())
		} else {
			// The created message arrives back over the event
			// stream; the reconciler inserts it and a Refresh
			// follows.
			m.status = ""
		}
		return m, nil

	case Refresh:
		if list, ok := m.repository.Store().Get(m.channel); ok {
			wasAtBottom := m.viewport.AtBottom()
			m.list = list
			m.viewport.SetContent(m.renderMessages())
			if wasAtBottom {
				m.viewport.GotoBottom()
			}
		}
		return m, nil
	}

	var viewportCmd, inputCmd tea.Cmd
	m.viewport, viewportCmd = m.viewport.Update(msg)
	m.input, inputCmd = m.input.Update(msg)
	return m, tea.Batch(viewportCmd, inputCmd)
}

// View renders the full screen.
func (m Model) View() string {
	if !m.ready {
		return "starting..."
	}
	return m.headerView() + "\n" +
		m.viewport.View() + "\n" +
		statusStyle.Render(m.status) + "\n" +
		m.input.View()
}

func (m Model) headerView() string {
	return headerStyle.Render("#" + m.channel.String())
}

// renderMessages formats the cached list, oldest at the top.
func (m Model) renderMessages() string {
	if len(m.list) == 0 {
		return systemStyle.Render("no messages yet")
	}

	var b strings.Builder
	for i := len(m.list) - 1; i >= 0; i-- {
		b.WriteString(renderMessage(m.list[i]))
		b.WriteString("\n")
	}
	return b.String()
}

// renderMessage formats one message: author line, rendered body, and
// a reaction summary when present.
func renderMessage(message revolt.Message) string {
	var b strings.Builder

	if message.System != nil {
		text := message.System.RenderedMessage
		if text == "" {
			text = message.System.Message
		}
		b.WriteString(systemStyle.Render("· " + text))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(authorStyle.Render(displayAuthor(message)))
	if message.Edited != "" {
		b.WriteString(editedStyle.Render(" (edited)"))
	}
	b.WriteString("\n")

	body := message.RenderedContent
	if body == "" {
		body = message.Content
	}
	b.WriteString(body)
	b.WriteString("\n")

	if len(message.Reactions) > 0 {
		parts := make([]string, 0, len(message.Reactions))
		for key, users := range message.Reactions {
			parts = append(parts, fmt.Sprintf("%s ×%d", reactionLabel(key), len(users)))
		}
		b.WriteString(reactionStyle.Render(strings.Join(parts, "  ")))
		b.WriteString("\n")
	}
	return b.String()
}

// displayAuthor picks the shown author name: masquerade, webhook, or
// the raw author ID.
func displayAuthor(message revolt.Message) string {
	if message.Masquerade != nil && message.Masquerade.Name != "" {
		return message.Masquerade.Name
	}
	if message.Webhook != nil && message.Webhook.Name != "" {
		return message.Webhook.Name
	}
	return "@" + message.Author.String()
}

// reactionLabel shortens a location-annotated reaction key back to its
// trailing emoji ID for display.
func reactionLabel(key string) string {
	if i := strings.LastIndex(key, ":"); i >= 0 && i < len(key)-1 {
		return ":" + key[i+1:] + ":"
	}
	return ":" + key + ":"
}

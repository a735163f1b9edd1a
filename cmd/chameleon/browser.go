package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.design/x/clipboard"

	"github.com/chameleon-net/chameleon/internal/profiles"
)

// profileItem represents a catalog profile in the browser list
type profileItem struct {
	profile profiles.Profile
}

// FilterValue returns the filter value for the item
func (i profileItem) FilterValue() string {
	return i.profile.Name + " " + i.profile.Browser + " " + i.profile.OS
}

// Title returns the title for display
func (i profileItem) Title() string {
	return i.profile.Name
}

// Description returns the description for display
func (i profileItem) Description() string {
	return fmt.Sprintf("%s • %s • %d ciphers • %d extensions",
		i.profile.Browser,
		i.profile.OS,
		len(i.profile.CipherIDs),
		len(i.profile.ExtensionIDs))
}

// browserModel is the Bubble Tea model for the profile browser
type browserModel struct {
	list         list.Model
	width        int
	height       int
	clipboardOK  bool
	statusNotice string
	quitting     bool
}

func newBrowserModel() browserModel {
	names := profiles.Names()
	items := make([]list.Item, 0, len(names))
	for _, name := range names {
		p, ok := profiles.Lookup(name)
		if !ok {
			continue
		}
		items = append(items, profileItem{profile: p})
	}

	l := list.New(items, newBrowserDelegate(), 0, 0)
	l.Title = "Fingerprint Profiles"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = lipgloss.NewStyle().
		Foreground(primaryColor).
		Bold(true).
		Padding(0, 1)

	clipboardOK := clipboard.Init() == nil

	return browserModel{
		list:        l,
		clipboardOK: clipboardOK,
	}
}

// Init initializes the profile browser
func (m browserModel) Init() tea.Cmd {
	return tea.EnterAltScreen
}

// Update handles messages for the profile browser
func (m browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-6)

	case tea.KeyMsg:
		// Keep navigation keys working while the filter input is open
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "c":
			if item, ok := m.list.SelectedItem().(profileItem); ok {
				m.statusNotice = m.copyToClipboard(item.profile.JA3(), "JA3 string")
			}
			return m, nil

		case "y":
			if item, ok := m.list.SelectedItem().(profileItem); ok {
				m.statusNotice = m.copyToClipboard(item.profile.JA3Hash, "JA3 hash")
			}
			return m, nil

		case "u":
			if item, ok := m.list.SelectedItem().(profileItem); ok {
				m.statusNotice = m.copyToClipboard(item.profile.UserAgent, "User-Agent")
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// copyToClipboard writes text to the system clipboard and returns a notice
// for the status line.
func (m browserModel) copyToClipboard(text, what string) string {
	if !m.clipboardOK {
		return "clipboard unavailable"
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	return what + " copied"
}

// View renders the profile browser
func (m browserModel) View() string {
	if m.quitting {
		return ""
	}

	var content strings.Builder

	// Split view: list on left, details on right
	if m.width > 80 {
		listWidth := m.width / 2
		detailWidth := m.width - listWidth - 2

		m.list.SetWidth(listWidth)

		detailStyle := lipgloss.NewStyle().
			Width(detailWidth).
			BorderLeft(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(mutedColor).
			PaddingLeft(1)

		content.WriteString(lipgloss.JoinHorizontal(
			lipgloss.Top,
			lipgloss.NewStyle().Width(listWidth).Render(m.list.View()),
			detailStyle.Render(m.renderDetail(detailWidth)),
		))
	} else {
		content.WriteString(m.list.View())
		content.WriteString("\n")
		content.WriteString(m.renderDetail(m.width))
	}

	footerStyle := lipgloss.NewStyle().
		Foreground(mutedColor).
		Padding(1, 1, 0, 1)

	footer := "↑/↓ navigate • C copy JA3 • Y copy hash • U copy UA • / filter • Q quit"
	if m.statusNotice != "" {
		footer = footer + " • " + lipgloss.NewStyle().Foreground(successColor).Render(m.statusNotice)
	}
	content.WriteString("\n")
	content.WriteString(footerStyle.Render(footer))

	return content.String()
}

// renderDetail renders the fingerprint details of the selected profile
func (m browserModel) renderDetail(width int) string {
	item, ok := m.list.SelectedItem().(profileItem)
	if !ok {
		return lipgloss.NewStyle().
			Width(width).
			Foreground(mutedColor).
			Render("Select a profile to view details")
	}
	p := item.profile

	titleStyle := lipgloss.NewStyle().
		Foreground(primaryColor).
		Bold(true).
		MarginBottom(1)

	labelStyle := lipgloss.NewStyle().
		Foreground(accentColor).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF"))

	http2 := make([]string, 0, len(p.HTTP2Settings))
	for _, s := range p.HTTP2Settings {
		http2 = append(http2, fmt.Sprintf("%d=%d", s.ID, s.Value))
	}

	details := []struct {
		label string
		value string
	}{
		{"Browser", p.Browser + " / " + p.OS},
		{"Impersonate", p.Impersonate},
		{"User Agent", p.UserAgent},
		{"JA3 Hash", p.JA3Hash},
		{"JA3", p.JA3()},
		{"Header Case", string(p.HeaderCase)},
		{"HTTP/2 Settings", strings.Join(http2, " ")},
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render(p.Name))
	content.WriteString("\n\n")

	for _, d := range details {
		if d.value == "" {
			continue
		}
		content.WriteString(labelStyle.Render(d.label + ":"))
		content.WriteString("\n")
		content.WriteString(valueStyle.Render(wordWrap(d.value, width-4)))
		content.WriteString("\n\n")
	}

	return content.String()
}

// newBrowserDelegate creates a custom delegate for the profile list
func newBrowserDelegate() list.DefaultDelegate {
	d := list.NewDefaultDelegate()

	d.Styles.SelectedTitle = lipgloss.NewStyle().
		Foreground(primaryColor).
		Bold(true)

	d.Styles.SelectedDesc = lipgloss.NewStyle().
		Foreground(secondaryColor)

	d.Styles.NormalTitle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF"))

	d.Styles.NormalDesc = lipgloss.NewStyle().
		Foreground(mutedColor)

	return d
}

// runProfileBrowser launches the interactive profile viewer.
func runProfileBrowser() error {
	_, err := tea.NewProgram(newBrowserModel(), tea.WithAltScreen()).Run()
	return err
}

// wordWrap wraps text to the specified width
func wordWrap(text string, width int) string {
	if width < 10 || len(text) <= width {
		return text
	}

	var result strings.Builder
	words := strings.Fields(text)
	line := ""

	for _, word := range words {
		if len(line)+len(word)+1 > width {
			if result.Len() > 0 {
				result.WriteString("\n")
			}
			result.WriteString(line)
			line = word
		} else {
			if line != "" {
				line += " "
			}
			line += word
		}
	}

	if line != "" {
		if result.Len() > 0 {
			result.WriteString("\n")
		}
		result.WriteString(line)
	}

	return result.String()
}

// Package style holds the viewer's palette and the lipgloss styles built from
// it. SetTheme swaps the palette and rebuilds every style; callers read the
// package variables at render time.
package style

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Palette of the active theme.
var (
	Accent  color.Color
	Info    color.Color
	Warning color.Color
	Danger  color.Color
	Muted   color.Color
	Subtle  color.Color
	Border  color.Color

	UserColor      color.Color
	AssistantColor color.Color
	SystemColor    color.Color

	GradFrom color.Color
	GradTo   color.Color

	// MarkdownStyle is the glamour style matching the theme.
	MarkdownStyle string

	thumbColor, trackColor color.Color
)

var (
	Faint     lipgloss.Style
	ErrorText lipgloss.Style
	WarnText  lipgloss.Style

	// Message chrome
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	SystemLabel    lipgloss.Style
	MsgMeta        lipgloss.Style

	HeaderMeta      lipgloss.Style
	HeaderSeparator lipgloss.Style

	// Status bar
	StatusBar   lipgloss.Style
	StatusKey   lipgloss.Style
	StatusValue lipgloss.Style
	StatusWarn  lipgloss.Style

	// Empty, loading and error placeholder
	WelcomeTitle lipgloss.Style
	WelcomeMeta  lipgloss.Style
	WelcomeTip   lipgloss.Style

	HelpKey       lipgloss.Style
	HelpDesc      lipgloss.Style
	HelpSeparator lipgloss.Style

	ScrollbarThumb lipgloss.Style
	ScrollbarTrack lipgloss.Style

	// Dialogs
	DialogFrame    lipgloss.Style
	DialogRule     lipgloss.Style
	DialogHelp     lipgloss.Style
	DialogHelpKey  lipgloss.Style
	DialogCursor   lipgloss.Style
	DialogSelected lipgloss.Style
	DialogInput    lipgloss.Style
	ButtonActive   lipgloss.Style
	ButtonInactive lipgloss.Style
	ButtonDanger   lipgloss.Style
)

func init() {
	apply(Themes[CurrentThemeName])
}

// SetTheme switches to a named theme. Unknown names leave the theme alone.
func SetTheme(name string) bool {
	t, ok := Themes[name]
	if !ok {
		return false
	}
	CurrentThemeName = name
	apply(t)
	return true
}

func apply(t Theme) {
	Accent, Info, Warning, Danger = t.Accent, t.Info, t.Warning, t.Danger
	Muted, Subtle, Border = t.Muted, t.Subtle, t.Border
	UserColor, AssistantColor, SystemColor = t.User, t.Assistant, t.System
	GradFrom, GradTo = t.GradFrom, t.GradTo
	thumbColor, trackColor = t.Thumb, t.Track
	MarkdownStyle = t.Markdown
	rebuildStyles()
}

func rebuildStyles() {
	fg := func(c color.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	white := lipgloss.Color("#FFFFFF")

	Faint = fg(Muted)
	ErrorText = fg(Danger).Bold(true)
	WarnText = fg(Warning)

	UserLabel = fg(UserColor).Bold(true)
	AssistantLabel = fg(AssistantColor).Bold(true)
	SystemLabel = fg(Muted).Bold(true)
	MsgMeta = fg(Muted).Italic(true)

	HeaderMeta = fg(Muted)
	HeaderSeparator = fg(Border)

	StatusBar = fg(Muted).PaddingLeft(1)
	StatusKey = fg(Muted)
	StatusValue = fg(Info)
	StatusWarn = fg(Warning).Bold(true)

	WelcomeTitle = fg(Accent).Bold(true)
	WelcomeMeta = fg(Muted)
	WelcomeTip = fg(Subtle)

	HelpKey = fg(Info).Bold(true)
	HelpDesc = fg(Muted)
	HelpSeparator = fg(Subtle)

	ScrollbarThumb = fg(thumbColor)
	ScrollbarTrack = fg(trackColor)

	DialogFrame = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)
	DialogRule = fg(Subtle)
	DialogHelp = fg(Muted)
	DialogHelpKey = fg(Info).Bold(true)
	DialogCursor = fg(Accent).Bold(true)
	DialogSelected = fg(Info).Bold(true)
	DialogInput = fg(Info)
	ButtonActive = fg(white).Background(Accent).Padding(0, 2)
	ButtonInactive = fg(Muted).Background(Subtle).Padding(0, 2)
	ButtonDanger = fg(white).Background(Danger).Padding(0, 2)
}

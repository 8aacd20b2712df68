package chat

import (
	"strings"

	"github.com/miosa/osa-history/style"
	"github.com/miosa/osa-history/ui/common"
)

// OsaLogo is the ASCII art shown while a session is loading or empty.
const OsaLogo = ` ██████╗ ███████╗ █████╗
██╔═══██╗██╔════╝██╔══██╗
██║   ██║███████╗███████║
██║   ██║╚════██║██╔══██║
╚██████╔╝███████║██║  ██║
 ╚═════╝ ╚══════╝╚═╝  ╚═╝`

// renderEmpty produces the vertically centered placeholder shown when the
// pane has no messages: while the first page loads, when the session is
// empty, or when loading failed.
func renderEmpty(width, height int, session string, loading bool, err error) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	var lines []string
	if height >= 12 {
		for _, l := range strings.Split(OsaLogo, "\n") {
			lines = append(lines, style.ApplyBoldForegroundGrad(l))
		}
		lines = append(lines, "")
	}

	switch {
	case err != nil:
		lines = append(lines, style.ErrorText.Render("Could not load "+session))
		lines = append(lines, style.WelcomeMeta.Render(err.Error()))
		lines = append(lines, "", style.WelcomeTip.Render("r to retry  ·  q to quit"))
	case loading:
		lines = append(lines, style.WelcomeTitle.Render("Loading "+session+"…"))
	default:
		lines = append(lines, style.WelcomeTitle.Render("No messages in "+session))
		lines = append(lines, "", style.WelcomeTip.Render("new messages appear here as they are written"))
	}

	for i, l := range lines {
		lines[i] = common.FitLine(common.PadCenter(l, width), width)
	}
	top := max((height-len(lines))/2, 0)
	out := make([]string, 0, height)
	for range top {
		out = append(out, strings.Repeat(" ", width))
	}
	out = append(out, lines...)
	for len(out) < height {
		out = append(out, strings.Repeat(" ", width))
	}
	return strings.Join(out[:height], "\n")
}

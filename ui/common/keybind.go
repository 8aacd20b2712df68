package common

import (
	"strings"

	"charm.land/bubbles/v2/key"

	"github.com/miosa/osa-history/style"
)

// KeyHelp renders a one-line key-binding help for the status bar:
//
//	home top  ·  end bottom  ·  q quit
//
// Bindings whose Enabled() is false are omitted.
func KeyHelp(bindings ...key.Binding) string {
	var parts []string
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		parts = append(parts, style.HelpKey.Render(h.Key)+" "+style.HelpDesc.Render(h.Desc))
	}
	return strings.Join(parts, style.HelpSeparator.Render("  ·  "))
}

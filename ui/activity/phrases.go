// Package activity supplies the rotating labels shown next to the load
// spinner.
package activity

import "math/rand/v2"

var phrases = []string{
	"Loading history…",
	"Paging through the archive…",
	"Fetching older messages…",
	"Unrolling the scroll…",
	"Dusting off old signals…",
	"Rewinding the conversation…",
	"Counting rows…",
	"Measuring messages…",
	"Asking the database nicely…",
	"Reading the transcript…",
	"Following the thread…",
	"Catching up…",
}

// Phrases returns every label Pick can return.
func Phrases() []string { return phrases }

// Pick returns a random label and its index, never repeating last.
func Pick(last int) (string, int) {
	idx := rand.IntN(len(phrases))
	if idx == last && len(phrases) > 1 {
		idx = (idx + 1) % len(phrases)
	}
	return phrases[idx], idx
}

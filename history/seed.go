package history

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

var seedTopics = []string{
	"the retry policy for the sync worker",
	"why the cache misses after deploys",
	"migrating the session table",
	"a flaky integration test",
	"the release checklist",
	"rate limits on the public API",
}

// Seed writes n generated messages to session, continuing after whatever is
// already stored. It is meant for demos and manual testing.
func Seed(ctx context.Context, store *Store, session string, n int) error {
	next, err := store.NextSeq(ctx, session)
	if err != nil {
		return err
	}
	rng := rand.New(rand.NewPCG(uint64(next), uint64(n)))
	start := time.Now().Add(-time.Duration(n) * time.Minute)

	msgs := make([]Message, 0, n)
	for i := range n {
		seq := next + int64(i)
		topic := seedTopics[rng.IntN(len(seedTopics))]
		m := Message{
			Session:   session,
			Seq:       seq,
			CreatedAt: start.Add(time.Duration(i) * time.Minute),
		}
		switch {
		case seq%17 == 0:
			m.Role = RoleSystem
			m.Content = fmt.Sprintf("Context compacted at message %d.", seq)
		case seq%2 == 1:
			m.Role = RoleUser
			m.Content = fmt.Sprintf("Can you walk me through %s? (#%d)", topic, seq)
		default:
			m.Role = RoleAssistant
			m.Content = seedAnswer(rng, topic, seq)
		}
		msgs = append(msgs, m)
	}
	return store.Append(ctx, msgs...)
}

func seedAnswer(rng *rand.Rand, topic string, seq int64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Notes on %s\n\n", topic)
	steps := 1 + rng.IntN(6)
	for i := range steps {
		fmt.Fprintf(&b, "%d. Step %d of the plan for message %d.\n", i+1, i+1, seq)
	}
	if rng.IntN(3) == 0 {
		b.WriteString("\n```go\nif err != nil {\n\treturn fmt.Errorf(\"sync: %w\", err)\n}\n```\n")
	}
	return b.String()
}

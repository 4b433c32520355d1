package history

import (
	"strings"

	"juris-rag-be/pkg/store"
)

// DefaultTurns is how many recent exchanges are shown to the model.
const DefaultTurns = 5

// Window returns the last n turns, oldest first.
func Window(turns []store.Turn, n int) []store.Turn {
	if n <= 0 || len(turns) == 0 {
		return nil
	}
	if len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	out := make([]store.Turn, len(turns))
	copy(out, turns)
	return out
}

// Format renders turns as Q/A blocks separated by blank lines.
func Format(turns []store.Turn) string {
	if len(turns) == 0 {
		return ""
	}
	var b strings.Builder
	for i, t := range turns {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Pergunta: ")
		b.WriteString(strings.TrimSpace(t.Query))
		b.WriteString("\nResposta: ")
		b.WriteString(strings.TrimSpace(t.Answer))
		b.WriteString("\n")
	}
	return b.String()
}

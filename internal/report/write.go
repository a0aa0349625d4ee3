package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var labels = map[Kind]string{
	KindPass:    "PASS",
	KindFailure: "FAIL",
	KindError:   "ERROR",
}

// WriteText renders r as a terminal summary. Metric values are digit-grouped.
func WriteText(w io.Writer, r *Report) error {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	if r.Runtime != "" {
		fmt.Fprintf(&b, "Run %s (%s)\n", r.RunID, r.Runtime)
	} else {
		fmt.Fprintf(&b, "Run %s\n", r.RunID)
	}
	fmt.Fprintf(&b, "Target %s (%s), max supply %s", r.Target.Name, r.Target.Symbol, p.Sprintf("%d", r.Target.MaxSupply))
	if r.Target.BaseURI != "" {
		fmt.Fprintf(&b, ", base URI %s", r.Target.BaseURI)
	}
	b.WriteString("\n\n")

	if len(r.Outcomes) == 0 {
		b.WriteString("No checks ran.\n")
	}

	width := 0
	for _, o := range r.Outcomes {
		width = max(width, len(o.Name))
	}
	for _, o := range r.Outcomes {
		label, ok := labels[o.Kind]
		if !ok {
			label = strings.ToUpper(string(o.Kind))
		}
		line := fmt.Sprintf("%-5s  %-*s  %s", label, width, o.Name, o.Detail)
		b.WriteString(strings.TrimRight(line, " "))
		b.WriteByte('\n')

		for _, m := range o.Metrics {
			metric := fmt.Sprintf("       %s: %s %s", m.Name, p.Sprintf("%d", m.Value), m.Unit)
			b.WriteString(strings.TrimRight(metric, " "))
			b.WriteByte('\n')
		}
	}

	fmt.Fprintf(&b, "\n%d %s: %d passed, %d failed, %d errored (%s)\n",
		r.Total, plural(r.Total, "check", "checks"), r.Passed, r.Failed, r.Errored,
		r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteJSON renders r as indented JSON followed by a newline.
func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// File: cmd/inspect.go
package cmd

import (
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/xkilldash9x/capsule-browser/internal/browser/dom"
	"github.com/xkilldash9x/capsule-browser/internal/browser/session"
	"github.com/xkilldash9x/capsule-browser/internal/browser/style"
	"github.com/xkilldash9x/capsule-browser/internal/config"
	"github.com/xkilldash9x/capsule-browser/internal/observability"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// nodeReport is one node of the inspect output.
type nodeReport struct {
	Path     string            `json:"path"`
	Kind     string            `json:"kind"`
	ID       string            `json:"id,omitempty"`
	Geometry dom.Geometry      `json:"geometry"`
	Text     string            `json:"text,omitempty"`
	Style    map[string]string `json:"style,omitempty"`
	Events   map[string]string `json:"events,omitempty"`
}

type documentReport struct {
	DocumentID string       `json:"document_id"`
	Title      string       `json:"title"`
	Path       string       `json:"path"`
	Warnings   []string     `json:"warnings,omitempty"`
	Callbacks  []string     `json:"callbacks,omitempty"`
	Nodes      []nodeReport `json:"nodes"`
}

func newInspectCmd(cfg *config.Config) *cobra.Command {
	var (
		clicks []string
		ticks  int
	)

	inspectCmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print the laid-out tree of a capsule as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger().Named("inspect")
			inputs, err := parseClicks(clicks)
			if err != nil {
				return err
			}

			s, frame, err := runHeadless(cmd.Context(), cfg, logger, args[0], inputs, ticks)
			if err != nil {
				return err
			}

			report := buildReport(s.Current())
			report.Callbacks = frame.Dispatch.Callbacks
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}

	inspectCmd.Flags().StringArrayVar(&clicks, "click", nil, "pointer press as x,y[,button]; repeatable, one tick each")
	inspectCmd.Flags().IntVar(&ticks, "ticks", 1, "idle ticks to run after the clicks")
	return inspectCmd
}

func buildReport(doc *session.Document) documentReport {
	report := documentReport{
		DocumentID: doc.ID.String(),
		Title:      doc.Title(),
		Path:       doc.Path,
	}
	for _, w := range doc.Warnings {
		report.Warnings = append(report.Warnings, w.Error())
	}
	report.Nodes = appendNode(report.Nodes, doc.Root, "0")
	return report
}

// appendNode adds n and its subtree in pre-order. Paths are child indices
// joined by dots, starting at the root.
func appendNode(out []nodeReport, n *dom.Node, path string) []nodeReport {
	r := nodeReport{
		Path:     path,
		Kind:     n.Kind().String(),
		ID:       n.ID(),
		Geometry: n.Geometry().Get(),
	}
	if txt, ok := n.AsText(); ok {
		r.Text = txt.Content()
	}
	if n.Kind() != dom.KindScript {
		r.Style = styleMap(n)
	}
	for _, ev := range n.EventsSnapshot() {
		if r.Events == nil {
			r.Events = make(map[string]string)
		}
		r.Events[ev.Name] = ev.Callback
	}
	out = append(out, r)

	for i, child := range n.ChildrenSnapshot() {
		out = appendNode(out, child, path+"."+strconv.Itoa(i))
	}
	return out
}

func styleMap(n *dom.Node) map[string]string {
	m := make(map[string]string, len(style.Attributes))
	for _, attr := range style.Attributes {
		if v, err := n.Style().Get(attr); err == nil && v != "" {
			m[attr] = v
		}
	}
	return m
}

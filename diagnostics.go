package sigil

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/sigil-lang/sigil/ast"
)

// Describe renders a compiled artifact for troubleshooting: the token
// stream the tokenizer produced and the compacted bindings and body.
// Artifacts from non-native backends describe only their source.
func Describe(a Artifact) string {
	na, ok := a.(*artifact)
	if !ok {
		return fmt.Sprintf("artifact for %q (foreign backend)", a.Source())
	}

	var sb strings.Builder
	sb.WriteString("Source:\n")
	sb.WriteString("-------\n")
	sb.WriteString(na.src)
	sb.WriteString("\n\n")
	sb.WriteString(tokenTable(na))
	sb.WriteString("\n\n")
	sb.WriteString(nodeTable(na))
	return sb.String()
}

func tokenTable(a *artifact) string {
	tw := table.NewWriter()
	tw.SetTitle("\nTOKENS\n")
	tw.AppendHeader(table.Row{"Pos", "Kind", "Text"})
	for _, t := range a.toks {
		tw.AppendRow(table.Row{t.Pos, t.Kind.String(), fmt.Sprintf("%q", t.Text)})
	}
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	tw.SetStyle(style)
	return tw.Render()
}

func nodeTable(a *artifact) string {
	tw := table.NewWriter()
	tw.SetTitle("\nCOMPACTED NODES\n")
	tw.AppendHeader(table.Row{"Part", "Node"})
	for _, b := range a.bindings {
		variant := "value"
		if b.Chain {
			variant = "chain"
		}
		tw.AppendRow(table.Row{"binding (" + variant + ")", b.String()})
	}
	if a.body != nil {
		for _, row := range nodeRows(a.body, 0) {
			tw.AppendRow(row)
		}
	}
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	tw.SetStyle(style)
	return tw.Render()
}

func nodeRows(n ast.Node, depth int) []table.Row {
	indent := strings.Repeat("  ", depth)
	rows := []table.Row{{"body", fmt.Sprintf("%s%T %s", indent, n, n.String())}}
	switch v := n.(type) {
	case ast.Composite:
		for _, p := range v.Parts {
			rows = append(rows, nodeRows(p, depth+1)...)
		}
	case ast.FunctionCall:
		for _, arg := range v.Args {
			rows = append(rows, nodeRows(arg, depth+1)...)
		}
	}
	return rows
}

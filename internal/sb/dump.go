package sb

import (
	"fmt"
	"io"
	"strings"
)

// Text writes a flat per-node listing of proc's SB graph to w: one line per
// node reachable from End, `nP = op(in0, in1, ...)`, in the same reverse-DFS
// order WalkGraph visits them. This is the plain-text sibling of Graphviz
// for `bsc dump sb`, where a .dot file is overkill for a quick look.
func Text(w io.Writer, proc *Proc) {
	var order []*Node
	WalkGraph(proc.End, func(n *Node) {
		order = append(order, n)
	})

	ids := make(map[*Node]int, len(order))
	for i, n := range order {
		ids[n] = i
	}

	for i, n := range order {
		var ins strings.Builder
		for j, in := range n.Ins {
			if j > 0 {
				ins.WriteString(", ")
			}
			if in == nil {
				ins.WriteString("_")
			} else {
				fmt.Fprintf(&ins, "n%d", ids[in])
			}
		}
		fmt.Fprintf(w, "n%d = %s(%s)\n", i, n.Op.Mnemonic(), ins.String())
	}
}

// Graphviz writes proc's DOT representation to w, matching spec.md §6
// exactly: one record-shaped node per non-projection SB node with input
// sub-ports `<iK>`, projection sub-ports `<p_NAME>`; projections render as
// `parent:p_NAME` rather than standalone nodes; edges go def -> use input
// port. Grounded on original_source/sb/sb.c's graphviz_node/sb_graphviz.
func Graphviz(w io.Writer, proc *Proc) {
	fmt.Fprintln(w, "digraph G {")
	visited := newNodeSet()
	graphvizNode(w, visited, proc.End)
	fmt.Fprintln(w, "}")
}

// projName returns the suffix after the last '.' in op's mnemonic, e.g.
// "mem" for "start.mem" — original_source's proj_name via strrchr('.').
func projName(op Op) string {
	m := op.Mnemonic()
	if i := strings.LastIndexByte(m, '.'); i >= 0 {
		return m[i+1:]
	}
	return m
}

// graphvizNode returns the dot reference for node (either "nP" for a
// standalone record, or "nP:p_NAME" for a projection) and, the first time a
// standalone node is visited, emits its record and incoming edges.
func graphvizNode(w io.Writer, visited *nodeSet, node *Node) string {
	if node.Flags.IsProjection() {
		parent := graphvizNode(w, visited, node.Ins[0])
		return fmt.Sprintf("%s:p_%s", parent, projName(node.Op))
	}

	id := fmt.Sprintf("n%p", node)
	if visited.Contains(node) {
		return id
	}
	visited.Add(node)

	var label strings.Builder
	label.WriteString("{")
	if len(node.Ins) > 0 {
		label.WriteString("{")
		for i := range node.Ins {
			if i > 0 {
				label.WriteString("|")
			}
			fmt.Fprintf(&label, "<i%d>%d", i, i)
		}
		label.WriteString("}|")
	}
	fmt.Fprintf(&label, "{%s}", node.Op.Mnemonic())

	var projs []string
	for u := node.Users; u != nil; u = u.Next {
		if u.Node.Flags.IsProjection() {
			projs = append(projs, projName(u.Node.Op))
		}
	}
	if len(projs) > 0 {
		label.WriteString("|{")
		for i, n := range projs {
			if i > 0 {
				label.WriteString("|")
			}
			fmt.Fprintf(&label, "<p_%s>%s", n, n)
		}
		label.WriteString("}")
	}
	label.WriteString("}")

	fmt.Fprintf(w, "  %s [shape=\"record\",label=\"%s\"];\n", id, label.String())

	for i, in := range node.Ins {
		if in == nil {
			continue
		}
		inRef := graphvizNode(w, visited, in)
		fmt.Fprintf(w, "  %s -> %s:i%d;\n", inRef, id, i)
	}

	return id
}

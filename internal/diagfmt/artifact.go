package diagfmt

import (
	"fmt"
	"io"

	"weft/internal/driver"
)

// FormatArtifact prints the declaration tree of a decoded artifact, the
// view `weft show` renders.
func FormatArtifact(w io.Writer, art *driver.Artifact) {
	fmt.Fprintf(w, "library %s (schema %d, %s)\n", art.Library, art.Schema, plural(len(art.Decls), "decl"))
	for i := range art.Decls {
		d := &art.Decls[i]
		branch, prefix := "├─", "│  "
		if i == len(art.Decls)-1 {
			branch, prefix = "└─", "   "
		}
		fmt.Fprintf(w, "%s %s\n", branch, declHeader(d))
		for j := range d.Members {
			m := &d.Members[j]
			memberBranch := "├─"
			if j == len(d.Members)-1 {
				memberBranch = "└─"
			}
			fmt.Fprintf(w, "%s%s %s\n", prefix, memberBranch, memberLine(m))
		}
	}
}

func declHeader(d *driver.ArtifactDecl) string {
	head := d.Kind + " " + d.Name
	if d.Strictness != "" {
		head = d.Strictness + " " + head
	}
	if d.Resourceness == "resource" {
		head = "resource " + head
	}
	switch d.Kind {
	case "alias", "new type":
		return fmt.Sprintf("%s = %s", head, d.Type)
	case "const":
		return fmt.Sprintf("%s %s = %s", head, d.Type, d.Value)
	case "bits":
		return fmt.Sprintf("%s : %s (mask %#x)", head, d.Type, d.Mask)
	case "enum", "resource":
		if d.Type != "" {
			return fmt.Sprintf("%s : %s", head, d.Type)
		}
	}
	return head
}

// memberLine keys off which fields the builder set: reserved slots keep
// only their ordinal, methods carry a selector, table and union members
// an ordinal, bits and enum members a bare value.
func memberLine(m *driver.ArtifactMember) string {
	switch {
	case m.Reserved:
		return fmt.Sprintf("%d: reserved", m.Ordinal)
	case m.Selector != "":
		line := m.Name
		if m.Type != "" {
			line += " " + m.Type
		}
		return fmt.Sprintf("%s (ordinal %#x)", line, m.Ordinal)
	case m.Ordinal != 0:
		return fmt.Sprintf("%d: %s %s", m.Ordinal, m.Name, m.Type)
	case m.Type == "":
		return fmt.Sprintf("%s = %s", m.Name, m.Value)
	case m.Value != "":
		return fmt.Sprintf("%s %s = %s", m.Name, m.Type, m.Value)
	default:
		return m.Name + " " + m.Type
	}
}

package ast

import (
	"weft/internal/source"
)

// Attr is an `@name(arg, name=arg, ...)` annotation.
type Attr struct {
	Name Name
	Args []AttrArg
	Span source.Span
}

// AttrArg is a single attribute argument. Single-argument attributes may
// leave the name empty; the schema fills in the default.
type AttrArg struct {
	Name  Name
	Value ConstantID
	Span  source.Span
}

type AttrList struct {
	Attrs []Attr
}

// FindAttr returns the first attribute with the given canonical name.
func (l *AttrList) FindAttr(canonical string) (*Attr, bool) {
	if l == nil {
		return nil, false
	}
	for i := range l.Attrs {
		if l.Attrs[i].Name.Canonical == canonical {
			return &l.Attrs[i], true
		}
	}
	return nil, false
}

// FindArg returns the attribute argument with the given canonical name.
func (a *Attr) FindArg(canonical string) (*AttrArg, bool) {
	if a == nil {
		return nil, false
	}
	for i := range a.Args {
		if a.Args[i].Name.Canonical == canonical {
			return &a.Args[i], true
		}
	}
	return nil, false
}

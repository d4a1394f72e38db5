package driver

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"weft/internal/ast"
	"weft/internal/constant"
	"weft/internal/types"
)

// ArtifactSchemaVersion invalidates artifacts when the envelope changes.
const ArtifactSchemaVersion uint16 = 1

// ArtifactExt is the artifact file suffix.
const ArtifactExt = ".weftir"

// Artifact is the compiled form of one library: the envelope `weft show`
// and downstream generators read back.
type Artifact struct {
	Schema  uint16
	Library string
	Decls   []ArtifactDecl
}

// ArtifactDecl flattens one compiled declaration. Which fields are set
// depends on the kind: Type carries an alias or new-type target, a
// constant's type or a bits/enum underlying type; Value a resolved
// constant; Mask the OR of a bits declaration's members.
type ArtifactDecl struct {
	Kind         string
	Name         string
	Strictness   string
	Resourceness string
	Type         string
	Value        string
	Mask         uint64
	Members      []ArtifactMember
}

// ArtifactMember is one member slot. Reserved table and union slots keep
// their ordinal and nothing else. Methods carry Ordinal and Selector, and
// render their payloads into Type.
type ArtifactMember struct {
	Name     string
	Type     string
	Value    string
	Ordinal  uint64
	Selector string
	Reserved bool
}

// BuildArtifact flattens a compiled library. The space must be the one
// the library was compiled against.
func BuildArtifact(lib *ast.Library, space *types.Space) *Artifact {
	b := artifactBuilder{lib: lib, space: space}
	art := &Artifact{
		Schema:  ArtifactSchemaVersion,
		Library: lib.Name,
		Decls:   make([]ArtifactDecl, 0, lib.Decls.Len()),
	}
	for id := ast.DeclID(1); uint32(id) <= lib.Decls.Len(); id++ {
		art.Decls = append(art.Decls, b.decl(id))
	}
	return art
}

type artifactBuilder struct {
	lib   *ast.Library
	space *types.Space
}

func (b *artifactBuilder) decl(id ast.DeclID) ArtifactDecl {
	decl := b.lib.Decls.Get(id)
	out := ArtifactDecl{
		Kind: decl.Kind.String(),
		Name: decl.Name.Raw,
	}
	switch decl.Kind {
	case ast.DeclAlias:
		ad, _ := b.lib.Decls.AliasAt(id)
		out.Type = b.typeOf(ad.Target)
	case ast.DeclNewType:
		nt, _ := b.lib.Decls.NewTypeAt(id)
		out.Type = b.typeOf(nt.Target)
	case ast.DeclConst:
		cd, _ := b.lib.Decls.ConstAt(id)
		out.Type = b.typeOf(cd.Type)
		out.Value = b.valueOf(cd.Value)
	case ast.DeclBits:
		bd, _ := b.lib.Decls.BitsAt(id)
		out.Strictness = bd.Strictness.String()
		out.Type = b.typeOf(bd.Subtype)
		out.Mask = bd.Mask
		out.Members = b.valueMembers(bd.Members)
	case ast.DeclEnum:
		ed, _ := b.lib.Decls.EnumAt(id)
		out.Strictness = ed.Strictness.String()
		out.Type = b.typeOf(ed.Subtype)
		out.Members = b.valueMembers(ed.Members)
	case ast.DeclStruct:
		sd, _ := b.lib.Decls.StructAt(id)
		out.Resourceness = sd.Resourceness.String()
		for i := range sd.Members {
			m := &sd.Members[i]
			out.Members = append(out.Members, ArtifactMember{
				Name:  m.Name.Raw,
				Type:  b.typeOf(m.Type),
				Value: b.valueOf(m.Default),
			})
		}
	case ast.DeclTable:
		td, _ := b.lib.Decls.TableAt(id)
		out.Resourceness = td.Resourceness.String()
		out.Members = b.ordinalMembers(td.Members)
	case ast.DeclUnion:
		ud, _ := b.lib.Decls.UnionAt(id)
		out.Strictness = ud.Strictness.String()
		out.Resourceness = ud.Resourceness.String()
		out.Members = b.ordinalMembers(ud.Members)
	case ast.DeclProtocol:
		pd, _ := b.lib.Decls.ProtocolAt(id)
		for i := range pd.Methods {
			m := &pd.Methods[i]
			out.Members = append(out.Members, ArtifactMember{
				Name:     m.Name.Raw,
				Type:     b.methodShape(m),
				Ordinal:  m.Ordinal,
				Selector: m.Selector,
			})
		}
	case ast.DeclService:
		sd, _ := b.lib.Decls.ServiceAt(id)
		for i := range sd.Members {
			m := &sd.Members[i]
			out.Members = append(out.Members, ArtifactMember{
				Name: m.Name.Raw,
				Type: b.typeOf(m.Type),
			})
		}
	case ast.DeclResource:
		rd, _ := b.lib.Decls.ResourceAt(id)
		out.Type = b.typeOf(rd.Subtype)
		for i := range rd.Properties {
			p := &rd.Properties[i]
			out.Members = append(out.Members, ArtifactMember{
				Name: p.Name.Raw,
				Type: b.typeOf(p.Type),
			})
		}
	}
	return out
}

func (b *artifactBuilder) valueMembers(members []ast.ValueMember) []ArtifactMember {
	out := make([]ArtifactMember, 0, len(members))
	for i := range members {
		m := &members[i]
		out = append(out, ArtifactMember{
			Name:  m.Name.Raw,
			Value: b.valueOf(m.Value),
		})
	}
	return out
}

func (b *artifactBuilder) ordinalMembers(members []ast.OrdinalMember) []ArtifactMember {
	out := make([]ArtifactMember, 0, len(members))
	for i := range members {
		m := &members[i]
		am := ArtifactMember{Ordinal: m.Ordinal.Value}
		if m.Used == nil {
			am.Reserved = true
		} else {
			am.Name = m.Used.Name.Raw
			am.Type = b.typeOf(m.Used.Type)
		}
		out = append(out, am)
	}
	return out
}

// typeOf renders a resolved type. Constructors the compilation never
// reached, possible in a library with errors, fall back to the layout's
// spelling.
func (b *artifactBuilder) typeOf(id ast.TypeCtorID) string {
	if !id.IsValid() {
		return ""
	}
	if tid, ok := b.space.Lookup(b.lib, id); ok {
		return b.space.FormatQualified(tid)
	}
	ctor := b.lib.Decls.TypeCtorAt(id)
	if ctor != nil && ctor.Layout.IsValid() {
		return ctor.Layout.Resolve().Name.Raw
	}
	return ""
}

func (b *artifactBuilder) valueOf(id ast.ConstantID) string {
	if !id.IsValid() {
		return ""
	}
	cell := b.lib.Decls.ConstantAt(id)
	if cell == nil || !cell.ResolvedOK() {
		return ""
	}
	v := cell.Value()
	if v.Kind() == constant.String {
		return fmt.Sprintf("%q", v.Format())
	}
	return v.Format()
}

func (b *artifactBuilder) methodShape(m *ast.ProtocolMethod) string {
	shape := ""
	if m.HasRequest {
		shape += "(" + b.typeOf(m.Request) + ")"
	}
	if m.HasResponse {
		if m.HasRequest {
			shape += " -> "
		} else {
			shape += "-> "
		}
		shape += "(" + b.typeOf(m.Response) + ")"
	}
	return shape
}

// WriteArtifact encodes the artifact next to its final path and renames
// it into place, so readers never observe a half-written file.
func WriteArtifact(path string, art *Artifact) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(f.Name())
	}()

	if err := msgpack.NewEncoder(f).Encode(art); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// ReadArtifact decodes an artifact file, rejecting envelopes written by
// another schema revision.
func ReadArtifact(path string) (*Artifact, error) {
	f, err := os.Open(path) // #nosec G304 -- the caller names the artifact to read
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	var art Artifact
	if err := msgpack.NewDecoder(f).Decode(&art); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if art.Schema != ArtifactSchemaVersion {
		return nil, fmt.Errorf("%s: artifact schema %d is not supported, want %d", path, art.Schema, ArtifactSchemaVersion)
	}
	return &art, nil
}

package ast

type (
	// Top-level entities.
	DeclID     uint32
	TypeCtorID uint32
	ConstantID uint32
	// Sub-entities.
	PayloadID  uint32
	AttrListID uint32
)

const (
	NoDeclID     DeclID     = 0
	NoTypeCtorID TypeCtorID = 0
	NoConstantID ConstantID = 0
	NoPayloadID  PayloadID  = 0
	NoAttrListID AttrListID = 0
)

func (id DeclID) IsValid() bool     { return id != NoDeclID }
func (id TypeCtorID) IsValid() bool { return id != NoTypeCtorID }
func (id ConstantID) IsValid() bool { return id != NoConstantID }
func (id PayloadID) IsValid() bool  { return id != NoPayloadID }
func (id AttrListID) IsValid() bool { return id != NoAttrListID }

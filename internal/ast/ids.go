package ast

type (
	// Top-level entities.
	ModuleID uint32
	DeclID   uint32
	StmtID   uint32
	ExprID   uint32
	// Sub-entities.
	PayloadID      uint32
	TypeExprID     uint32
	PatternID      uint32
	ParamID        uint32
	TypeParamID    uint32
	FieldID        uint32
	VariantID      uint32
	StorageFieldID uint32
	ArmID          uint32
)

const (
	NoModuleID       ModuleID       = 0
	NoDeclID         DeclID         = 0
	NoStmtID         StmtID         = 0
	NoExprID         ExprID         = 0
	NoPayloadID      PayloadID      = 0
	NoTypeExprID     TypeExprID     = 0
	NoPatternID      PatternID      = 0
	NoParamID        ParamID        = 0
	NoTypeParamID    TypeParamID    = 0
	NoFieldID        FieldID        = 0
	NoVariantID      VariantID      = 0
	NoStorageFieldID StorageFieldID = 0
	NoArmID          ArmID          = 0
)

func (id ModuleID) IsValid() bool       { return id != NoModuleID }
func (id DeclID) IsValid() bool         { return id != NoDeclID }
func (id StmtID) IsValid() bool         { return id != NoStmtID }
func (id ExprID) IsValid() bool         { return id != NoExprID }
func (id PayloadID) IsValid() bool      { return id != NoPayloadID }
func (id TypeExprID) IsValid() bool     { return id != NoTypeExprID }
func (id PatternID) IsValid() bool      { return id != NoPatternID }
func (id ParamID) IsValid() bool        { return id != NoParamID }
func (id TypeParamID) IsValid() bool    { return id != NoTypeParamID }
func (id FieldID) IsValid() bool        { return id != NoFieldID }
func (id VariantID) IsValid() bool      { return id != NoVariantID }
func (id StorageFieldID) IsValid() bool { return id != NoStorageFieldID }
func (id ArmID) IsValid() bool          { return id != NoArmID }

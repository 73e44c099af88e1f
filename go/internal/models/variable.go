package models

import "github.com/google/uuid"

// Scope is the ownership level of a variable.
type Scope string

const (
	ScopeHand   Scope = "hand"
	ScopeTeam   Scope = "team"
	ScopeModule Scope = "module"
)

// DataType is the declared type of a variable value.
type DataType string

const (
	DataTypeInt    DataType = "int"
	DataTypeFloat  DataType = "float"
	DataTypeChoice DataType = "choice"
	DataTypeStr    DataType = "str"
	DataTypeList   DataType = "list"
	DataTypeDict   DataType = "dict"
	DataTypeBool   DataType = "bool"
	DataTypeStage  DataType = "stage"
)

// Valid reports whether t is a known data type.
func (t DataType) Valid() bool {
	switch t {
	case DataTypeInt, DataTypeFloat, DataTypeChoice, DataTypeStr,
		DataTypeList, DataTypeDict, DataTypeBool, DataTypeStage:
		return true
	}
	return false
}

// Variable is a typed cell owned by a module, team or hand. OwnerID points at
// whichever of those the scope names.
type Variable struct {
	ID           uuid.UUID `json:"id"`
	DefinitionID string    `json:"definition_id"`
	Scope        Scope     `json:"scope"`
	ModuleID     uuid.UUID `json:"module_id"`
	OwnerID      uuid.UUID `json:"owner_id"`
	Value        any       `json:"value"`
}

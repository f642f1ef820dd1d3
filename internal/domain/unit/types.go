package unit

// UnitType classifies a unit.
type UnitType string

const (
	TypeStandard     UnitType = "standard"
	TypeMiniStandard UnitType = "mini-standard"
)

// Valid reports whether t is one of the enumerated unit types.
func (t UnitType) Valid() bool {
	switch t {
	case TypeStandard, TypeMiniStandard:
		return true
	}
	return false
}

// Status is the lifecycle status a unit declares for itself.
type Status string

const (
	StatusActive     Status = "active"
	StatusDeprecated Status = "deprecated"
)

// Valid reports whether s is one of the enumerated statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusDeprecated:
		return true
	}
	return false
}

// Compatibility describes how a unit version relates to the previous one.
type Compatibility struct {
	BreakingChanges    string
	BackwardCompatible bool
}

// Declaration is a unit's self-description (UNIT.json).
type Declaration struct {
	UnitID        string
	UnitType      UnitType
	Version       string
	Status        Status
	Description   string
	Owner         string
	Dependencies  []string // ordered, duplicates kept
	Compatibility Compatibility
}

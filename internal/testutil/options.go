package testutil

// unitData holds everything written for one registered unit.
type unitData struct {
	id           string
	path         string
	unitType     string
	status       string
	version      string
	owner        string
	dependencies []string
	docStatus    string
	noDecl       bool
	noDir        bool
}

// defaultUnit returns a unitData with sensible defaults.
func defaultUnit(id string) unitData {
	return unitData{
		id:        id,
		path:      "specs/" + id, // Default path mirrors the ID
		unitType:  "standard",
		status:    "active",
		version:   "1.0.0",
		owner:     "governance",
		docStatus: "approved",
	}
}

// UnitOption configures a unit during builder setup.
type UnitOption func(*unitData)

// Path overrides the registry path of the unit.
func Path(p string) UnitOption {
	return func(u *unitData) { u.path = p }
}

// UnitType sets the declared unit_type.
func UnitType(t string) UnitOption {
	return func(u *unitData) { u.unitType = t }
}

// Status sets the declared status.
func Status(s string) UnitOption {
	return func(u *unitData) { u.status = s }
}

// DependsOn sets the declared dependencies, in order.
func DependsOn(ids ...string) UnitOption {
	return func(u *unitData) { u.dependencies = ids }
}

// DocStatus sets the header status of the unit README.
func DocStatus(s string) UnitOption {
	return func(u *unitData) { u.docStatus = s }
}

// WithoutDeclaration registers the unit but writes no UNIT.json.
func WithoutDeclaration() UnitOption {
	return func(u *unitData) { u.noDecl = true }
}

// WithoutDirectory registers the unit but creates nothing on disk.
func WithoutDirectory() UnitOption {
	return func(u *unitData) { u.noDir = true }
}

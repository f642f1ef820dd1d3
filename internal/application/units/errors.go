package units

import "errors"

var (
	// ErrRegistryNotFound is returned when the registry file does not exist.
	ErrRegistryNotFound = errors.New("unit registry not found")
	// ErrRegistryParse is returned when the registry file is malformed.
	ErrRegistryParse = errors.New("failed to parse unit registry")
	// ErrDeclarationMissing is returned when a unit's declaration file is absent.
	ErrDeclarationMissing = errors.New("unit declaration missing")
	// ErrDeclarationParse is returned when a unit's declaration is malformed.
	ErrDeclarationParse = errors.New("failed to parse unit declaration")
	// ErrUnitPathNotFound is returned when a single-path validation target has no declaration.
	ErrUnitPathNotFound = errors.New("unit path not found")
	// ErrValidationFailed is returned when validation produced at least one message.
	ErrValidationFailed = errors.New("unit validation failed")
	// ErrGraphVerificationFailed is returned when the dependency graph has a cycle.
	ErrGraphVerificationFailed = errors.New("graph verification failed")
)

package units

import (
	"context"

	"github.com/zjrosen/govkit/internal/domain/unit"
)

// Service runs unit validation and graph verification against one repository.
type Service struct {
	loader       *Loader
	registryPath string
}

// NewService creates a Service. An empty registryPath uses DefaultRegistryPath.
func NewService(loader *Loader, registryPath string) *Service {
	if registryPath == "" {
		registryPath = DefaultRegistryPath
	}
	return &Service{loader: loader, registryPath: registryPath}
}

// RegistryPath returns the repository-relative registry path.
func (s *Service) RegistryPath() string {
	return s.registryPath
}

// LoadRegistry loads the registry. Failure is fatal to any command.
func (s *Service) LoadRegistry() (*unit.Registry, error) {
	return LoadRegistry(s.loader.FS(), s.registryPath)
}

// Validate loads the registry and validates the units in scope.
func (s *Service) Validate(ctx context.Context, scope Scope) (*ValidationResult, error) {
	reg, err := s.LoadRegistry()
	if err != nil {
		return nil, err
	}
	return Validate(ctx, s.loader, reg, scope)
}

// VerifyGraph loads the registry, independently re-loads every declaration
// and checks the dependency graph for cycles. A cycle is reported both in
// the result and as an error wrapping ErrGraphVerificationFailed.
func (s *Service) VerifyGraph(ctx context.Context) (*GraphResult, error) {
	reg, err := s.LoadRegistry()
	if err != nil {
		return nil, err
	}
	res := AnalyzeGraph(s.loader.LoadUnits(ctx, reg))
	return res, res.Err()
}

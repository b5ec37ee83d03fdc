package ports

import "github.com/aretw0/cacheflow/pkg/domain"

// PortReporter is the narrow interface a rendered step uses to report
// its ports. Steps never read or enumerate the registry.
type PortReporter interface {
	// SetPort inserts or updates a port position and reports whether the
	// registry changed. An update is suppressed when either axis equals
	// the stored position.
	SetPort(key domain.PortKey, position domain.Position) bool

	// UnsetPort removes a port and reports whether it was present.
	UnsetPort(key domain.PortKey) bool
}

// PortLookup resolves a port to its last reported position.
type PortLookup interface {
	GetPort(key domain.PortKey) (domain.Position, bool)
}

// PortRegistry is the live index of rendered port positions.
type PortRegistry interface {
	PortReporter
	PortLookup

	// Ports returns every registered port ordered by key string. The
	// order carries no meaning beyond stable output.
	Ports() []domain.PortEntry

	// Len returns the number of registered ports.
	Len() int
}

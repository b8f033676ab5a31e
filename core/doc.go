// Package core contains the host account contract, the scheme registry and the
// Service that drives account construction and token regeneration. Provider
// adapters depend on this package; core must not depend on them.
package core

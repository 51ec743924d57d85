// Package domain defines the core domain types and interfaces.
//
// Concept-oriented files (label.go, record.go, analysis.go, errors.go) hold the shared
// value types and the repository and cache contracts. No implementation code lives here.
package domain

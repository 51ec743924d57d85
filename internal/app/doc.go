// Package app provides the application service layer.
//
// Orchestrates use cases: classifying ad-hoc scores, rendering narratives, running and
// storing batch analyses, and sweeping expired ones. Sits between the HTTP handlers and
// the domain repositories and depends only on domain interfaces and the sentiment package.
package app

// Package model defines the core data structures shared by the ionogram
// packages.
//
// This package contains the following main types:
//   - SoundingHeader: Station identity and observation metadata of a sounding
//   - Layer: The ionospheric layers an operator can annotate (E, F1, F2)
//   - AnnotationSet: Critical frequency and trace points for one layer
//   - Annotations: The three annotation sets of a sounding
//   - FormatError and DomainError: Typed failures of parsing and transforms
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The parser, the annotation store, the session and the report
// writers all need these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model

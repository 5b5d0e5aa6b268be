// Package diag defines the diagnostic model shared by all catalog phases.
//
// # Purpose
//
//   - Provide deterministic data structures that capture findings produced by
//     the catalog loader, the compound expression parser, the classifier, the
//     resolver and the Go generator.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to storage or formatting.
//
// # Scope
//
// Package diag does not format for terminals or perform IO. Rendering lives in
// internal/diagfmt; orchestration lives in internal/driver.
//
// # Data model
//
// Diagnostic is the central record: {Severity, Code, Message, Primary span,
// Notes}. The span is the location, the Code is the kind. Notes carry
// secondary locations ("first declared here") and should add context rather
// than repeat the message.
//
// # Accumulation
//
// Phases never stop at the first problem. Every finding is reported through a
// Reporter and collected into a Bag; a Bag holding any error is a failed
// compilation step and Bag.Err turns it into one aggregate error. Callers
// must not assume early-exit semantics: independent flags are all attempted.
// DedupReporter suppresses identical diagnostics that arise when several
// flags walk the same broken dependency.
package diag

// Package changelog implements the news fragment merge engine for newsmerge.
//
// This package implements:
//   - Header matching driven by a project supplied title rule
//   - Fragment parsing into ordered category sections
//   - Aggregation of fragments in a deterministic file order
//   - Rendering of a new changelog entry from a header template
//   - Splicing the entry into the running changelog at an anchor
//   - Sweeping consumed fragments out of the news directory
//
// A merge run is single-threaded and strictly ordered: the changelog file is
// written once, and only after that write succeeds are fragments deleted.
package changelog

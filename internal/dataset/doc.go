// Package dataset provides the in-memory tabular data model shared by the
// cleaning pipeline: a Table of named, ordered columns whose cells are typed
// values (number, text, boolean, time, or null).
//
// Tables are passed between pipeline stages by value semantics: a stage
// receives a working copy and returns a (possibly mutated) copy, so callers
// can always compare before/after snapshots. Clone produces a deep copy.
//
// The package also provides the column/row statistics (missing percentages,
// duplicate counts, numeric summaries) that the quality scoring and the
// stages themselves are built on.
package dataset

// Package pipeline runs a fittext build over a project.
//
// A run discovers source files, expands their macro invocations in parallel,
// merges every discovered content key into the candidate table in one
// locked update, regenerates the companion accessor source from the merged
// table and writes the rewritten sources. Any call-site diagnostic aborts the
// run before the table is touched.
//
// Check runs the same stages without writing anything and fails when the
// table, the companion source or any rewritten output would change.
package pipeline

// Package preflight provides readiness checks for the directories and
// external tools a run depends on.
//
// The workflow runner calls RunAll before scanning so a run against a
// missing or read-only directory fails before any clock is read, and the
// merge orchestrator uses CheckFreeSpace before each concatenation. The
// CLI "rejoin check" command renders the same results as a table.
package preflight

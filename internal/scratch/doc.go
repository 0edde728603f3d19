// Package scratch removes files an interrupted merge left behind: concat list
// files in the scratch directory and hidden partial outputs in the output
// directory. Files younger than the cutoff are left alone because another
// state directory may share the same scratch or output directory.
package scratch

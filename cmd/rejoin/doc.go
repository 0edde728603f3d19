// Package main hosts the rejoin CLI entrypoint and command graph.
//
// Invoked with an input and an output directory, rejoin finds recordings
// that a camera split mid-take, by comparing the burnt-in clock at the end
// of one file with the start of the next, and losslessly concatenates each
// run of continuing files. Subcommands expose the individual stages (scan,
// merge, read), the persisted state, configuration scaffolding, a tool
// check, and a log viewer.
//
// Commands stay thin: they resolve configuration and flags here and hand off
// to internal/workflow.
package main

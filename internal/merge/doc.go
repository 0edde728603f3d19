// Package merge concatenates each chain into a single recording without
// re-encoding.
//
// For every chain the Orchestrator names the output after its members,
// checks that the members exist and share stream parameters, confirms the
// output directory is writable with room for the result, writes an ffmpeg
// concat list to the scratch directory and runs the Concatenator. Originals
// are only deleted once the output has been verified. A failing chain is
// reported and the remaining chains are still attempted.
package merge

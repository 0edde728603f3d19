// Package logs reads rejoin's own log file for the "rejoin logs" command.
//
// Only complete lines are returned; a line still being written is left for
// the next read. A file that shrank since the last offset is treated as
// rotated and read again from the start.
package logs

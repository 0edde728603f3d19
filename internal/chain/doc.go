// Package chain decides which adjacent recordings continue one another and
// groups them into chains.
//
// A Matcher compares the clock at the tail of one file with the clock at the
// head of the next. A Builder walks the ordered file list once, consults the
// processed set so earlier decisions are not repeated, and persists the chain
// registry after every positive match so an interrupted run resumes where it
// stopped.
package chain

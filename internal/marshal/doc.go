// Package marshal translates between the loosely typed payloads a transport
// delivers (a method name plus an argument bag) and the typed command set the
// manager executes, and encodes results back into reply envelopes.
//
// Parsing validates every field before any engine work starts, so a malformed
// request never reaches the registry. The package is pure: no I/O, no state.
package marshal

// Package numconv decodes and encodes fixed-width integers in sensor payloads.
//
// Decoders never truncate or zero-pad: a read that would run past the end of
// the buffer fails with an error wrapping ErrOutOfBounds. Feature decoders
// call Require with the full width of their record before reading fields.
package numconv

// Package features decodes and encodes the BlueST feature payloads.
//
// A Feature is one decodable capability of a board: a temperature sensor,
// a battery, the OTA control characteristic. Features are created by the
// factories from what the board advertises:
//
//	fs, err := features.ForCharacteristic(features.BoardDefault, ch, advMask, 1, 20)
//
// Each feature instance decodes notifications with Extract, builds
// characteristic writes with Pack, and interprets command responses with
// ParseResponse. Decoders never read past the end of the buffer: a short
// payload is an error wrapping numconv.ErrOutOfBounds.
//
// # Kinds
//
// The decoding behavior of a feature is its Kind. Kinds are a closed set;
// each kind has one entry in the codec table that names the decoder, the
// command packer and the response parser. Features that are known but
// whose payload is not interpreted decode as Raw samples.
//
// # Streams
//
// BinaryContent, JsonNFC and HSDataLogConfig receive their payload split
// over several notifications using STL2 framing. Each instance owns a
// reassembler; an update is produced only when a transfer completes.
package features

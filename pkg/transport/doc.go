// Package transport implements the segmentation protocol used to move
// payloads larger than one BLE characteristic write.
//
// Every frame starts with a marker byte:
//
//	0x00 START      first frame of a multi-frame transfer
//	0x20 START_END  whole transfer in one frame
//	0x40 MIDDLE     continuation
//	0x80 END        last frame
//
// Two schemes share the markers. STL2, used by the stream features (binary
// content, JSON over NFC, data log configuration), follows the marker of the
// first frame with the total length as a big-endian uint16. The audio scheme
// used by BlueVoice carries no length.
//
//	STL2, mtu = 20, 40-byte payload:
//	  [00 00 28 | 17 bytes] [40 | 19 bytes] [80 | 4 bytes]
//
// A Reassembler holds the state of one in-flight transfer. Each feature
// instance owns its own, so transfers on different features never mix.
package transport

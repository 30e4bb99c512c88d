package model

import "time"

// RawLine is one message read from the kernel ring buffer.
// It lives for a single pipeline pass and is discarded after parsing.
type RawLine struct {
	Text       string    // message text, without the kmsg record header
	KernelTime time.Time // timestamp the kernel attached to the message
	ReadAt     time.Time // when the tailer read it
}

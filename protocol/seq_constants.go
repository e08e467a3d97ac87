// Package protocol
// Author: momentics <momentics@gmail.com>
//
// Sequence-stream wire protocol constants.

package protocol

const (
	// NumSlots is the number of configurable sequences (seq1..seq3).
	NumSlots = 3

	// MaxLineLength bounds a single read_line attempt.
	MaxLineLength = 50

	// MaxCommandLength is the longest command line accepted, terminator included.
	MaxCommandLength = 17

	// MaxNumberDigits caps numeric tokens independently of the uint64 storage width.
	MaxNumberDigits = 6

	// FieldWidth is the right-justified width of each value in an output line.
	FieldWidth = 25
)

// Diagnostic lines sent to clients.
const (
	MsgMalformed     = "Error occurred parsing command. Please make sure the command is legit and try again...\n"
	MsgNothingToShow = "There's nothing to show. Abandoning...\n"
	MsgServerFull    = "Sorry, the server is full now, try again later.\n"
)

// exportCommand is the trigger line, compared byte for byte.
var exportCommand = []byte("export seq\r\n")

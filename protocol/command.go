// File: protocol/command.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Parser for the line-oriented configuration protocol:
//
//	seqK <init> <step>\n   K in 1..3, numbers of at most 6 digits
//	export seq\r\n         switch the connection to streaming
package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

// ErrMalformed matches every *ParseError via errors.Is.
var ErrMalformed = errors.New("malformed command")

// ParseError describes why a line was rejected.
type ParseError struct {
	Reason string
	Line   []byte
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed command %q: %s", e.Line, e.Reason)
}

// Is lets errors.Is(err, ErrMalformed) succeed.
func (e *ParseError) Is(target error) bool {
	return target == ErrMalformed
}

func malformed(line []byte, format string, args ...any) *ParseError {
	return &ParseError{Reason: fmt.Sprintf(format, args...), Line: bytes.Clone(line)}
}

// CommandKind enumerates the recognised commands.
type CommandKind int

const (
	// CommandConfigure sets one sequence slot.
	CommandConfigure CommandKind = iota
	// CommandExport is the trigger that switches to streaming.
	CommandExport
)

func (k CommandKind) String() string {
	switch k {
	case CommandConfigure:
		return "configure"
	case CommandExport:
		return "export"
	default:
		return "unknown"
	}
}

// Command is a successfully parsed line.
type Command struct {
	Kind CommandKind
	Slot int // 0-based, CommandConfigure only
	Init uint64
	Step uint64
}

// Parse interprets one line as returned by the line reader, terminator
// included. It never mutates anything; the caller applies the command.
func Parse(line []byte) (Command, error) {
	if len(line) > MaxCommandLength {
		return Command{}, malformed(line, "longer than %d bytes", MaxCommandLength)
	}
	if bytes.Equal(line, exportCommand) {
		return Command{Kind: CommandExport}, nil
	}

	body := trimTerminator(line)
	if bytes.Equal(body, exportCommand[:len(exportCommand)-2]) {
		return Command{}, malformed(line, "trigger must end with CRLF")
	}

	fields := bytes.Split(body, []byte{' '})
	if len(fields) != 3 {
		return Command{}, malformed(line, "want seqK <init> <step>")
	}
	slot, ok := parseSlot(fields[0])
	if !ok {
		return Command{}, malformed(line, "unknown command %q", fields[0])
	}
	initial, err := parseNumber(fields[1])
	if err != nil {
		return Command{}, malformed(line, "init: %v", err)
	}
	step, err := parseNumber(fields[2])
	if err != nil {
		return Command{}, malformed(line, "step: %v", err)
	}
	return Command{Kind: CommandConfigure, Slot: slot, Init: initial, Step: step}, nil
}

// trimTerminator strips one trailing "\r\n" or "\n". A line truncated by
// the reader or cut by end-of-stream carries none.
func trimTerminator(line []byte) []byte {
	if n := len(line); n > 0 && line[n-1] == '\n' {
		line = line[:n-1]
		if n := len(line); n > 0 && line[n-1] == '\r' {
			line = line[:n-1]
		}
	}
	return line
}

func parseSlot(tok []byte) (int, bool) {
	if len(tok) != 4 || !bytes.HasPrefix(tok, []byte("seq")) {
		return 0, false
	}
	k := tok[3]
	if k < '1' || k > '0'+NumSlots {
		return 0, false
	}
	return int(k - '1'), true
}

func parseNumber(tok []byte) (uint64, error) {
	if len(tok) == 0 {
		return 0, errors.New("missing number")
	}
	if len(tok) > MaxNumberDigits {
		return 0, fmt.Errorf("more than %d digits", MaxNumberDigits)
	}
	for _, c := range tok {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%q is not a decimal number", tok)
		}
	}
	// Cannot fail: at most 6 ASCII digits.
	return strconv.ParseUint(string(tok), 10, 64)
}

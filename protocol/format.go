// File: protocol/format.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package protocol

import "strconv"

// AppendValues appends one output line: every value right-justified in a
// FieldWidth-wide field, fields concatenated in order, '\n' terminated.
func AppendValues(dst []byte, values ...uint64) []byte {
	var digits [20]byte // len(strconv.FormatUint(math.MaxUint64, 10))
	for _, v := range values {
		d := strconv.AppendUint(digits[:0], v, 10)
		for pad := FieldWidth - len(d); pad > 0; pad-- {
			dst = append(dst, ' ')
		}
		dst = append(dst, d...)
	}
	return append(dst, '\n')
}

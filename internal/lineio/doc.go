// File: internal/lineio/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package lineio turns short, non-blocking socket reads into line-at-a-time
// delivery and provides a full-write helper. "Would block" is a first-class
// outcome rather than an error here: callers simply retry on a later pass.
package lineio

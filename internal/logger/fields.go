// File: internal/logger/fields.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package logger

// Standard attribute keys. Use them consistently so logs can be grepped
// and aggregated per connection.
const (
	KeyConnID  = "conn_id"  // per-connection uuid
	KeyRemote  = "remote"   // peer address
	KeyMode    = "mode"     // reading / writing
	KeyStatus  = "status"   // advance status
	KeyWorker  = "worker"   // worker index
	KeyWorkers = "workers"  // pool size
	KeyAddr    = "address"  // listen address
	KeyActive  = "active"   // active connection count
	KeyError   = "error"    // error value
	KeyReason  = "reason"   // parse failure reason
	KeyLine    = "line"     // offending input, quoted
)

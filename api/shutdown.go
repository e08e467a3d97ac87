// File: api/shutdown.go
// Package api defines unified graceful shutdown contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

import "context"

// GracefulShutdown объединяет логику корректного завершения компонентов.
type GracefulShutdown interface {
	// Shutdown останавливает приём соединений, дожидается воркеров
	// и освобождает ресурсы. ctx ограничивает время ожидания.
	Shutdown(ctx context.Context) error
}

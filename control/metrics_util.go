package control

import "github.com/prometheus/client_golang/prometheus"

// registerOrReuse registers c with reg, returning the already registered
// collector if an equivalent one exists.
func registerOrReuse(reg prometheus.Registerer, c prometheus.Collector) prometheus.Collector {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector
		}
		panic(err)
	}
	return c
}

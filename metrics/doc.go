// Package metrics adapts request measurements from the API client to metric
// backends.
//
// The client reports through the Sink interface. Collector exposes the data to
// Prometheus; LatencyTracker keeps HDR histograms in memory for local reports;
// Tee fans out to several sinks.
//
// Registration is explicit and independent of any client instance:
//
//	collector, err := metrics.RegisterMetrics(prometheus.DefaultRegisterer, metrics.Options{Namespace: "billing"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client, err := http.NewClient("https://billing.example.com", http.WithMetrics(collector))
package metrics

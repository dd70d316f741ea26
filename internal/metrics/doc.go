// Package metrics exports runtime activity as Prometheus metrics.
//
// A Collector implements the observer interfaces of the reactive scheduler
// (reactive.Observer), the element adapter (element.Observer) and live
// sessions (live.Observer), so one value can be wired into all three:
//
//	m := metrics.New(metrics.WithNamespace("elements"))
//	m.Install()                       // scheduler + element hooks
//	cfg := live.DefaultConfig()
//	cfg.Observer = m
//	r.Handle("/metrics", m.Handler())
//
// Metrics collected (with the default namespace):
//   - elements_flushes_total, elements_flush_rounds, elements_flush_duration_seconds
//   - elements_effects_run_total, elements_recovered_panics_total
//   - elements_setups_total{tag,status}, elements_setup_duration_seconds{tag}
//   - elements_connected{tag}
//   - elements_live_sessions, elements_live_events_total{event},
//     elements_live_event_duration_seconds{event}, elements_live_patches_sent_total,
//     elements_live_protocol_errors_total
//   - elements_http_requests_total{route,method,status},
//     elements_http_request_duration_seconds{route}
//
// Instrument and Trace wrap HTTP handlers with request metrics and
// OpenTelemetry spans respectively.
package metrics

/*
Package observability translates engine lifecycle events into Prometheus
metrics.

Collector registers its metric families on construction and hands out
ready-made lifecycle hooks via Hooks. One collector serves any number of
concurrent sessions; pair it with promhttp to expose /metrics.
*/
package observability

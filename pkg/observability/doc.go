/*
Package observability provides monitoring for cacheflow canvases.

It translates canvas lifecycle hooks into Prometheus metrics and offers a
helper to fan one set of events out to several hook sets, so logging and
metrics can observe the same canvas.
*/
package observability

// Package reidhota mediates access to the external reid-hota scoring tool.
//
// The tool is consumed as a black box: given a directory of validated
// result files and a directory of ground-truth files, it computes HOTA and
// IDF1 metrics (IoU-based always, lat/long-based when the submission
// carries geolocation values) and emits a JSON report on stdout. This
// package normalizes command invocation, enforces the configured timeout,
// and exposes a testable executor seam so the packaging pipeline can be
// exercised without the binary installed.
package reidhota

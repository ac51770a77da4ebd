// SPDX-License-Identifier: EPL-2.0

// Package metrics exposes pipeline counters to Prometheus.
//
// A Metrics value is passed as the Observer of audcap pipelines and served
// with Serve or Handler. Collectors live on a private registry, so several
// instances can coexist in tests.
package metrics

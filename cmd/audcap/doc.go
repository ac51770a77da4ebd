// SPDX-License-Identifier: EPL-2.0

// Command audcap captures audio and works with ADTS streams.
//
//	audcap devices
//	audcap record -o capture.wav -duration 10s
//	audcap record -input song.mp3 -o song.aiff
//	audcap probe -resync broken.aac
//	audcap rtp2adts -listen :5004 -o session.aac
//	audcap adts2rtp -dest 127.0.0.1:5004 session.aac
//
// Global flags come before the command: -config for a YAML file (see
// internal/config), -log-level, -log-format and -metrics to serve Prometheus
// metrics while the command runs.
package main

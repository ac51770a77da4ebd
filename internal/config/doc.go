// SPDX-License-Identifier: EPL-2.0

// Package config loads the YAML configuration of the audcap command.
//
// Load starts from Default, so a file only needs the keys it changes:
//
//	capture:
//	  device: "USB Audio"
//	  sample_rate: 48000
//	  channels: 2
//	output:
//	  sample_rate: 16000
//	  channels: 1
//	logging:
//	  level: debug
//
// Command-line flags are applied on top of the loaded file.
package config

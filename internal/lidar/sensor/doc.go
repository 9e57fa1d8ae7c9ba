// Package sensor is the simulated Livox sensor: it loads the scan pattern,
// seeds the host's multi-ray collision primitive, and on every tick selects,
// redirects and reads back the rays to publish one frame.
//
// A Sensor is driven by a single tick loop and is not safe for concurrent
// use. Its configuration is fixed at New; to reconfigure, build a new one.
package sensor

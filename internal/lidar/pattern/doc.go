// Package pattern owns the scan-pattern table of the simulated sensor.
//
// Responsibilities: reading the tabulated (time, azimuth, zenith) samples
// that approximate the device's non-repetitive beam trajectory, converting
// them to radians in the simulator's right-handed convention, and
// resolving package:// table locations.
// Key types: RotateSample, ScanPattern.
//
// Dependency rule: pattern depends on nothing else under internal/lidar.
package pattern

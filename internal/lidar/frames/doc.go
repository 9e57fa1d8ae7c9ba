// Package frames assembles one tick's ray-cast results into the sensor's
// output frame: a point cloud in the sensor frame plus the legacy
// range-scan record.
//
// A range outside (RangeMin, RangeMax) is reported as 0, the "no return"
// sentinel, and its point collapses to the sensor origin. Such points are
// kept so that point order matches ray order; consumers filter them.
//
// The legacy scan grid is shaped from configuration only and every cell is
// zero. Downstream tools rely on its dimensions, not its contents.
package frames

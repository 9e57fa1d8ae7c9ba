// Package collision defines the multi-ray collision primitive the sensor
// drives each frame, and a reference implementation that intersects rays
// with simple analytic geometry.
//
// The primitive owns a fixed set of ray slots. Slots are added once at
// initialisation, redirected every frame with SetPoints, tested together by
// Update, and read back with Range and Retro.
package collision

package frames

// RangeBounds are the exclusive bounds a range must fall within to count
// as a return.
type RangeBounds struct {
	Min, Max float64
}

// Clamp maps r to the sentinel 0 when it is not strictly inside the bounds.
func (b RangeBounds) Clamp(r float64) float64 {
	if r >= b.Max || r <= b.Min {
		return 0
	}
	return r
}

// AxisSpec describes one axis of the legacy scan grid.
type AxisSpec struct {
	Samples    int
	Resolution float64
	MinAngle   float64 // radians
	MaxAngle   float64 // radians
}

// Count returns the number of grid cells along the axis, samples scaled by
// resolution and truncated.
func (a AxisSpec) Count() int {
	n := int(float64(a.Samples) * a.Resolution)
	if n < 0 {
		return 0
	}
	return n
}

// Step returns the angular spacing between cells, 0 when there are fewer
// than two cells.
func (a AxisSpec) Step() float64 {
	n := a.Count()
	if n <= 1 {
		return 0
	}
	return (a.MaxAngle - a.MinAngle) / float64(n-1)
}

// GridSpec shapes the legacy scan record.
type GridSpec struct {
	Horizontal AxisSpec
	Vertical   AxisSpec

	// RangeResolution is the advertised range quantum in metres. It is
	// reported, not applied to ranges.
	RangeResolution float64
}

// LaserScan is the legacy range-scan record.
type LaserScan struct {
	AngleMin, AngleMax, AngleStep float64
	Count                         int

	VerticalAngleMin, VerticalAngleMax, VerticalAngleStep float64
	VerticalCount                                         int

	RangeMin, RangeMax float64
	RangeResolution    float64

	Ranges      []float64 // Count*VerticalCount cells, row-major by vertical index
	Intensities []float64
}

// NewLaserScan builds the placeholder scan record for the given grid and
// bounds. All cells are zero.
func NewLaserScan(grid GridSpec, bounds RangeBounds) LaserScan {
	h, v := grid.Horizontal, grid.Vertical
	cells := h.Count() * v.Count()
	return LaserScan{
		AngleMin:          h.MinAngle,
		AngleMax:          h.MaxAngle,
		AngleStep:         h.Step(),
		Count:             h.Count(),
		VerticalAngleMin:  v.MinAngle,
		VerticalAngleMax:  v.MaxAngle,
		VerticalAngleStep: v.Step(),
		VerticalCount:     v.Count(),
		RangeMin:          bounds.Min,
		RangeMax:          bounds.Max,
		RangeResolution:   grid.RangeResolution,
		Ranges:            make([]float64, cells),
		Intensities:       make([]float64, cells),
	}
}

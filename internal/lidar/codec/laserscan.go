package codec

// SplitLaserScan cuts ls into self-contained scans of at most maxCells grid
// cells each. Chunks are whole vertical rows when a row fits, otherwise
// column runs of a single row. Angle bounds and counts are narrowed to the
// cells a chunk carries; steps are unchanged. A non-positive maxCells, or a
// scan whose cell slices do not match its counts, returns ls unchanged.
func SplitLaserScan(ls *LaserScanStamped, maxCells int) []*LaserScanStamped {
	if ls == nil {
		return nil
	}
	s := ls.Scan
	cells := s.Count * s.VerticalCount
	if maxCells <= 0 || cells <= maxCells ||
		len(s.Ranges) != cells || len(s.Intensities) != cells {
		return []*LaserScanStamped{ls}
	}

	var out []*LaserScanStamped
	if s.Count <= maxCells {
		rows := maxCells / s.Count
		for r0 := 0; r0 < s.VerticalCount; r0 += rows {
			r1 := min(r0+rows, s.VerticalCount)
			out = append(out, scanChunk(ls, r0, r1, 0, s.Count))
		}
		return out
	}
	for r := 0; r < s.VerticalCount; r++ {
		for c0 := 0; c0 < s.Count; c0 += maxCells {
			out = append(out, scanChunk(ls, r, r+1, c0, min(c0+maxCells, s.Count)))
		}
	}
	return out
}

// scanChunk copies rows [r0, r1) and columns [c0, c1) of ls.
func scanChunk(ls *LaserScanStamped, r0, r1, c0, c1 int) *LaserScanStamped {
	s := ls.Scan
	cs := s
	cs.AngleMin = s.AngleMin + float64(c0)*s.AngleStep
	cs.AngleMax = s.AngleMin + float64(c1-1)*s.AngleStep
	cs.Count = c1 - c0
	cs.VerticalAngleMin = s.VerticalAngleMin + float64(r0)*s.VerticalAngleStep
	cs.VerticalAngleMax = s.VerticalAngleMin + float64(r1-1)*s.VerticalAngleStep
	cs.VerticalCount = r1 - r0

	n := cs.Count * cs.VerticalCount
	cs.Ranges = make([]float64, 0, n)
	cs.Intensities = make([]float64, 0, n)
	for r := r0; r < r1; r++ {
		lo, hi := r*s.Count+c0, r*s.Count+c1
		cs.Ranges = append(cs.Ranges, s.Ranges[lo:hi]...)
		cs.Intensities = append(cs.Intensities, s.Intensities[lo:hi]...)
	}

	chunk := *ls
	chunk.Scan = cs
	return &chunk
}

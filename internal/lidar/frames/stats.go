package frames

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds per-frame scan statistics.
type Summary struct {
	Points        int
	Returns       int
	HitRatio      float64
	MeanRange     float64
	StdDevRange   float64
	MinRange      float64
	MaxRange      float64
	MeanIntensity float64
}

// Summarize computes range statistics over the valid returns of f.
func Summarize(f *Frame) Summary {
	if f == nil {
		return Summary{}
	}
	s := Summary{Points: len(f.Points)}
	if len(f.Ranges) == 0 {
		return s
	}

	ranges := make([]float64, 0, len(f.Ranges))
	intensities := make([]float64, 0, len(f.Ranges))
	for i, r := range f.Ranges {
		if r > 0 {
			ranges = append(ranges, r)
			intensities = append(intensities, f.Intensities[i])
		}
	}
	s.Returns = len(ranges)
	s.HitRatio = float64(s.Returns) / float64(s.Points)
	if s.Returns == 0 {
		return s
	}

	s.MinRange = floats.Min(ranges)
	s.MaxRange = floats.Max(ranges)
	s.MeanIntensity = stat.Mean(intensities, nil)
	if s.Returns == 1 {
		s.MeanRange = ranges[0]
		return s
	}
	s.MeanRange, s.StdDevRange = stat.MeanStdDev(ranges, nil)
	return s
}

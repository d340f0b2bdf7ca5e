// Package analysis derives time series from a trace.
//
//   - [OccupancySeries]: occupied seats or cells per step
//   - [PresenceSeries]: agents with a usable record per step
//   - [DominantPeriod]: the strongest cycle length of a series
//
// # Detecting gridlock cycles
//
// A trace whose agents keep circling the same seats shows a sharp peak in
// the occupancy spectrum:
//
//	p := analysis.DominantPeriod(analysis.OccupancySeries(tr))
//	if p > 0 {
//	    // occupancy repeats every p steps
//	}
package analysis

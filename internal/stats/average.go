package stats

import "math"

// Round1 rounds to one decimal place, half away from zero. All surfaced
// averages go through this so 2.25 reads as 2.3, not 2.2.
func Round1(x float64) float64 {
	if x >= 0 {
		return math.Floor(x*10+0.5) / 10
	}
	return math.Ceil(x*10-0.5) / 10
}

// Mean averages the present values, ignoring absent entries entirely: the
// divisor is the count of present values, not the slice length. A slice
// with no present values has no mean (ok=false), which is different from a
// mean of zero.
func Mean(vals []*int) (mean float64, ok bool) {
	sum, count := 0, 0
	for _, v := range vals {
		if v == nil {
			continue
		}
		sum += *v
		count++
	}
	if count == 0 {
		return 0, false
	}
	return Round1(float64(sum) / float64(count)), true
}

// meanInts averages a slice of required values. ok=false when empty.
func meanInts(vals []int) (mean float64, ok bool) {
	if len(vals) == 0 {
		return 0, false
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return Round1(float64(sum) / float64(len(vals))), true
}

package renderer

// Lerp performs linear interpolation between a and b
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Clamp limits v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// EaseOutQuad decelerates towards t=1
func EaseOutQuad(t float64) float64 {
	t = Clamp(t, 0, 1)
	return 1 - (1-t)*(1-t)
}

// Progress returns frame/total in [0, 1]
func Progress(frame, total int) float64 {
	if total <= 0 {
		return 0
	}
	return Clamp(float64(frame)/float64(total), 0, 1)
}

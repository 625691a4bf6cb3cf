package classifier

import "math"

func expf(v float32) float32 {
	return float32(math.Exp(float64(v)))
}

package feed

import (
	"math"
	"time"
)

// Confidence bounds for simulated predictions.
const (
	MinConfidence = 0.70
	MaxConfidence = 1.00
)

// maxBelowOne is the largest float64 strictly less than MaxConfidence.
var maxBelowOne = math.Nextafter(MaxConfidence, 0)

// Source supplies uniform random draws in [0, 1).
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	Float64() float64
}

// Prediction is a single simulated classification result.
type Prediction struct {
	Label      string    `json:"label"`
	Confidence float64   `json:"confidence"`
	At         time.Time `json:"at"`
}

// Percent returns the confidence as a rounded whole percentage.
// Confidences of 0.995 and above display as 100.
func (p Prediction) Percent() int {
	return int(math.Round(p.Confidence * 100))
}

// Draw picks a label uniformly from labels, then a confidence uniformly
// from [MinConfidence, MaxConfidence). labels must not be empty.
func Draw(src Source, labels []string) Prediction {
	idx := int(src.Float64() * float64(len(labels)))
	if idx >= len(labels) {
		idx = len(labels) - 1
	}
	if idx < 0 {
		idx = 0
	}

	conf := MinConfidence + src.Float64()*(MaxConfidence-MinConfidence)
	if conf >= MaxConfidence {
		conf = maxBelowOne
	}
	if conf < MinConfidence {
		conf = MinConfidence
	}

	return Prediction{
		Label:      labels[idx],
		Confidence: conf,
	}
}

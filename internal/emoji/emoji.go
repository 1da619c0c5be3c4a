package emoji

import (
	"fmt"
	"math"
	"strings"

	"github.com/drakos74/free-learn/internal/model"
)

// https://unicode.org/emoji/charts/full-emoji-list.html
const (
	HalfEclipse = "🌓"

	ThirdEclipse = "🌒"
	FullEclipse  = "🌑"
	EclipseFace  = "🌚"
	Comet        = "🪐"

	FirstEclipse = "🌔"
	FullMoon     = "🌕"
	SunFace      = "🌞"
	Star         = "🌟"

	Zero = "🥜"
	Down = "🐞"
	Up   = "🦠"

	Error = "🚫"
)

// MapToSentiment maps the given float value according to it's sign.
func MapToSentiment(f float64) string {
	emo := Zero
	if f > 0 {
		emo = Up
	} else if f < 0 {
		emo = Down
	}
	return emo
}

// MapValue maps the given value to an emoji
// it returns valuable results for values between [-5,5]
func MapValue(value float64) string {
	if value >= 4 {
		return Star
	} else if value >= 3 {
		return SunFace
	} else if value >= 2 {
		return FullMoon
	} else if value >= 1 {
		return FirstEclipse
	} else if value <= -4 {
		return Comet
	} else if value <= -3 {
		return EclipseFace
	} else if value <= -2 {
		return FullEclipse
	} else if value <= -1 {
		return ThirdEclipse
	}
	return HalfEclipse
}

// MapConfidence maps a probability to the moon scale, from a comet for 0 to a star for 1.
func MapConfidence(p float64) string {
	if math.IsNaN(p) {
		return Error
	}
	return MapValue(10*p - 5)
}

// Prediction prints the prediction with its confidence.
func Prediction(p model.Prediction) string {
	pp := make([]string, len(p.Probabilities))
	for i, v := range p.Probabilities {
		pp[i] = MapConfidence(v)
	}
	return fmt.Sprintf("%s %s (%.2f) [%s]", MapConfidence(p.Confidence), p.Name, p.Confidence, strings.Join(pp, " "))
}

// Progress prints the batch report with the trend of the loss against the previous report.
func Progress(p, previous model.Progress) string {
	if p.Anomaly {
		return fmt.Sprintf("%s %s", Error, p)
	}
	return fmt.Sprintf("%s %s", MapToSentiment(p.Loss-previous.Loss), p)
}

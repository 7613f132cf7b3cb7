package flow

import (
	"math/rand/v2"

	"rscasurvey/internal/model"
)

// BuildSequence shuffles the first prefix questions uniformly and appends the rest in bank order.
// The input slice is not modified.
func BuildSequence(questions []model.Question, prefix int, rng *rand.Rand) []model.Question {
	out := make([]model.Question, len(questions))
	copy(out, questions)
	if prefix > len(out) {
		prefix = len(out)
	}
	// Fisher-Yates over out[:prefix]
	for i := prefix - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

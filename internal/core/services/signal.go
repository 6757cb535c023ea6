package services

import (
	"math/rand/v2"

	"github.com/vbilous/signalbot/internal/core/domain"
)

// Easy and medium levels are weighted to come up most of the time.
var weightedLevels = []domain.SignalLevel{
	domain.LevelEasy, domain.LevelEasy, domain.LevelEasy, domain.LevelEasy, domain.LevelEasy,
	domain.LevelMedium, domain.LevelMedium, domain.LevelMedium, domain.LevelMedium,
	domain.LevelHard,
	domain.LevelExtraHard,
}

var stepRanges = map[domain.SignalLevel][2]int{
	domain.LevelEasy:      {10, 30},
	domain.LevelMedium:    {5, 9},
	domain.LevelHard:      {1, 4},
	domain.LevelExtraHard: {1, 3},
}

// GenerateSignal picks a random level and a step count within that level's
// range. There is no prediction behind it; the output is decorative.
func GenerateSignal() domain.Signal {
	level := weightedLevels[rand.IntN(len(weightedLevels))]
	r := stepRanges[level]
	steps := r[0] + rand.IntN(r[1]-r[0]+1)
	return domain.Signal{Level: level, Steps: steps}
}

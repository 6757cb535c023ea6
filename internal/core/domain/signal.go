package domain

// SignalLevel is the difficulty tier attached to a generated signal.
type SignalLevel string

const (
	LevelEasy      SignalLevel = "easy"
	LevelMedium    SignalLevel = "medium"
	LevelHard      SignalLevel = "hard"
	LevelExtraHard SignalLevel = "extra_hard"
)

// Signal is one randomized feature output: a step count and its level.
type Signal struct {
	Level SignalLevel `json:"level"`
	Steps int         `json:"steps"`
}

package services

import (
	"testing"

	"github.com/vbilous/signalbot/internal/core/domain"
)

func TestGenerateSignalStaysInRange(t *testing.T) {
	seen := make(map[domain.SignalLevel]bool)

	for i := 0; i < 2000; i++ {
		sig := GenerateSignal()
		r, ok := stepRanges[sig.Level]
		if !ok {
			t.Fatalf("unknown level %q", sig.Level)
		}
		if sig.Steps < r[0] || sig.Steps > r[1] {
			t.Fatalf("level %s produced %d steps, want within [%d, %d]", sig.Level, sig.Steps, r[0], r[1])
		}
		seen[sig.Level] = true
	}

	// 2000 draws make missing the common levels astronomically unlikely.
	if !seen[domain.LevelEasy] || !seen[domain.LevelMedium] {
		t.Error("expected easy and medium levels to appear")
	}
}

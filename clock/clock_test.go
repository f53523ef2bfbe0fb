package clock

import (
	"testing"
	"time"
)

func TestManualAdvance(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewManual(start)
	if !m.Now().Equal(start) {
		t.Fatalf("Now() = %v, want %v", m.Now(), start)
	}
	m.Advance(5 * time.Second)
	want := start.Add(5 * time.Second)
	if !m.Now().Equal(want) {
		t.Errorf("after Advance, Now() = %v, want %v", m.Now(), want)
	}
}

func TestManualSetTime(t *testing.T) {
	m := NewManual(time.Unix(0, 0))
	target := time.Unix(1000, 0)
	m.SetTime(target)
	if !m.Now().Equal(target) {
		t.Errorf("Now() = %v, want %v", m.Now(), target)
	}
}

func TestTicksSinceTracksElapsed(t *testing.T) {
	var ticks Ticks
	mark := ticks.Mark()
	for i := 0; i < 1000; i++ {
		ticks.Advance()
	}
	if got := ticks.Since(mark); got != 1000 {
		t.Errorf("Since(mark) = %d, want 1000", got)
	}
}

func TestTicksReset(t *testing.T) {
	var ticks Ticks
	ticks.Advance()
	ticks.Advance()
	ticks.Reset()
	if ticks.Mark() != 0 {
		t.Errorf("Mark() after Reset = %d, want 0", ticks.Mark())
	}
}

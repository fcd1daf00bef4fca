package clock

import (
	"testing"
	"time"
)

func TestFastClockAdvances(t *testing.T) {
	c := New(time.Millisecond)
	defer c.Stop()
	first := c.NowNs()
	time.Sleep(20 * time.Millisecond)
	second := c.NowNs()
	if second <= first {
		t.Fatalf("clock did not advance: first=%d second=%d", first, second)
	}
}

package pacer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIntervalPacerEnforcesMinimumGap(t *testing.T) {
	p := NewIntervalPacer(30*time.Millisecond, 30*time.Millisecond)

	start := time.Now()
	p.Wait()
	p.Wait()
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 60*time.Millisecond)
}

func TestBudgetPacerAllowsUpToLimitWithoutSleep(t *testing.T) {
	p := NewBudgetPacer(3)

	start := time.Now()
	p.Wait()
	p.Wait()
	p.Wait()
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 50*time.Millisecond)
	assert.Equal(t, 3, p.count)
}

func TestBudgetPacerResetsOnNewWindow(t *testing.T) {
	p := NewBudgetPacer(1)
	p.Wait()
	assert.Equal(t, 1, p.count)

	// Simulate the window having rolled over already.
	p.mu.Lock()
	p.windowStart = time.Now().Add(-2 * time.Minute)
	p.mu.Unlock()

	p.Wait()
	assert.Equal(t, 1, p.count)
}

package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReal_Now(t *testing.T) {
	before := time.Now()
	actual := Real{}.Now()
	after := time.Now()

	assert.False(t, actual.Before(before))
	assert.False(t, actual.After(after))
}

func TestReal_AfterFunc(t *testing.T) {
	fired := make(chan struct{})
	Real{}.AfterFunc(time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
}

func TestFake_AdvanceFiresInDeadlineOrder(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewFake(start)

	var order []string
	var firedAt []time.Time
	c.AfterFunc(3*time.Second, func() {
		order = append(order, "c")
		firedAt = append(firedAt, c.Now())
	})
	c.AfterFunc(1*time.Second, func() {
		order = append(order, "a")
		firedAt = append(firedAt, c.Now())
	})
	c.AfterFunc(2*time.Second, func() {
		order = append(order, "b")
		firedAt = append(firedAt, c.Now())
	})

	c.Advance(2 * time.Second)
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, 1, c.Pending())

	c.Advance(5 * time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, start.Add(3*time.Second), firedAt[2])
	assert.Equal(t, start.Add(7*time.Second), c.Now())
}

func TestFake_Stop(t *testing.T) {
	c := NewFake(time.Unix(0, 0))

	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop(), "second stop reports already stopped")

	c.Advance(time.Minute)
	assert.False(t, fired)
	assert.Zero(t, c.Pending())
}

func TestFake_CallbackCanScheduleTimers(t *testing.T) {
	c := NewFake(time.Unix(0, 0))

	count := 0
	var tick func()
	tick = func() {
		count++
		if count < 3 {
			c.AfterFunc(time.Second, tick)
		}
	}
	c.AfterFunc(time.Second, tick)

	c.Advance(10 * time.Second)
	assert.Equal(t, 3, count)
}

package sensor

import (
	"fmt"
	"testing"

	"github.com/stianeikeland/go-rpio/v4"
	"github.com/stretchr/testify/assert"
)

func on() Reading  { return Reading{Value: true} }
func off() Reading { return Reading{Value: false} }

func ExampleTrigger() {
	var trigger Trigger
	for _, v := range []bool{false, true, true, true, false, true} {
		fmt.Print(trigger.Observe(Reading{Value: v}, false), " ")
	}
	fmt.Println()
	// Output:
	// false true false false false true
}

func TestTriggerFiresOnRisingEdge(t *testing.T) {
	var trigger Trigger
	assert.False(t, trigger.Observe(off(), false))
	assert.True(t, trigger.Observe(on(), false))
	assert.False(t, trigger.Observe(on(), false))
	assert.False(t, trigger.Observe(off(), false))
	assert.True(t, trigger.Observe(on(), false))
}

func TestTriggerFirstReadingHigh(t *testing.T) {
	var trigger Trigger
	assert.True(t, trigger.Observe(on(), false))
}

func TestTriggerSuppressedWhileRecording(t *testing.T) {
	var trigger Trigger
	assert.False(t, trigger.Observe(on(), true))
	// previous reading still tracked, so no late fire once recording ends
	assert.False(t, trigger.Observe(on(), false))
	assert.True(t, trigger.Previous().Value)
	assert.False(t, trigger.Observe(off(), false))
	assert.True(t, trigger.Observe(on(), false))
}

func TestTriggerReset(t *testing.T) {
	var trigger Trigger
	assert.True(t, trigger.Observe(on(), false))
	trigger.Reset(off())
	assert.False(t, trigger.Previous().Value)
	assert.True(t, trigger.Observe(on(), false))
}

func TestLatch(t *testing.T) {
	latch := NewLatch()
	r, err := latch.Poll()
	assert.NoError(t, err)
	assert.False(t, r.Value)

	latch.Pulse()
	latch.Pulse()
	r, _ = latch.Poll()
	assert.True(t, r.Value)
	r, _ = latch.Poll()
	assert.False(t, r.Value)
	assert.NoError(t, latch.Close())
}

func TestLatchRepeatedPulsesRetrigger(t *testing.T) {
	latch := NewLatch()
	var trigger Trigger
	fired := 0
	for i := 0; i < 3; i++ {
		latch.Pulse()
		r, _ := latch.Poll()
		if trigger.Observe(r, false) {
			fired++
		}
		r, _ = latch.Poll()
		trigger.Observe(r, false)
	}
	assert.Equal(t, 3, fired)
}

type fakePin struct {
	states []rpio.State
}

func (p *fakePin) Read() rpio.State {
	s := p.states[0]
	if len(p.states) > 1 {
		p.states = p.states[1:]
	}
	return s
}

func TestGPIO(t *testing.T) {
	g := NewGPIO(&fakePin{states: []rpio.State{rpio.Low, rpio.High, rpio.High}})
	var got []bool
	for i := 0; i < 3; i++ {
		r, err := g.Poll()
		assert.NoError(t, err)
		got = append(got, r.Value)
	}
	assert.Equal(t, []bool{false, true, true}, got)
	assert.NoError(t, g.Close())
}

func TestOpenGPIOInvalidPin(t *testing.T) {
	_, err := OpenGPIO(42, PullUp)
	assert.Error(t, err)
}

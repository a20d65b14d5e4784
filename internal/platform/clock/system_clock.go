package clock

import "time"

type SystemClock struct{}

func NewSystemClock() SystemClock {
	return SystemClock{}
}

func (SystemClock) Agora() time.Time {
	return time.Now().UTC()
}

// Func adapta uma função comum ao domain.Clock.
type Func func() time.Time

func (f Func) Agora() time.Time {
	return f()
}

package sim

// Stepper turns variable frame times into a whole number of fixed ticks.
// Time that does not fill a tick carries over to the next frame; when a frame
// owes more than maxCatchUp ticks the surplus is dropped so a stall cannot
// snowball into ever longer frames.
type Stepper struct {
	dt         float64
	maxCatchUp int
	acc        float64
	dropped    int64
}

// NewStepper creates a stepper for ticks of dt seconds.
// maxCatchUp <= 0 allows one tick per frame.
func NewStepper(dt float64, maxCatchUp int) *Stepper {
	if maxCatchUp <= 0 {
		maxCatchUp = 1
	}
	return &Stepper{dt: dt, maxCatchUp: maxCatchUp}
}

// Advance adds elapsed seconds and returns how many ticks to run now.
func (st *Stepper) Advance(elapsed float64) int {
	if elapsed > 0 {
		st.acc += elapsed
	}
	n := int(st.acc / st.dt)
	if n > st.maxCatchUp {
		st.dropped += int64(n - st.maxCatchUp)
		n = st.maxCatchUp
		st.acc = 0
		return n
	}
	st.acc -= float64(n) * st.dt
	return n
}

// Alpha returns how far the carried-over time reaches into the next tick, in [0, 1).
func (st *Stepper) Alpha() float64 {
	return st.acc / st.dt
}

// Dropped returns the total number of ticks discarded by the catch-up cap.
func (st *Stepper) Dropped() int64 {
	return st.dropped
}

package threshold

// Crossing is emitted when the subtotal moves from below the free-delivery
// threshold to at or above it between two observations.
type Crossing struct {
	Previous  float64
	Current   float64
	Threshold float64
}

// Detector remembers the previously observed subtotal. The first
// observation only primes it, so a cart that is already above the
// threshold when loaded does not produce an event.
type Detector struct {
	threshold float64
	previous  float64
	primed    bool
	observers []func(Crossing)
}

func NewDetector(threshold float64) *Detector {
	return &Detector{threshold: threshold}
}

// Subscribe registers fn to be called synchronously for every crossing.
func (d *Detector) Subscribe(fn func(Crossing)) {
	d.observers = append(d.observers, fn)
}

// Observe records subtotal and reports whether it completes an upward
// crossing.
func (d *Detector) Observe(subtotal float64) bool {
	if !d.primed {
		d.primed = true
		d.previous = subtotal
		return false
	}

	crossed := d.previous < d.threshold && subtotal >= d.threshold
	event := Crossing{Previous: d.previous, Current: subtotal, Threshold: d.threshold}
	d.previous = subtotal

	if crossed {
		for _, fn := range d.observers {
			fn(event)
		}
	}
	return crossed
}

func (d *Detector) Threshold() float64 {
	return d.threshold
}

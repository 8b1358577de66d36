package timing

// Measurement holds the recorded durations (milliseconds) for one timer
// name. A measurement starts out as a single scalar value and is promoted
// to a series when a second run is recorded. Promotion never reverts:
// overwriting the last value keeps the current shape.
type Measurement struct {
	values []int64
}

// Record appends a completed run. The first value becomes the scalar,
// the second promotes the measurement to a series.
func (m *Measurement) Record(v int64) {
	m.values = append(m.values, v)
}

// OverwriteLast replaces the most recent run without changing the shape.
// Overwriting an empty measurement records the value instead.
func (m *Measurement) OverwriteLast(v int64) {
	if len(m.values) == 0 {
		m.values = append(m.values, v)
		return
	}
	m.values[len(m.values)-1] = v
}

// IsSeries reports whether the measurement has been promoted to an
// ordered sequence of runs.
func (m *Measurement) IsSeries() bool {
	return len(m.values) > 1
}

// Count returns the number of recorded runs.
func (m *Measurement) Count() int {
	return len(m.values)
}

// Value returns the scalar value (the first recorded run).
func (m *Measurement) Value() int64 {
	if len(m.values) == 0 {
		return 0
	}
	return m.values[0]
}

// Last returns the most recent run.
func (m *Measurement) Last() int64 {
	if len(m.values) == 0 {
		return 0
	}
	return m.values[len(m.values)-1]
}

// Values returns a copy of all recorded runs in recording order.
func (m *Measurement) Values() []int64 {
	out := make([]int64, len(m.values))
	copy(out, m.values)
	return out
}

// Total returns the sum of all recorded runs.
func (m *Measurement) Total() int64 {
	var sum int64
	for _, v := range m.values {
		sum += v
	}
	return sum
}

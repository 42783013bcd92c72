// Package status derives the user's isolation state from dated inputs:
// exposure notices, self-reported symptoms, and test results. The model is
// pure; every constructor takes the evaluation date explicitly.
package status

import "time"

const (
	// DaysInSymptomatic is how long isolation lasts after symptom onset.
	DaysInSymptomatic = 7
	// DaysInExposed is the length of the exposure window.
	DaysInExposed = 14
)

// DisplayState is what the UI layer renders for a state.
type DisplayState string

const (
	DisplayOK      DisplayState = "OK"
	DisplayAtRisk  DisplayState = "AT_RISK"
	DisplayIsolate DisplayState = "ISOLATE"
)

// Reminders schedules a future check-in notification. Fulfilled by the
// reminders package; external to this model.
type Reminders interface {
	ScheduleCheckInReminder(at time.Time)
}

// UserState is the closed set of isolation states. Values are immutable;
// re-evaluation constructs a new state instead of mutating one.
type UserState interface {
	// Since is the start of the governing period; nil only for Default.
	Since() *time.Time
	// Until is the end of the governing period; nil only for Default.
	Until() *time.Time
	// HasExpired reports whether Until is strictly before now. A state
	// without an Until never expires.
	HasExpired(now time.Time) bool
	// DisplayState maps the state onto what the user is shown.
	DisplayState() DisplayState
	// Symptoms returns the reported symptoms; empty for Default and Exposed.
	Symptoms() []Symptom

	isUserState()
}

// DefaultState is the initial state: no exposure, no symptoms.
type DefaultState struct{}

// ExposedState covers the 14-day window after contact with a symptomatic
// peer.
type ExposedState struct {
	since time.Time
	until time.Time
}

// SymptomaticState is entered when the user first reports symptoms. The user
// is prompted to check in when it ends.
type SymptomaticState struct {
	since    time.Time
	until    time.Time
	symptoms Symptoms
}

// CheckinState follows the first check-in from SymptomaticState and is not
// prompted again.
type CheckinState struct {
	since    time.Time
	until    time.Time
	symptoms Symptoms
}

// PositiveState is entered on a positive test result.
type PositiveState struct {
	since    time.Time
	until    time.Time
	symptoms Symptoms
}

// Default returns the initial state.
func Default() DefaultState {
	return DefaultState{}
}

// Exposed starts a 14-day exposure window on the day of notification:
// from 07:00 UTC that day until the end of the thirteenth day after it.
func Exposed(today time.Time) ExposedState {
	return ExposedState{
		since: atSevenAM(today),
		until: endOfDay(addDays(today, DaysInExposed-1)),
	}
}

// Checkin extends an isolation period by one day pending re-check.
func Checkin(since time.Time, symptoms Symptoms, today time.Time) (CheckinState, error) {
	if symptoms.IsEmpty() {
		return CheckinState{}, ErrNoSymptoms
	}
	return CheckinState{
		since:    since,
		until:    atSevenAM(addDays(today, 1)),
		symptoms: symptoms,
	}, nil
}

// Symptomatic starts isolation at symptom onset. Isolation lasts seven days
// from onset, but never ends before tomorrow: a late report still isolates
// the user until at least the next day.
func Symptomatic(symptomsDate time.Time, symptoms Symptoms, today time.Time) (SymptomaticState, error) {
	if symptoms.IsEmpty() {
		return SymptomaticState{}, ErrNoSymptoms
	}
	suggested := atSevenAM(addDays(symptomsDate, DaysInSymptomatic))
	tomorrow := atSevenAM(addDays(today, 1))
	return SymptomaticState{
		since:    atSevenAM(symptomsDate),
		until:    latest(suggested, tomorrow),
		symptoms: symptoms,
	}, nil
}

// Positive starts isolation at the test date, with the same tie-break as
// Symptomatic keyed off the test's calendar date.
func Positive(testDate time.Time, symptoms Symptoms, today time.Time) (PositiveState, error) {
	if symptoms.IsEmpty() {
		return PositiveState{}, ErrNoSymptoms
	}
	suggested := atSevenAM(addDays(testDate, DaysInSymptomatic))
	tomorrow := atSevenAM(addDays(today, 1))
	return PositiveState{
		since:    atSevenAM(testDate),
		until:    latest(suggested, tomorrow),
		symptoms: symptoms,
	}, nil
}

func (DefaultState) Since() *time.Time { return nil }
func (DefaultState) Until() *time.Time { return nil }
func (DefaultState) HasExpired(time.Time) bool { return false }
func (DefaultState) DisplayState() DisplayState { return DisplayOK }
func (DefaultState) Symptoms() []Symptom { return nil }
func (DefaultState) isUserState() {}
func (DefaultState) String() string { return "DefaultState" }

func (s ExposedState) Since() *time.Time { return timePtr(s.since) }
func (s ExposedState) Until() *time.Time { return timePtr(s.until) }
func (s ExposedState) HasExpired(now time.Time) bool { return s.until.Before(now) }
func (ExposedState) DisplayState() DisplayState { return DisplayAtRisk }
func (ExposedState) Symptoms() []Symptom { return nil }
func (ExposedState) isUserState() {}

func (s SymptomaticState) Since() *time.Time { return timePtr(s.since) }
func (s SymptomaticState) Until() *time.Time { return timePtr(s.until) }
func (s SymptomaticState) HasExpired(now time.Time) bool { return s.until.Before(now) }
func (SymptomaticState) DisplayState() DisplayState { return DisplayIsolate }
func (s SymptomaticState) Symptoms() []Symptom { return s.symptoms.Slice() }
func (SymptomaticState) isUserState() {}

func (s CheckinState) Since() *time.Time { return timePtr(s.since) }
func (s CheckinState) Until() *time.Time { return timePtr(s.until) }
func (s CheckinState) HasExpired(now time.Time) bool { return s.until.Before(now) }
func (CheckinState) DisplayState() DisplayState { return DisplayIsolate }
func (s CheckinState) Symptoms() []Symptom { return s.symptoms.Slice() }
func (CheckinState) isUserState() {}

func (s PositiveState) Since() *time.Time { return timePtr(s.since) }
func (s PositiveState) Until() *time.Time { return timePtr(s.until) }
func (s PositiveState) HasExpired(now time.Time) bool { return s.until.Before(now) }
func (PositiveState) DisplayState() DisplayState { return DisplayIsolate }
func (s PositiveState) Symptoms() []Symptom { return s.symptoms.Slice() }
func (PositiveState) isUserState() {}

// ScheduleCheckInReminder asks the reminder port to fire when the isolation
// period ends. Only unexpired Symptomatic and Positive states prompt a
// check-in; everything else is a no-op.
func ScheduleCheckInReminder(state UserState, reminders Reminders, now time.Time) {
	switch s := state.(type) {
	case SymptomaticState:
		if !s.HasExpired(now) {
			reminders.ScheduleCheckInReminder(s.until)
		}
	case PositiveState:
		if !s.HasExpired(now) {
			reminders.ScheduleCheckInReminder(s.until)
		}
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}

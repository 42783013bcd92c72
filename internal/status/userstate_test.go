package status

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func utcDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestDefaultState(t *testing.T) {
	state := Default()

	assert.Nil(t, state.Since())
	assert.Nil(t, state.Until())
	assert.False(t, state.HasExpired(time.Now()))
	assert.Equal(t, DisplayOK, state.DisplayState())
	assert.Empty(t, state.Symptoms())
}

func TestExposedWindow(t *testing.T) {
	today := utcDate(2020, time.April, 10)
	state := Exposed(today)

	require.NotNil(t, state.Since())
	require.NotNil(t, state.Until())
	assert.Equal(t, time.Date(2020, time.April, 10, 7, 0, 0, 0, time.UTC), *state.Since())
	assert.Equal(t, time.Date(2020, time.April, 23, 23, 59, 59, 0, time.UTC), *state.Until())
	assert.Equal(t, DisplayAtRisk, state.DisplayState())
	assert.Empty(t, state.Symptoms())
}

func TestExposedWindowCrossesMonthBoundary(t *testing.T) {
	state := Exposed(utcDate(2020, time.April, 25))

	assert.Equal(t, time.Date(2020, time.May, 8, 23, 59, 59, 0, time.UTC), *state.Until())
}

func TestSymptomaticUntilIsLaterOfOnsetPlusSevenAndTomorrow(t *testing.T) {
	symptoms := NewSymptoms(Cough)

	tests := []struct {
		name      string
		onset     time.Time
		today     time.Time
		wantUntil time.Time
	}{
		{
			name:      "recent onset ends seven days after onset",
			onset:     utcDate(2020, time.April, 10),
			today:     utcDate(2020, time.April, 10),
			wantUntil: time.Date(2020, time.April, 17, 7, 0, 0, 0, time.UTC),
		},
		{
			name:      "old onset still ends tomorrow",
			onset:     utcDate(2020, time.April, 1),
			today:     utcDate(2020, time.April, 10),
			wantUntil: time.Date(2020, time.April, 11, 7, 0, 0, 0, time.UTC),
		},
		{
			name:      "boundary where onset plus seven equals tomorrow",
			onset:     utcDate(2020, time.April, 4),
			today:     utcDate(2020, time.April, 10),
			wantUntil: time.Date(2020, time.April, 11, 7, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			state, err := Symptomatic(tc.onset, symptoms, tc.today)
			require.NoError(t, err)

			assert.Equal(t, atSevenAM(tc.onset), *state.Since())
			assert.Equal(t, tc.wantUntil, *state.Until())
			assert.Equal(t, DisplayIsolate, state.DisplayState())
		})
	}
}

func TestPositiveUsesTestDateWithSameTieBreak(t *testing.T) {
	symptoms := NewSymptoms(Temperature, Anosmia)
	today := utcDate(2020, time.April, 10)

	recent, err := Positive(utcDate(2020, time.April, 9), symptoms, today)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, time.April, 16, 7, 0, 0, 0, time.UTC), *recent.Until())

	stale, err := Positive(utcDate(2020, time.March, 20), symptoms, today)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, time.April, 11, 7, 0, 0, 0, time.UTC), *stale.Until())

	assert.Equal(t, time.Date(2020, time.April, 9, 7, 0, 0, 0, time.UTC), *recent.Since())
	assert.Equal(t, DisplayIsolate, recent.DisplayState())
}

func TestCheckinExtendsByOneDay(t *testing.T) {
	since := time.Date(2020, time.April, 1, 7, 0, 0, 0, time.UTC)
	today := utcDate(2020, time.April, 10)

	state, err := Checkin(since, NewSymptoms(Cough), today)
	require.NoError(t, err)

	assert.Equal(t, since, *state.Since())
	assert.Equal(t, time.Date(2020, time.April, 11, 7, 0, 0, 0, time.UTC), *state.Until())
	assert.Equal(t, DisplayIsolate, state.DisplayState())
	assert.Equal(t, []Symptom{Cough}, state.Symptoms())
}

func TestEmptySymptomsRejected(t *testing.T) {
	today := utcDate(2020, time.April, 10)

	_, err := Symptomatic(today, Symptoms{}, today)
	assert.ErrorIs(t, err, ErrNoSymptoms)

	_, err = Positive(today, Symptoms{}, today)
	assert.ErrorIs(t, err, ErrNoSymptoms)

	_, err = Checkin(atSevenAM(today), Symptoms{}, today)
	assert.ErrorIs(t, err, ErrNoSymptoms)

	_, err = SymptomsFromSlice(nil)
	assert.ErrorIs(t, err, ErrNoSymptoms)
}

func TestHasExpired(t *testing.T) {
	today := utcDate(2020, time.April, 10)
	state, err := Symptomatic(today, NewSymptoms(Nausea), today)
	require.NoError(t, err)

	until := *state.Until()
	assert.False(t, state.HasExpired(until), "until itself is not expired")
	assert.False(t, state.HasExpired(until.Add(-time.Second)))
	assert.True(t, state.HasExpired(until.Add(time.Second)))

	assert.False(t, Default().HasExpired(until.AddDate(10, 0, 0)))
}

type fakeReminders struct {
	scheduledAt []time.Time
}

func (f *fakeReminders) ScheduleCheckInReminder(at time.Time) {
	f.scheduledAt = append(f.scheduledAt, at)
}

func TestScheduleCheckInReminder(t *testing.T) {
	today := utcDate(2020, time.April, 10)
	now := today.Add(12 * time.Hour)
	symptoms := NewSymptoms(Cough)

	symptomatic, err := Symptomatic(today, symptoms, today)
	require.NoError(t, err)
	positive, err := Positive(today, symptoms, today)
	require.NoError(t, err)
	checkin, err := Checkin(atSevenAM(today), symptoms, today)
	require.NoError(t, err)

	t.Run("symptomatic schedules at until", func(t *testing.T) {
		reminders := &fakeReminders{}
		ScheduleCheckInReminder(symptomatic, reminders, now)
		require.Len(t, reminders.scheduledAt, 1)
		assert.Equal(t, *symptomatic.Until(), reminders.scheduledAt[0])
	})

	t.Run("positive schedules at until", func(t *testing.T) {
		reminders := &fakeReminders{}
		ScheduleCheckInReminder(positive, reminders, now)
		require.Len(t, reminders.scheduledAt, 1)
		assert.Equal(t, *positive.Until(), reminders.scheduledAt[0])
	})

	t.Run("expired symptomatic does not schedule", func(t *testing.T) {
		reminders := &fakeReminders{}
		ScheduleCheckInReminder(symptomatic, reminders, symptomatic.Until().Add(time.Hour))
		assert.Empty(t, reminders.scheduledAt)
	})

	t.Run("other states do not schedule", func(t *testing.T) {
		reminders := &fakeReminders{}
		ScheduleCheckInReminder(Default(), reminders, now)
		ScheduleCheckInReminder(Exposed(today), reminders, now)
		ScheduleCheckInReminder(checkin, reminders, now)
		assert.Empty(t, reminders.scheduledAt)
	})
}

func TestSymptomSet(t *testing.T) {
	s := NewSymptoms(Sneeze, Cough, Cough)

	assert.False(t, s.IsEmpty())
	assert.True(t, s.Has(Cough))
	assert.False(t, s.Has(Nausea))
	assert.Equal(t, []Symptom{Cough, Sneeze}, s.Slice())

	parsed, ok := SymptomFromValue("TEMPERATURE")
	assert.True(t, ok)
	assert.Equal(t, Temperature, parsed)

	_, ok = SymptomFromValue("HICCUPS")
	assert.False(t, ok)
}

package main

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memJournal struct {
	entries []JournalEntry
}

func (j *memJournal) Record(entry JournalEntry) error {
	j.entries = append(j.entries, entry)
	return nil
}

func newTestForm(t *testing.T) (*Form, *fakeService, *memJournal) {
	t.Helper()
	fake, srv := newFakeService(t)
	journal := &memJournal{}
	status := NewStatus(time.Minute)
	t.Cleanup(status.Stop)
	form := NewForm(NewAPIClient(srv.URL+"/api", time.Second), journal, status, nil)
	return form, fake, journal
}

func addVia(form *Form, day int, start, end string) {
	in := SlotInput{Day: day, Start: start, End: end}
	in.Submit(form.OnAdd)
}

func TestFormAdd(t *testing.T) {
	t.Run("Valid slot is staged", func(t *testing.T) {
		form, fake, _ := newTestForm(t)

		addVia(form, 0, "09:00", "10:00")

		assert.Equal(t, []Slot{{DayOfWeek: 0, StartTime: "09:00", EndTime: "10:00"}}, form.Pending())
		assert.Equal(t, 0, fake.total())
	})

	t.Run("End before start is rejected", func(t *testing.T) {
		form, _, _ := newTestForm(t)

		addVia(form, 2, "10:00", "09:00")

		assert.Empty(t, form.Pending())
		assert.Equal(t, "start time must be before end time", form.Status().Message())
	})

	t.Run("Bad format is rejected", func(t *testing.T) {
		for _, tc := range []struct{ start, end string }{
			{"9:00", "10:00"},
			{"09:00", ""},
			{"", ""},
			{"09:00", "1000"},
			{"ab:cd", "10:00"},
		} {
			form, _, _ := newTestForm(t)

			addVia(form, 1, tc.start, tc.end)

			assert.Empty(t, form.Pending(), "%q-%q", tc.start, tc.end)
			assert.Equal(t, "select a valid time (HH:MM)", form.Status().Message())
		}
	})

	t.Run("Equal times are rejected", func(t *testing.T) {
		form, _, _ := newTestForm(t)

		addVia(form, 1, "10:00", "10:00")

		assert.Empty(t, form.Pending())
	})
}

func TestFormRemovePending(t *testing.T) {
	form, _, _ := newTestForm(t)
	addVia(form, 0, "08:00", "09:00")
	addVia(form, 1, "09:00", "10:00")
	addVia(form, 2, "10:00", "11:00")

	form.RemovePending(1)
	assert.Equal(t, []Slot{
		{DayOfWeek: 0, StartTime: "08:00", EndTime: "09:00"},
		{DayOfWeek: 2, StartTime: "10:00", EndTime: "11:00"},
	}, form.Pending())

	form.RemovePending(5)
	form.RemovePending(-1)
	assert.Len(t, form.Pending(), 2)

	items := form.Items()
	form.RemovePendingByID(items[1].PendingID)
	assert.Equal(t, []Slot{{DayOfWeek: 0, StartTime: "08:00", EndTime: "09:00"}}, form.Pending())

	form.RemovePendingByID("no-such-id")
	assert.Len(t, form.Pending(), 1)

	form.ClearPending()
	assert.Empty(t, form.Pending())
}

func TestFormLoadSaved(t *testing.T) {
	t.Run("Replaces saved and coerces day", func(t *testing.T) {
		form, fake, journal := newTestForm(t)
		fake.respond(http.MethodGet, http.StatusOK, `[{"dayOfWeek":"3","startTime":"08:00","endTime":"09:00"}]`)

		require.NoError(t, form.LoadSaved(context.Background()))

		assert.Equal(t, []Slot{{DayOfWeek: 3, StartTime: "08:00", EndTime: "09:00"}}, form.Saved())
		assert.Equal(t, StatusLoaded, form.Status().Message())
		require.Len(t, journal.entries, 1)
		assert.Equal(t, "load", journal.entries[0].Op)
		assert.True(t, journal.entries[0].OK)
	})

	t.Run("Failure leaves saved untouched", func(t *testing.T) {
		form, fake, _ := newTestForm(t)
		fake.respond(http.MethodGet, http.StatusOK, `[{"dayOfWeek":1,"startTime":"08:00","endTime":"09:00"}]`)
		require.NoError(t, form.LoadSaved(context.Background()))

		fake.respond(http.MethodGet, http.StatusServiceUnavailable, ``)
		assert.Error(t, form.LoadSaved(context.Background()))

		assert.Equal(t, []Slot{{DayOfWeek: 1, StartTime: "08:00", EndTime: "09:00"}}, form.Saved())
		assert.Equal(t, StatusLoadFailed, form.Status().Message())
	})

	t.Run("Mount loads exactly once", func(t *testing.T) {
		form, fake, _ := newTestForm(t)

		form.Mount(context.Background())
		form.Mount(context.Background())

		assert.Equal(t, 1, fake.count(http.MethodGet))
	})
}

func TestFormSaveToServer(t *testing.T) {
	ctx := context.Background()

	t.Run("Nothing to save", func(t *testing.T) {
		form, fake, _ := newTestForm(t)

		require.NoError(t, form.SaveToServer(ctx))

		assert.Equal(t, 0, fake.total())
		assert.Equal(t, StatusNothingToSave, form.Status().Message())
	})

	t.Run("Invalid pending slot blocks the request", func(t *testing.T) {
		for _, bad := range []Slot{
			{DayOfWeek: 7, StartTime: "09:00", EndTime: "10:00"},
			{DayOfWeek: -1, StartTime: "09:00", EndTime: "10:00"},
			{DayOfWeek: 1, StartTime: "9:00", EndTime: "10:00"},
			{DayOfWeek: 1, StartTime: "11:00", EndTime: "10:00"},
		} {
			form, fake, _ := newTestForm(t)
			form.OnAdd(0, "08:00", "09:00", nil)
			// bypasses SlotInput
			form.OnAdd(bad.DayOfWeek, bad.StartTime, bad.EndTime, nil)

			err := form.SaveToServer(ctx)

			assert.ErrorIs(t, err, ErrInvalidPending, "%+v", bad)
			assert.Equal(t, 0, fake.total())
			assert.Len(t, form.Pending(), 2)
			assert.Empty(t, form.Saved())
			assert.Equal(t, StatusInvalidSlot, form.Status().Message())
		}
	})

	t.Run("Success moves pending to saved in order", func(t *testing.T) {
		form, fake, journal := newTestForm(t)
		fake.respond(http.MethodGet, http.StatusOK, `[{"dayOfWeek":6,"startTime":"12:00","endTime":"13:00"}]`)
		require.NoError(t, form.LoadSaved(ctx))

		addVia(form, 0, "09:00", "10:00")
		addVia(form, 4, "14:00", "15:30")
		fake.respond(http.MethodPost, http.StatusOK, `{"ok":true}`)

		require.NoError(t, form.SaveToServer(ctx))

		assert.Empty(t, form.Pending())
		assert.Equal(t, []Slot{
			{DayOfWeek: 6, StartTime: "12:00", EndTime: "13:00"},
			{DayOfWeek: 0, StartTime: "09:00", EndTime: "10:00"},
			{DayOfWeek: 4, StartTime: "14:00", EndTime: "15:30"},
		}, form.Saved())
		assert.Equal(t, StatusSaved, form.Status().Message())
		assert.Equal(t, 1, fake.count(http.MethodPost))
		// one load plus one per saved slot
		assert.Len(t, journal.entries, 3)
	})

	t.Run("Scenario: add then save", func(t *testing.T) {
		form, _, _ := newTestForm(t)

		addVia(form, 0, "09:00", "10:00")
		assert.Len(t, form.Pending(), 1)

		require.NoError(t, form.SaveToServer(ctx))

		assert.Empty(t, form.Pending())
		assert.Equal(t, []Slot{{DayOfWeek: 0, StartTime: "09:00", EndTime: "10:00"}}, form.Saved())
	})

	t.Run("Slot staged while a save is in flight stays pending", func(t *testing.T) {
		form, fake, _ := newTestForm(t)
		addVia(form, 0, "09:00", "10:00")
		fake.beforeResponse(http.MethodPost, func() {
			form.OnAdd(5, "18:00", "19:00", nil)
		})

		require.NoError(t, form.SaveToServer(ctx))

		assert.JSONEq(t, `{"driverId":1,"slots":[{"dayOfWeek":0,"startTime":"09:00","endTime":"10:00"}]}`, string(fake.body()))
		assert.Equal(t, []Slot{{DayOfWeek: 5, StartTime: "18:00", EndTime: "19:00"}}, form.Pending())
		assert.Equal(t, []Slot{{DayOfWeek: 0, StartTime: "09:00", EndTime: "10:00"}}, form.Saved())
	})

	t.Run("Server error text is shown", func(t *testing.T) {
		form, fake, _ := newTestForm(t)
		addVia(form, 0, "09:00", "10:00")
		fake.respond(http.MethodPost, http.StatusUnprocessableEntity, `{"ok":false,"error":"Overlaps existing slot"}`)

		assert.Error(t, form.SaveToServer(ctx))

		assert.Equal(t, "Save failed: Overlaps existing slot", form.Status().Message())
		assert.Len(t, form.Pending(), 1)
		assert.Empty(t, form.Saved())
	})

	t.Run("Status code shown without error text", func(t *testing.T) {
		form, fake, _ := newTestForm(t)
		addVia(form, 0, "09:00", "10:00")
		fake.respond(http.MethodPost, http.StatusInternalServerError, `oops`)

		assert.Error(t, form.SaveToServer(ctx))

		assert.Equal(t, "Save failed (HTTP 500)", form.Status().Message())
		assert.Len(t, form.Pending(), 1)
	})

	t.Run("ok false on 200 is a failure", func(t *testing.T) {
		form, fake, _ := newTestForm(t)
		addVia(form, 0, "09:00", "10:00")
		fake.respond(http.MethodPost, http.StatusOK, `{"ok":false}`)

		assert.Error(t, form.SaveToServer(ctx))

		assert.Equal(t, "Save failed (HTTP 200)", form.Status().Message())
		assert.Len(t, form.Pending(), 1)
	})
}

func TestFormSaveTransportFailure(t *testing.T) {
	_, srv := newFakeService(t)
	base := srv.URL + "/api"
	srv.Close()

	status := NewStatus(time.Minute)
	defer status.Stop()
	form := NewForm(NewAPIClient(base, time.Second), nil, status, nil)
	addVia(form, 3, "09:00", "10:00")

	assert.Error(t, form.SaveToServer(context.Background()))

	assert.Equal(t, "Network error while saving.", form.Status().Message())
	assert.Len(t, form.Pending(), 1)

	assert.Error(t, form.DeleteSaved(context.Background(), Slot{DayOfWeek: 3, StartTime: "09:00", EndTime: "10:00"}))
	assert.Equal(t, "Network error while deleting.", form.Status().Message())
}

func TestFormDeleteSaved(t *testing.T) {
	ctx := context.Background()
	listing := `[
		{"dayOfWeek":1,"startTime":"08:00","endTime":"09:00"},
		{"dayOfWeek":2,"startTime":"08:00","endTime":"09:00"},
		{"dayOfWeek":1,"startTime":"08:00","endTime":"09:30"}
	]`
	target := Slot{DayOfWeek: 1, StartTime: "08:00", EndTime: "09:00"}

	t.Run("ok true removes only the matching triple", func(t *testing.T) {
		form, fake, _ := newTestForm(t)
		fake.respond(http.MethodGet, http.StatusOK, listing)
		require.NoError(t, form.LoadSaved(ctx))
		fake.respond(http.MethodDelete, http.StatusOK, `{"ok":true}`)

		require.NoError(t, form.DeleteSaved(ctx, target))

		assert.Equal(t, []Slot{
			{DayOfWeek: 2, StartTime: "08:00", EndTime: "09:00"},
			{DayOfWeek: 1, StartTime: "08:00", EndTime: "09:30"},
		}, form.Saved())
		assert.Equal(t, StatusDeleted, form.Status().Message())
	})

	t.Run("ok false leaves saved unchanged", func(t *testing.T) {
		form, fake, _ := newTestForm(t)
		fake.respond(http.MethodGet, http.StatusOK, listing)
		require.NoError(t, form.LoadSaved(ctx))
		fake.respond(http.MethodDelete, http.StatusOK, `{"ok":false}`)

		assert.Error(t, form.DeleteSaved(ctx, target))

		assert.Len(t, form.Saved(), 3)
		assert.Equal(t, "Delete failed (HTTP 200)", form.Status().Message())
	})

	t.Run("Server error text is shown", func(t *testing.T) {
		form, fake, journal := newTestForm(t)
		fake.respond(http.MethodDelete, http.StatusNotFound, `{"ok":false,"error":"Not found"}`)

		assert.Error(t, form.DeleteSaved(ctx, target))

		assert.Equal(t, "Delete failed: Not found", form.Status().Message())
		require.Len(t, journal.entries, 1)
		assert.False(t, journal.entries[0].OK)
		assert.Equal(t, &target, journal.entries[0].Slot)
	})
}

func TestFormItems(t *testing.T) {
	form, fake, _ := newTestForm(t)
	fake.respond(http.MethodGet, http.StatusOK, `[{"dayOfWeek":0,"startTime":"06:00","endTime":"07:00"}]`)
	require.NoError(t, form.LoadSaved(context.Background()))
	addVia(form, 1, "09:00", "10:00")
	addVia(form, 2, "09:00", "10:00")

	items := form.Items()

	require.Len(t, items, 3)
	assert.Equal(t, "saved", items[0].Tag())
	assert.Equal(t, -1, items[0].PendingIdx)
	assert.Equal(t, "pending", items[1].Tag())
	assert.Equal(t, 0, items[1].PendingIdx)
	assert.Equal(t, 1, items[2].PendingIdx)
	assert.NotEmpty(t, items[1].PendingID)
	assert.NotEqual(t, items[1].PendingID, items[2].PendingID)
}

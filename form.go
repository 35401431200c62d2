package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	StatusLoaded        = "Loaded."
	StatusLoadFailed    = "Network error while loading"
	StatusNothingToSave = "Nothing to save."
	StatusInvalidSlot   = "Invalid slot in pending."
	StatusSaved         = "Saved!"
	StatusDeleted       = "Deleted."
)

var ErrInvalidPending = errors.New("invalid slot in pending")

// AvailabilityService is the remote store the form syncs with.
type AvailabilityService interface {
	ListSlots(ctx context.Context) ([]Slot, error)
	CreateSlots(ctx context.Context, slots []Slot) error
	DeleteSlot(ctx context.Context, slot Slot) error
}

// Form owns the pending and saved collections and the status line.
//
// The mutex only guards the collections; it is never held while a request
// is in flight, so two overlapping saves or deletes are both sent and
// apply their results in whatever order they complete.
type Form struct {
	svc     AvailabilityService
	journal Journal
	log     *zap.Logger
	status  *Status

	mu      sync.Mutex
	pending []PendingSlot
	saved   []Slot

	mountOnce sync.Once
}

func NewForm(svc AvailabilityService, journal Journal, status *Status, log *zap.Logger) *Form {
	if log == nil {
		log = zap.NewNop()
	}
	if status == nil {
		status = NewStatus(DefaultStatusTTL)
	}
	return &Form{
		svc:     svc,
		journal: journal,
		log:     log,
		status:  status,
	}
}

func (f *Form) Status() *Status {
	return f.status
}

// Mount performs the initial load. Only the first call does anything.
func (f *Form) Mount(ctx context.Context) error {
	var err error
	f.mountOnce.Do(func() {
		err = f.LoadSaved(ctx)
	})
	return err
}

// OnAdd stages a slot reported by SlotInput, or shows why it was rejected.
func (f *Form) OnAdd(day int, start, end string, err error) {
	if err != nil {
		f.status.Show(err.Error())
		return
	}

	f.mu.Lock()
	f.pending = append(f.pending, PendingSlot{
		ID:   uuid.NewString(),
		Slot: Slot{DayOfWeek: day, StartTime: start, EndTime: end},
	})
	f.mu.Unlock()
}

func (f *Form) RemovePending(idx int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if idx < 0 || idx >= len(f.pending) {
		return
	}
	f.pending = append(f.pending[:idx:idx], f.pending[idx+1:]...)
}

func (f *Form) RemovePendingByID(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.pending {
		if p.ID == id {
			f.pending = append(f.pending[:i:i], f.pending[i+1:]...)
			return
		}
	}
}

func (f *Form) ClearPending() {
	f.mu.Lock()
	f.pending = nil
	f.mu.Unlock()
}

func (f *Form) Pending() []Slot {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Slot, len(f.pending))
	for i, p := range f.pending {
		out[i] = p.Slot
	}
	return out
}

func (f *Form) Saved() []Slot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Slot(nil), f.saved...)
}

// Items merges saved and pending slots for display. It is rebuilt on every
// call and holds no state of its own.
func (f *Form) Items() []Item {
	f.mu.Lock()
	defer f.mu.Unlock()

	items := make([]Item, 0, len(f.saved)+len(f.pending))
	for _, s := range f.saved {
		items = append(items, Item{Slot: s, Saved: true, PendingIdx: -1})
	}
	for i, p := range f.pending {
		items = append(items, Item{Slot: p.Slot, PendingIdx: i, PendingID: p.ID})
	}
	return items
}

func (f *Form) LoadSaved(ctx context.Context) error {
	slots, err := f.svc.ListSlots(ctx)
	if err != nil {
		f.log.Error("loading saved slots", zap.Error(err))
		f.record("load", nil, err)
		f.status.Show(StatusLoadFailed)
		return err
	}

	f.mu.Lock()
	f.saved = slots
	f.mu.Unlock()

	f.log.Debug("loaded saved slots", zap.Int("count", len(slots)))
	f.record("load", nil, nil)
	f.status.Show(StatusLoaded)
	return nil
}

func (f *Form) SaveToServer(ctx context.Context) error {
	f.mu.Lock()
	batch := append([]PendingSlot(nil), f.pending...)
	f.mu.Unlock()

	if len(batch) == 0 {
		f.status.Show(StatusNothingToSave)
		return nil
	}

	slots := make([]Slot, len(batch))
	for i, p := range batch {
		if err := ValidateSlot(p.Slot); err != nil {
			f.log.Warn("refusing to save invalid pending slot", zap.Any("slot", p.Slot), zap.Error(err))
			f.status.Show(StatusInvalidSlot)
			return fmt.Errorf("%w: %v", ErrInvalidPending, err)
		}
		slots[i] = p.Slot
	}

	if err := f.svc.CreateSlots(ctx, slots); err != nil {
		f.log.Error("saving pending slots", zap.Int("count", len(slots)), zap.Error(err))
		for i := range slots {
			f.record("save", &slots[i], err)
		}
		f.status.Show(failureStatus("Save", "saving", err))
		return err
	}

	submitted := make(map[string]struct{}, len(batch))
	for _, p := range batch {
		submitted[p.ID] = struct{}{}
	}

	f.mu.Lock()
	f.saved = append(f.saved, slots...)
	remaining := f.pending[:0:0]
	for _, p := range f.pending {
		if _, ok := submitted[p.ID]; !ok {
			remaining = append(remaining, p)
		}
	}
	f.pending = remaining
	f.mu.Unlock()

	f.log.Debug("saved pending slots", zap.Int("count", len(slots)))
	for i := range slots {
		f.record("save", &slots[i], nil)
	}
	f.status.Show(StatusSaved)
	return nil
}

func (f *Form) DeleteSaved(ctx context.Context, slot Slot) error {
	if err := f.svc.DeleteSlot(ctx, slot); err != nil {
		f.log.Error("deleting saved slot", zap.Any("slot", slot), zap.Error(err))
		f.record("delete", &slot, err)
		f.status.Show(failureStatus("Delete", "deleting", err))
		return err
	}

	f.mu.Lock()
	kept := f.saved[:0:0]
	for _, s := range f.saved {
		if !s.Same(slot) {
			kept = append(kept, s)
		}
	}
	f.saved = kept
	f.mu.Unlock()

	f.record("delete", &slot, nil)
	f.status.Show(StatusDeleted)
	return nil
}

func (f *Form) record(op string, slot *Slot, err error) {
	if f.journal == nil {
		return
	}
	entry := JournalEntry{Op: op, Slot: slot, OK: err == nil}
	if err != nil {
		entry.Message = err.Error()
	}
	if jerr := f.journal.Record(entry); jerr != nil {
		f.log.Warn("writing journal", zap.String("op", op), zap.Error(jerr))
	}
}

// failureStatus prefers the service's own error text, then its status
// code; anything else is reported as a network error.
func failureStatus(action, gerund string, err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return fmt.Sprintf("%s failed: %s", action, apiErr.Message)
		}
		return fmt.Sprintf("%s failed (HTTP %d)", action, apiErr.StatusCode)
	}
	return fmt.Sprintf("Network error while %s.", gerund)
}

package main

import "time"

// DriverID is the only driver this client ever submits for.
const DriverID = 1

type Slot struct {
	DayOfWeek int    `json:"dayOfWeek" validate:"min=0,max=6"`
	StartTime string `json:"startTime" validate:"required,hhmm"`
	EndTime   string `json:"endTime" validate:"required,hhmm"`
}

// Same reports whether both slots have the same day, start and end.
func (s Slot) Same(o Slot) bool {
	return s.DayOfWeek == o.DayOfWeek && s.StartTime == o.StartTime && s.EndTime == o.EndTime
}

type PendingSlot struct {
	ID string
	Slot
}

// Item is one row of the merged list: saved slots first, then pending ones.
type Item struct {
	Slot
	Saved      bool
	PendingIdx int
	PendingID  string
}

func (it Item) Tag() string {
	if it.Saved {
		return "saved"
	}
	return "pending"
}

type JournalEntry struct {
	ID        int64
	Op        string
	Slot      *Slot
	OK        bool
	Message   string
	CreatedAt time.Time
}

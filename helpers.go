package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

var dayNames = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

var fullDayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

func DayName(day int) string {
	if day < 0 || day >= len(dayNames) {
		return "?"
	}
	return dayNames[day]
}

// ParseDay accepts 0..6 (Monday = 0), a short name or a full name.
func ParseDay(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > 6 {
			return 0, fmt.Errorf("day must be 0..6, got %d", n)
		}
		return n, nil
	}
	for i := range dayNames {
		if strings.EqualFold(s, dayNames[i]) || strings.EqualFold(s, fullDayNames[i]) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown day: %q", s)
}

// ParseSlotSpec reads "DAY HH:MM HH:MM". Times are not validated here.
func ParseSlotSpec(spec string) (day int, start, end string, err error) {
	fields := strings.Fields(spec)
	if len(fields) != 3 {
		return 0, "", "", fmt.Errorf("slot must look like \"DAY HH:MM HH:MM\", got %q", spec)
	}
	day, err = ParseDay(fields[0])
	if err != nil {
		return 0, "", "", err
	}
	return day, fields[1], fields[2], nil
}

func PrintTable(w io.Writer, headers []string, rows [][]string, footers []string) {
	colWidths := make([]int, len(headers))
	for i, header := range headers {
		colWidths[i] = len(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > colWidths[i] {
				colWidths[i] = len(cell)
			}
		}
	}
	for i, footer := range footers {
		if len(footer) > colWidths[i] {
			colWidths[i] = len(footer)
		}
	}

	// print header
	for i, header := range headers {
		fmt.Fprintf(w, "%-*s\t", colWidths[i], header)
	}
	fmt.Fprintln(w)

	// print rows
	for _, row := range rows {
		for i, cell := range row {
			fmt.Fprintf(w, "%-*s\t", colWidths[i], cell)
		}
		fmt.Fprintln(w)
	}

	if len(footers) == 0 {
		return
	}

	// print footer
	for i, footer := range footers {
		fmt.Fprintf(w, "%-*s\t", colWidths[i], footer)
	}
	fmt.Fprintln(w)
}

// SlotLength is end minus start; zero when either time does not parse.
func SlotLength(s Slot) time.Duration {
	start, err := time.Parse("15:04", s.StartTime)
	if err != nil {
		return 0
	}
	end, err := time.Parse("15:04", s.EndTime)
	if err != nil {
		return 0
	}
	if end.Before(start) {
		return 0
	}
	return end.Sub(start)
}

func FormatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60

	return fmt.Sprintf("%d:%02d", hours, minutes)
}

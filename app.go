package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nexidian/gocliselect"
	"go.uber.org/zap"
)

type App struct {
	cfg  *Config
	log  *zap.Logger
	repo *Repo
	form *Form
	out  io.Writer
	in   *bufio.Reader

	// choose shows a selection list and returns the id of the picked option
	choose func(title string, opts []menuOption) (any, error)
}

type menuOption struct {
	label string
	id    any
}

func menuChoose(title string, opts []menuOption) (any, error) {
	menu := gocliselect.NewMenu(title)
	for _, o := range opts {
		menu.AddItem(o.label, o.id)
	}
	return menu.Display()
}

func NewApp(cfg *Config, log *zap.Logger, repo *Repo, svc AvailabilityService, out io.Writer, in io.Reader) *App {
	var journal Journal
	if repo != nil {
		journal = repo
	}
	return &App{
		cfg:  cfg,
		log:  log,
		repo: repo,
		form: NewForm(svc, journal, NewStatus(cfg.StatusTTL), log),
		out:  out,
		in:   bufio.NewReader(in),

		choose: menuChoose,
	}
}

func (a *App) Close() error {
	a.form.Status().Stop()
	a.log.Sync()
	if a.repo != nil {
		return a.repo.Close()
	}
	return nil
}

func (a *App) printStatus() {
	if msg := a.form.Status().Message(); msg != "" {
		fmt.Fprintln(a.out, msg)
	}
}

func (a *App) printItems() {
	items := a.form.Items()
	if len(items) == 0 {
		fmt.Fprintln(a.out, "No slots yet. Add some with 'weekslot save' or 'weekslot edit'.")
		return
	}

	headers := []string{"#", "State", "Day", "Start", "End", "Length"}

	var rows [][]string
	var total time.Duration
	for i, it := range items {
		length := SlotLength(it.Slot)
		total += length
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			it.Tag(),
			DayName(it.DayOfWeek),
			it.StartTime,
			it.EndTime,
			FormatDuration(length),
		})
	}

	footers := []string{"", "", "", "", "Total:", FormatDuration(total)}
	PrintTable(a.out, headers, rows, footers)
}

func (a *App) List(ctx context.Context) error {
	if err := a.form.Mount(ctx); err != nil {
		a.printStatus()
		return err
	}
	a.printItems()
	return nil
}

// Save stages every "DAY HH:MM HH:MM" spec and submits them as one batch.
// A rejected spec stops everything before any request goes out.
func (a *App) Save(ctx context.Context, specs []string) error {
	for _, spec := range specs {
		day, start, end, err := ParseSlotSpec(spec)
		if err != nil {
			return err
		}

		in := SlotInput{Day: day, Start: start, End: end}
		var rejected error
		in.Submit(func(day int, start, end string, err error) {
			rejected = err
			a.form.OnAdd(day, start, end, err)
		})
		if rejected != nil {
			a.printStatus()
			return fmt.Errorf("%s: %w", spec, rejected)
		}
	}

	err := a.form.SaveToServer(ctx)
	a.printStatus()
	return err
}

func (a *App) Delete(ctx context.Context, args []string) error {
	day, start, end, err := ParseSlotSpec(strings.Join(args, " "))
	if err != nil {
		return err
	}

	// refresh the local mirror; a failed load does not block the delete
	a.form.Mount(ctx)

	err = a.form.DeleteSaved(ctx, Slot{DayOfWeek: day, StartTime: start, EndTime: end})
	a.printStatus()
	return err
}

func (a *App) History(limit int) error {
	if a.repo == nil {
		return errors.New("journal is not available")
	}

	entries, err := a.repo.Recent(limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "Nothing synced yet.")
		return nil
	}

	headers := []string{"When", "Op", "Slot", "Result"}
	var rows [][]string
	for _, e := range entries {
		slot := ""
		if e.Slot != nil {
			slot = fmt.Sprintf("%s %s-%s", DayName(e.Slot.DayOfWeek), e.Slot.StartTime, e.Slot.EndTime)
		}
		result := "ok"
		if !e.OK {
			result = "failed: " + e.Message
		}
		rows = append(rows, []string{
			e.CreatedAt.Local().Format("Jan 02 15:04:05"),
			e.Op,
			slot,
			result,
		})
	}
	PrintTable(a.out, headers, rows, nil)
	return nil
}

func (a *App) prompt(label string) string {
	fmt.Fprint(a.out, label)
	line, _ := a.in.ReadString('\n')
	return strings.TrimSpace(line)
}

// Edit runs the interactive session. Pending slots live only as long as
// the session does.
func (a *App) Edit(ctx context.Context) error {
	status := a.form.Status()
	status.OnChange(func(msg string) {
		if msg != "" {
			fmt.Fprintln(a.out, msg)
		}
	})
	defer status.OnChange(nil)

	a.form.Mount(ctx)
	input := &SlotInput{}

	actions := []menuOption{
		{"Add slot", "add"},
		{"Remove pending slot", "remove"},
		{"Delete saved slot", "delete"},
		{"Save", "save"},
		{"Reload", "reload"},
		{"Clear pending", "clear"},
		{"Quit", "quit"},
	}

	for {
		fmt.Fprintln(a.out)
		a.printItems()
		fmt.Fprintln(a.out)

		choice, err := a.choose("Choose an action", actions)
		if err != nil {
			return err
		}

		switch choice {
		case "add":
			if err := a.addInteractive(input); err != nil {
				return err
			}
		case "remove":
			it, ok, err := a.pickItem("Remove which pending slot?", false)
			if err != nil {
				return err
			}
			if ok {
				a.form.RemovePendingByID(it.PendingID)
			}
		case "delete":
			it, ok, err := a.pickItem("Delete which saved slot?", true)
			if err != nil {
				return err
			}
			if ok {
				a.form.DeleteSaved(ctx, it.Slot)
			}
		case "save":
			a.form.SaveToServer(ctx)
		case "reload":
			a.form.LoadSaved(ctx)
		case "clear":
			a.form.ClearPending()
		default:
			return nil
		}
	}
}

func (a *App) addInteractive(input *SlotInput) error {
	days := make([]menuOption, len(fullDayNames))
	for i, name := range fullDayNames {
		days[i] = menuOption{name, i}
	}

	choice, err := a.choose(fmt.Sprintf("Day (currently %s)", fullDayNames[input.Day]), days)
	if err != nil {
		return err
	}
	if d, ok := choice.(int); ok {
		input.Day = d
	}

	input.Start = a.prompt("Start time (HH:MM): ")
	input.End = a.prompt("End time (HH:MM): ")
	input.Submit(a.form.OnAdd)
	return nil
}

// pickItem offers the saved or the pending rows of the current list.
func (a *App) pickItem(title string, saved bool) (Item, bool, error) {
	items := a.form.Items()

	var opts []menuOption
	for i, it := range items {
		if it.Saved != saved {
			continue
		}
		opts = append(opts, menuOption{fmt.Sprintf("%s %s-%s", DayName(it.DayOfWeek), it.StartTime, it.EndTime), i})
	}
	if len(opts) == 0 {
		fmt.Fprintln(a.out, "Nothing to pick.")
		return Item{}, false, nil
	}
	opts = append(opts, menuOption{"Cancel", -1})

	choice, err := a.choose(title, opts)
	if err != nil {
		return Item{}, false, err
	}
	idx, ok := choice.(int)
	if !ok || idx < 0 || idx >= len(items) {
		return Item{}, false, nil
	}
	return items[idx], true, nil
}

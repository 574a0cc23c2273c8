package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habits/internal/core/services"
	"go.uber.org/zap"
)

// ErrInputClosed is returned by prompts once the input stream is exhausted.
var ErrInputClosed = errors.New("input closed")

// SyncWriter serializes writes so reminder banners never interleave with a
// menu screen being printed.
type SyncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func NewSyncWriter(w io.Writer) *SyncWriter {
	return &SyncWriter{w: w}
}

func (s *SyncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// Menu drives the tracker from numbered choices read line by line.
type Menu struct {
	tracker *services.HabitTracker
	in      *bufio.Reader
	out     io.Writer
	log     *zap.Logger
}

func NewMenu(tracker *services.HabitTracker, in io.Reader, out io.Writer, log *zap.Logger) *Menu {
	if log == nil {
		log = zap.NewNop()
	}
	return &Menu{
		tracker: tracker,
		in:      bufio.NewReader(in),
		out:     out,
		log:     log.Named("cli"),
	}
}

func (m *Menu) prompt(question string) (string, error) {
	fmt.Fprint(m.out, question)

	line, err := m.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrInputClosed
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// EnsureProfile asks for the owner's name when the store has none yet.
func (m *Menu) EnsureProfile(ctx context.Context) error {
	if !m.tracker.NeedsProfile() {
		return nil
	}

	name, err := m.prompt("Enter your name: ")
	if err != nil && !errors.Is(err, ErrInputClosed) {
		return err
	}
	if err := m.tracker.SetProfileName(ctx, name); err != nil {
		m.reportError(err)
	}
	return nil
}

// Remind prints a reminder banner for h. It is used as the tracker's
// reminder notifier.
func (m *Menu) Remind(h domain.Habit) {
	fmt.Fprintf(m.out, "\n%s\nREMINDER: Don't forget %q!\n%s\n", rule, h.Name, rule)
}

// Run shows the menu until the user picks 0, the input ends or ctx is done.
func (m *Menu) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		m.renderMenu()
		choice, err := m.prompt("Choose a menu option: ")
		if errors.Is(err, ErrInputClosed) {
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(m.out)

		quit, err := m.handle(ctx, choice)
		if errors.Is(err, ErrInputClosed) {
			return nil
		}
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

func (m *Menu) handle(ctx context.Context, choice string) (bool, error) {
	switch choice {
	case "1":
		m.renderProfile()
	case "2":
		m.renderHabits(domain.FilterAll)
	case "3":
		m.renderHabits(domain.FilterActive)
	case "4":
		m.renderHabits(domain.FilterCompleted)
	case "5":
		return false, m.addHabit(ctx)
	case "6":
		return false, m.completeHabit(ctx)
	case "7":
		return false, m.deleteHabit(ctx)
	case "8":
		m.renderStatistics()
	case "9":
		m.renderDemoLoops()
	case "0":
		return true, nil
	default:
		fmt.Fprintln(m.out, "Unknown menu option.")
		fmt.Fprintln(m.out)
	}
	return false, nil
}

func (m *Menu) addHabit(ctx context.Context) error {
	name, err := m.prompt("Habit name: ")
	if err != nil {
		return err
	}
	freq, err := m.prompt("Target per week (number): ")
	if err != nil && !errors.Is(err, ErrInputClosed) {
		return err
	}

	h, err := m.tracker.AddHabit(ctx, name, freq)
	if err != nil {
		m.reportError(err)
		return nil
	}
	fmt.Fprintf(m.out, "Habit %q added (%dx/week).\n\n", h.Name, h.TargetFrequency)
	return nil
}

func (m *Menu) completeHabit(ctx context.Context) error {
	if len(m.tracker.ListHabits(domain.FilterAll)) == 0 {
		fmt.Fprintln(m.out, "No habits yet.")
		fmt.Fprintln(m.out)
		return nil
	}

	m.renderHabits(domain.FilterAll)
	idx, err := m.prompt("Number of the habit you completed today: ")
	if err != nil {
		return err
	}

	h, err := m.tracker.CompleteHabit(ctx, idx)
	if err != nil {
		m.reportError(err)
		return nil
	}
	fmt.Fprintf(m.out, "%q marked as done today.\n\n", h.Name)
	return nil
}

func (m *Menu) deleteHabit(ctx context.Context) error {
	if len(m.tracker.ListHabits(domain.FilterAll)) == 0 {
		fmt.Fprintln(m.out, "No habits yet.")
		fmt.Fprintln(m.out)
		return nil
	}

	m.renderHabits(domain.FilterAll)
	idx, err := m.prompt("Number of the habit to delete: ")
	if err != nil {
		return err
	}

	h, err := m.tracker.DeleteHabit(ctx, idx)
	if err != nil {
		m.reportError(err)
		return nil
	}
	fmt.Fprintf(m.out, "Habit %q deleted.\n\n", h.Name)
	return nil
}

func (m *Menu) reportError(err error) {
	switch {
	case errors.Is(err, domain.ErrHabitNameEmpty):
		fmt.Fprintln(m.out, "Habit name cannot be empty.")
	case errors.Is(err, domain.ErrInvalidIndex):
		fmt.Fprintln(m.out, "Invalid index.")
	case errors.Is(err, domain.ErrPersistence):
		fmt.Fprintf(m.out, "Could not save habits: %v\n", err)
	default:
		m.log.Error("operation failed", zap.Error(err))
		fmt.Fprintf(m.out, "Error: %v\n", err)
	}
	fmt.Fprintln(m.out)
}

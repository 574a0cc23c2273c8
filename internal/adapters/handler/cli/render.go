package cli

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
)

const (
	rule         = "=================================================="
	progressBarW = 10
)

func (m *Menu) renderMenu() {
	fmt.Fprintln(m.out, rule)
	fmt.Fprintln(m.out, "HABIT TRACKER - MAIN MENU")
	fmt.Fprintln(m.out, rule)
	fmt.Fprintln(m.out, "1. View Profile")
	fmt.Fprintln(m.out, "2. View All Habits")
	fmt.Fprintln(m.out, "3. View Active Habits")
	fmt.Fprintln(m.out, "4. View Completed Habits")
	fmt.Fprintln(m.out, "5. Add New Habit")
	fmt.Fprintln(m.out, "6. Mark Habit Complete")
	fmt.Fprintln(m.out, "7. Delete Habit")
	fmt.Fprintln(m.out, "8. View Statistics")
	fmt.Fprintln(m.out, "9. Demo Loop (while/for)")
	fmt.Fprintln(m.out, "0. Exit")
	fmt.Fprintln(m.out, rule)
}

func (m *Menu) renderProfile() {
	p := m.tracker.Profile()

	name := p.Name
	if name == "" {
		name = "-"
	}

	fmt.Fprintln(m.out, rule)
	fmt.Fprintln(m.out, "HABIT TRACKER - PROFILE")
	fmt.Fprintln(m.out, rule)
	fmt.Fprintf(m.out, "Name                : %s\n", name)
	fmt.Fprintf(m.out, "Join Date           : %s\n", domain.FormatDate(p.JoinDate))
	fmt.Fprintf(m.out, "Total Habits        : %d\n", p.TotalHabits)
	fmt.Fprintf(m.out, "Completed This Week : %d\n", p.CompletedThisWeek)
	fmt.Fprintf(m.out, "Day                 : %d since joining\n", p.DaysJoined(m.tracker.Now()))
	fmt.Fprintln(m.out, rule)
	fmt.Fprintln(m.out)
}

func (m *Menu) renderHabits(filter domain.HabitFilter) {
	RenderHabitList(m.out, m.tracker.ListHabits(filter))
}

// RenderHabitList prints numbered habit cards. Numbers are positions in the
// given list.
func RenderHabitList(w io.Writer, list []domain.HabitProgress) {
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "HABIT LIST")
	fmt.Fprintln(w, rule)
	if len(list) == 0 {
		fmt.Fprintln(w, "(empty)")
		fmt.Fprintln(w)
		return
	}

	for i, p := range list {
		fmt.Fprintf(w, "%d. [%s] %s\n", i+1, p.Status, p.Name)
		fmt.Fprintf(w, "   Target: %dx/week\n", p.TargetFrequency)
		fmt.Fprintf(w, "   Progress: %d/%d (%d%%)\n", p.WeekCount, p.TargetFrequency, p.Percentage)
		fmt.Fprintf(w, "   Progress Bar: %s %d%%\n", ProgressBar(p.Percentage), p.Percentage)
		fmt.Fprintln(w)
	}
}

// ProgressBar draws pct as a fixed-width bar of filled and empty cells.
func ProgressBar(pct int) string {
	filled := int(math.Round(float64(pct) / 100 * progressBarW))
	if filled < 0 {
		filled = 0
	}
	if filled > progressBarW {
		filled = progressBarW
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", progressBarW-filled)
}

func (m *Menu) renderStatistics() {
	RenderStatistics(m.out, m.tracker.Statistics())
}

func RenderStatistics(w io.Writer, s domain.Statistics) {
	names := strings.Join(s.HabitNames, ", ")
	if names == "" {
		names = "-"
	}
	highFreq := "No"
	if s.HasHighFrequency {
		highFreq = "Yes"
	}

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "STATISTICS")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Total Habits        : %d\n", s.TotalHabits)
	fmt.Fprintf(w, "Completed This Week : %d\n", s.CompletedThisWeek)
	fmt.Fprintf(w, "Habit Names         : %s\n", names)
	fmt.Fprintf(w, "Any target >= %dx?   : %s\n", domain.HighFrequencyThreshold, highFreq)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
}

// renderDemoLoops lists the habits twice, once by count and once by
// percentage. It never mutates.
func (m *Menu) renderDemoLoops() {
	list := m.tracker.ListHabits(domain.FilterAll)

	fmt.Fprintln(m.out, "=== Demo while loop ===")
	if len(list) == 0 {
		fmt.Fprintln(m.out, "(empty)")
		fmt.Fprintln(m.out)
		return
	}
	i := 0
	for i < len(list) {
		p := list[i]
		fmt.Fprintf(m.out, "%d. %s - %d/%d\n", i+1, p.Name, p.WeekCount, p.TargetFrequency)
		i++
	}
	fmt.Fprintln(m.out)

	fmt.Fprintln(m.out, "=== Demo for loop ===")
	for i := 0; i < len(list); i++ {
		p := list[i]
		fmt.Fprintf(m.out, "%d. %s - %d%% (%s)\n", i+1, p.Name, p.Percentage, p.Status)
	}
	fmt.Fprintln(m.out)
}

package main

import (
	"fmt"
	"strings"

	"github.com/arnavshah/roster-compliance-go/pkg/scheduling"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	headStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#AAAAAA"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F5A623"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

func severityStyle(severity int) lipgloss.Style {
	if severity >= 4 {
		return errorStyle
	}
	return warnStyle
}

func section(title string, lines []string, empty string) string {
	body := []string{headStyle.Render(title)}
	if len(lines) == 0 {
		body = append(body, okStyle.Render(empty))
	} else {
		body = append(body, lines...)
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, body...))
}

func renderAnalysis(a *scheduling.Analysis) string {
	var conflicts []string
	for _, c := range a.Conflicts {
		line := fmt.Sprintf("[%d] %-20s %-8s %s", c.Severity, c.Type, c.ShiftID, c.Description)
		conflicts = append(conflicts, severityStyle(c.Severity).Render(line))
	}

	var violations []string
	for _, v := range a.Violations {
		line := fmt.Sprintf("[%d] %-22s %-8s %s", v.Severity, v.Category, v.StaffID, v.Description)
		violations = append(violations, severityStyle(v.Severity).Render(line))
	}

	balances := []string{dimStyle.Render(fmt.Sprintf("%-10s %7s %6s %5s %7s %6s", "staff", "hours", "shifts", "days", "h/day", "score"))}
	for _, b := range a.Balances {
		balances = append(balances, fmt.Sprintf("%-10s %7.1f %6d %5d %7.2f %6.1f",
			b.StaffID, b.TotalHours, b.ShiftCount, b.DaysWorked, b.AverageHoursPerDay, b.BalanceScore))
	}
	balances = append(balances, fmt.Sprintf("fairness %.1f", a.FairnessScore))

	parts := []string{
		titleStyle.Render(fmt.Sprintf("%s  %s", a.RestaurantID, a.Date)),
		section(fmt.Sprintf("Conflicts (%d)", len(a.Conflicts)), conflicts, "no conflicts"),
		section(fmt.Sprintf("Violations (%d)", len(a.Violations)), violations, "no violations"),
		section("Workload", balances, ""),
	}
	if len(a.Notes) > 0 {
		var notes []string
		for _, n := range a.Notes {
			notes = append(notes, dimStyle.Render(fmt.Sprintf("%s %s: %s", n.Kind, n.Subject, n.Message)))
		}
		parts = append(parts, section("Notes", notes, ""))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderSuggestions(set *scheduling.SuggestionSet) string {
	var lines []string
	for _, r := range set.Requirements {
		req := r.Requirement
		head := fmt.Sprintf("%s %s-%s x%d", req.Position, req.Start.Format("15:04"), req.End.Format("15:04"), req.Openings)
		if len(req.RequiredSkills) > 0 {
			head += " [" + strings.Join(req.RequiredSkills, ", ") + "]"
		}
		switch {
		case r.Skipped:
			lines = append(lines, warnStyle.Render(head+"  skipped"))
			continue
		case len(r.Suggestions) == 0:
			lines = append(lines, errorStyle.Render(head+"  no candidates"))
			continue
		}
		lines = append(lines, headStyle.Render(head))
		for _, s := range r.Suggestions {
			lines = append(lines, fmt.Sprintf("  %-10s %5.1f  %s", s.StaffID, s.Score, dimStyle.Render(s.Rationale)))
		}
	}

	title := fmt.Sprintf("Suggestions (%d requirements, %d ranked)", len(set.Requirements), len(set.Suggestions))
	return section(title, lines, "no open shifts")
}

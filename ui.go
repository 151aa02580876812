package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/ssotops/depot-sync/depot"
)

func printSyncSummary(w io.Writer, opts depot.Options, result *depot.Result) {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	nameStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	infoStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	addedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	removedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	fmt.Fprintln(w, headerStyle.Render("\nDepot Sync Summary:"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, nameStyle.Render(fmt.Sprintf("%s -> %s@%s:%s", opts.Source, opts.Target, opts.Branch, opts.Path)))
	fmt.Fprintln(w)

	for _, entry := range result.Diff.Added {
		fmt.Fprintln(w, addedStyle.Render(fmt.Sprintf("+ %s %s", entry.Name, entry.Version)))
	}
	for _, entry := range result.Diff.Updated {
		fmt.Fprintln(w, infoStyle.Render(fmt.Sprintf("~ %s %s", entry.Name, entry.Version)))
	}
	for _, entry := range result.Diff.Removed {
		fmt.Fprintln(w, removedStyle.Render(fmt.Sprintf("- %s %s", entry.Name, entry.Version)))
	}
	if result.Diff.Empty() {
		fmt.Fprintln(w, infoStyle.Render("No changes"))
	}
	fmt.Fprintln(w)

	status := "Not published"
	if result.Published {
		status = "Published: " + result.Diff.CommitMessage()
	}

	fmt.Fprintln(w, headerStyle.Render("Summary of changes:"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, infoStyle.Render(fmt.Sprintf("Releases scanned: %d", result.Releases)))
	fmt.Fprintln(w, infoStyle.Render(fmt.Sprintf("Entries in depot: %d", len(result.Depot))))
	fmt.Fprintln(w, infoStyle.Render(fmt.Sprintf("Reused from cache: %d", result.Reused)))
	fmt.Fprintln(w, infoStyle.Render(fmt.Sprintf("Fetched: %d", result.Fetched)))
	fmt.Fprintln(w, infoStyle.Render(fmt.Sprintf("Invalid: %d (known invalid: %d)", result.Failed, result.Dropped)))
	fmt.Fprintln(w, infoStyle.Render(fmt.Sprintf("Excluded by include strategy: %d", result.Filtered)))
	fmt.Fprintln(w, infoStyle.Render(status))
}

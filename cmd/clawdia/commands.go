package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"clawdia/internal/config"
	"clawdia/internal/processes"
	"clawdia/internal/tasks"
	"clawdia/internal/tui"
)

func statusCmd(load loader) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show agent status",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := load()
			if err != nil {
				return err
			}
			st := d.status.Snapshot(cmd.Context())
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, st)
			}

			current := d.locale.T("label.none")
			if st.CurrentTask != nil {
				current = *st.CurrentTask
			}
			rows := [][]string{
				{d.locale.T("label.agent"), st.Name},
				{d.locale.T("label.version"), st.Version},
				{d.locale.T("label.uptime"), st.Uptime},
				{d.locale.T("label.current"), current},
				{d.locale.T("label.memory"), st.MemorySize},
				{d.locale.T("label.tasks"), d.locale.T("label.completed", st.CompletedTasks, st.TotalTasks)},
			}
			for _, r := range rows {
				fmt.Fprintf(out, "%-16s %s\n", r[0]+":", r[1])
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Output as JSON")
	return cmd
}

func tasksCmd(load loader) *cobra.Command {
	var (
		filter tasks.Filter
		status string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List tasks from the agent's task file",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := load()
			if err != nil {
				return err
			}
			if status != "" {
				s, err := parseStatus(status)
				if err != nil {
					return err
				}
				filter.Status = s
			}
			list := d.tasks.Query(filter)
			out := cmd.OutOrStdout()
			if asJSON {
				if list == nil {
					list = []tasks.Task{}
				}
				return writeJSON(out, map[string]any{"tasks": list})
			}
			if len(list) == 0 {
				fmt.Fprintln(out, d.locale.T("label.empty"))
				return nil
			}
			rows := make([][]string, 0, len(list))
			for _, t := range list {
				rows = append(rows, []string{t.ID, string(t.Status), t.Date, t.Priority, t.Category, t.Title})
			}
			fmt.Fprintln(out, renderTable([]string{"ID", "STATUS", "DATE", "PRIORITY", "CATEGORY", "TITLE"}, rows))
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (open, in_progress, done)")
	cmd.Flags().StringVar(&filter.Date, "date", "", "Only tasks dated YYYY-MM-DD")
	cmd.Flags().StringVar(&filter.From, "from", "", "Earliest date, inclusive")
	cmd.Flags().StringVar(&filter.To, "to", "", "Latest date, inclusive")
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Output as JSON")

	cmd.AddCommand(taskAddCmd(load))
	cmd.AddCommand(taskSetCmd(load))
	return cmd
}

func taskAddCmd(load loader) *cobra.Command {
	var in tasks.NewTask
	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Append an open task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := load()
			if err != nil {
				return err
			}
			in.Title = strings.Join(args, " ")
			t, err := d.tasks.Create(in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", t.ID, t.Date)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Date, "date", "", "Task date (default today, UTC)")
	cmd.Flags().StringVarP(&in.Priority, "priority", "p", "", "high, medium or low")
	cmd.Flags().StringVarP(&in.Category, "category", "c", "", "Task category")
	return cmd
}

func taskSetCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "set [id] [status]",
		Short: "Change the status of a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := parseStatus(args[1])
			if err != nil {
				return err
			}
			d, err := load()
			if err != nil {
				return err
			}
			if err := d.tasks.SetStatus(args[0], s); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", args[0], s)
			return nil
		},
	}
}

func parseStatus(v string) (tasks.Status, error) {
	switch s := tasks.Status(strings.TrimSpace(v)); s {
	case tasks.StatusOpen, tasks.StatusInProgress, tasks.StatusDone:
		return s, nil
	}
	return "", fmt.Errorf("unknown status %q (want open, in_progress or done)", v)
}

func skillsCmd(load loader) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "skills",
		Short: "List installed skills",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := load()
			if err != nil {
				return err
			}
			list := d.skills.List()
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, map[string]any{"skills": nonNil(list)})
			}
			if len(list) == 0 {
				fmt.Fprintln(out, d.locale.T("label.empty"))
				return nil
			}
			rows := make([][]string, 0, len(list))
			for _, s := range list {
				added := ""
				if s.AddedDate != nil {
					added = *s.AddedDate
				}
				rows = append(rows, []string{s.Name, string(s.Type), added, s.Description})
			}
			fmt.Fprintln(out, renderTable([]string{"NAME", "TYPE", "ADDED", "DESCRIPTION"}, rows))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Output as JSON")
	cmd.AddCommand(skillShowCmd(load))
	return cmd
}

func skillShowCmd(load loader) *cobra.Command {
	var (
		raw   bool
		width int
	)
	cmd := &cobra.Command{
		Use:   "show [name]",
		Short: "Print a skill's SKILL.md",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := load()
			if err != nil {
				return err
			}
			content, err := d.skills.Content(args[0])
			if err != nil {
				return err
			}
			if !raw {
				content = tui.RenderMarkdown(content, width)
			}
			fmt.Fprintln(cmd.OutOrStdout(), content)
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print markdown without rendering")
	cmd.Flags().IntVar(&width, "width", 100, "Wrap width for rendered output")
	return cmd
}

func processesCmd(load loader) *cobra.Command {
	var (
		source string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "processes",
		Short: "List scheduled background processes",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := load()
			if err != nil {
				return err
			}
			r := d.processes
			switch source {
			case "", "auto":
			case "cache":
				r = processes.NewResolver(d.ws, processes.Options{CachePath: d.cfg.Processes.CachePath, ConfigDoc: d.cfg.Agent.ConfigDoc, Force: processes.SourceCache})
			case "heuristic":
				r = processes.NewResolver(d.ws, processes.Options{CachePath: d.cfg.Processes.CachePath, ConfigDoc: d.cfg.Agent.ConfigDoc, Force: processes.SourceHeuristic})
			default:
				return fmt.Errorf("unknown source %q (want auto, cache or heuristic)", source)
			}

			res := r.Resolve()
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, map[string]any{"processes": nonNil(res.Processes)})
			}
			fmt.Fprintln(out, d.locale.T("label.source", res.Source))
			if len(res.Processes) == 0 {
				fmt.Fprintln(out, d.locale.T("label.empty"))
				return nil
			}
			rows := make([][]string, 0, len(res.Processes))
			for _, p := range res.Processes {
				rows = append(rows, []string{p.Name, p.Schedule, p.Status, deref(p.LastRun), deref(p.NextRun), p.Description})
			}
			fmt.Fprintln(out, renderTable([]string{"NAME", "SCHEDULE", "STATUS", "LAST RUN", "NEXT RUN", "DESCRIPTION"}, rows))
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "source", "auto", "Resolution tier: auto, cache or heuristic")
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Output as JSON")
	return cmd
}

func filesCmd(load loader) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "files",
		Short: "List memory and note files",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := load()
			if err != nil {
				return err
			}
			list := d.files.List()
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, map[string]any{"files": nonNil(list)})
			}
			if len(list) == 0 {
				fmt.Fprintln(out, d.locale.T("label.empty"))
				return nil
			}
			rows := make([][]string, 0, len(list))
			for _, f := range list {
				rows = append(rows, []string{f.Category, f.Path, f.Size, f.Modified})
			}
			fmt.Fprintln(out, renderTable([]string{"CATEGORY", "PATH", "SIZE", "MODIFIED"}, rows))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Output as JSON")
	cmd.AddCommand(&cobra.Command{
		Use:   "show [path]",
		Short: "Print a memory file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := load()
			if err != nil {
				return err
			}
			content, err := d.files.Content(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), content)
			return nil
		},
	})
	return cmd
}

func watchCmd(load loader) *cobra.Command {
	var refresh int
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Open the terminal dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := load()
			if err != nil {
				return err
			}
			seconds := d.cfg.UI.RefreshSeconds
			if refresh > 0 {
				seconds = refresh
			}
			return tui.Run(cmd.Context(), tui.Sources{
				Status:    d.status,
				Tasks:     d.tasks,
				Processes: d.processes,
				Skills:    d.skills,
			}, tui.Options{
				Locale:  d.cfg.UI.Locale,
				Refresh: time.Duration(seconds) * time.Second,
			})
		},
	}
	cmd.Flags().IntVar(&refresh, "refresh", 0, "Refresh interval in seconds (overrides ui.refresh_seconds)")
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage clawdia configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init [dir]",
		Short: "Write a project config scaffold to .clawdia/config.json",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			path, err := config.InitProjectConfigScaffold(dir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})
	return cmd
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		String()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}

func deref(v *string) string {
	if v == nil {
		return "-"
	}
	return *v
}

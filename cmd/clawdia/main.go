package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"clawdia/internal/api"
	"clawdia/internal/config"
	"clawdia/internal/i18n"
	"clawdia/internal/memfiles"
	"clawdia/internal/processes"
	"clawdia/internal/security"
	"clawdia/internal/skills"
	"clawdia/internal/status"
	"clawdia/internal/tasks"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "clawdia",
		Short:         "Clawdia - status dashboard for a personal AI agent",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config JSON/JSONC")

	load := func() (*dashboard, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		return newDashboard(cfg)
	}

	rootCmd.AddCommand(serveCmd(load))
	rootCmd.AddCommand(statusCmd(load))
	rootCmd.AddCommand(tasksCmd(load))
	rootCmd.AddCommand(skillsCmd(load))
	rootCmd.AddCommand(processesCmd(load))
	rootCmd.AddCommand(filesCmd(load))
	rootCmd.AddCommand(watchCmd(load))
	rootCmd.AddCommand(configCmd())

	return rootCmd
}

type loader func() (*dashboard, error)

// dashboard 聚合所有面板服务，按配置装配
// dashboard wires every panel service from one config
type dashboard struct {
	cfg       config.Config
	ws        *security.Workspace
	locale    *i18n.I18n
	tasks     *tasks.Store
	skills    *skills.Manager
	processes *processes.Resolver
	status    *status.Aggregator
	files     *memfiles.Browser
}

func newDashboard(cfg config.Config) (*dashboard, error) {
	ws, err := security.NewWorkspace(cfg.Agent.Root)
	if err != nil {
		return nil, fmt.Errorf("init workspace: %w", err)
	}
	locale := i18n.New(cfg.UI.Locale)
	store := tasks.NewStore(ws)

	// 自定义技能在前，同名时排序保持该顺序
	// Custom skills come first; the stable sort keeps that order for equal names
	var roots []skills.Root
	if cfg.Skills.CustomDir != "" {
		roots = append(roots, skills.Root{Dir: cfg.Skills.CustomDir, Type: skills.TypeCustom})
	}
	if cfg.Skills.SystemDir != "" {
		roots = append(roots, skills.Root{Dir: cfg.Skills.SystemDir, Type: skills.TypeSystem})
	}

	return &dashboard{
		cfg:    cfg,
		ws:     ws,
		locale: locale,
		tasks:  store,
		skills: skills.NewManager(roots...),
		processes: processes.NewResolver(ws, processes.Options{
			CachePath: cfg.Processes.CachePath,
			ConfigDoc: cfg.Agent.ConfigDoc,
		}),
		status: status.New(ws, store, status.Options{
			Name:           cfg.Agent.Name,
			PackagePath:    cfg.Agent.PackagePath,
			CLI:            cfg.Agent.CLI,
			ConfigDoc:      cfg.Agent.ConfigDoc,
			DefaultVersion: cfg.Agent.DefaultVersion,
			VersionTimeout: time.Duration(cfg.Agent.VersionTimeoutMS) * time.Millisecond,
			MemoryPaths:    cfg.Memory.Paths,
			Locale:         locale,
		}),
		files: memfiles.NewBrowser(ws),
	}, nil
}

func (d *dashboard) services() api.Services {
	return api.Services{
		Status:    d.status,
		Tasks:     d.tasks,
		Processes: d.processes,
		Skills:    d.skills,
		Files:     d.files,
	}
}

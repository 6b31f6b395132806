package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/avitaltamir/projectable/internal/config"
	"github.com/avitaltamir/projectable/internal/engine"
	"github.com/avitaltamir/projectable/internal/logging"
	"github.com/avitaltamir/projectable/internal/preview"
	"github.com/avitaltamir/projectable/internal/state"
	"github.com/avitaltamir/projectable/internal/theme"
	"github.com/avitaltamir/projectable/internal/ui"
)

var version = "dev"

var (
	configPath string
	logFile    string
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:           "pj [dir]",
	Short:         "Browse a project tree and run commands on it",
	Args:          cobra.MaximumNArgs(1),
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, root, err := resolve(args)
		if err != nil {
			return err
		}
		return run(cfg, root)
	},
}

var configCmd = &cobra.Command{
	Use:   "config [dir]",
	Short: "Print the effective configuration as TOML",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := resolve(args)
		if err != nil {
			return err
		}
		out, err := cfg.Encode()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

var rootDirCmd = &cobra.Command{
	Use:   "root [dir]",
	Short: "Print the resolved project root",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, root, err := resolve(args)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), root)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "global config file (default "+defaultConfigHint()+")")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "write diagnostics to this file")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "log at debug level")
	rootCmd.SetVersionTemplate("pj {{.Version}}\n")
	rootCmd.AddCommand(configCmd, rootDirCmd)
}

func defaultConfigHint() string {
	if p, err := config.GlobalPath(); err == nil {
		return p
	}
	return "~/.config/projectable/" + config.FileName
}

// resolve loads the global config to learn the root markers, finds the
// project root, then loads again with the project-local file on top.
func resolve(args []string) (config.Config, string, error) {
	start := "."
	if len(args) > 0 {
		start = args[0]
	}
	global := configPath
	if global == "" {
		p, err := config.GlobalPath()
		if err != nil {
			return config.Config{}, "", err
		}
		global = p
	}

	base, err := config.Load(config.LoadOptions{Global: global})
	if err != nil {
		return config.Config{}, "", err
	}
	root, err := config.FindProjectRoot(start, base.ProjectRoots)
	if err != nil {
		return config.Config{}, "", err
	}
	cfg, err := config.Load(config.LoadOptions{
		Global: global,
		Local:  filepath.Join(root, config.LocalFileName),
	})
	if err != nil {
		return config.Config{}, "", err
	}
	return cfg, root, nil
}

func run(cfg config.Config, root string) error {
	logCfg := logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File}
	if logFile != "" {
		logCfg.File = logFile
	}
	if debug {
		logCfg.Level = logrus.DebugLevel.String()
	}
	log, closeLog, err := logging.New(logCfg)
	if err != nil {
		return err
	}
	defer closeLog()
	log.WithFields(logrus.Fields{"root": root, "version": version}).Info("starting")

	stateDir, err := config.Dir()
	if err != nil {
		log.WithError(err).Warn("state will not be saved")
		stateDir = ""
	}
	st := state.DefaultState()
	if stateDir != "" {
		st = state.Load(stateDir)
	}

	th, ok := theme.Lookup(st.Theme)
	if !ok {
		if th, ok = theme.Lookup(cfg.Theme); !ok {
			th = theme.Default()
		}
	}

	renderer, err := preview.New(preview.Options{
		Command: cfg.Preview.PreviewCmd,
		Pager:   cfg.Preview.GitPager,
		Shell:   cfg.Process.Shell,
		Dir:     root,
		Styles:  theme.NewStyles(th),
		Log:     log,
	})
	if err != nil {
		return err
	}

	term := &ui.ProgramTerminal{}
	eng, err := engine.New(engine.Config{
		Root:       root,
		Settings:   cfg,
		ShowHidden: st.HiddenOr(cfg.Filetree.ShowHiddenByDefault),
		GitFilter:  st.GitFilter,
	}, engine.Deps{
		Log:      log,
		Terminal: term,
	})
	if err != nil {
		return err
	}
	defer eng.Close()

	model := ui.New(eng, ui.Options{
		Settings: cfg,
		State:    st,
		StateDir: stateDir,
		Theme:    th,
		Preview:  renderer,
		Log:      log,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())
	term.Attach(p)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

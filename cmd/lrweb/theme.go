package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/normal-ex/letrecovery-web/internal/config"
	"github.com/normal-ex/letrecovery-web/internal/dbus"
	"github.com/normal-ex/letrecovery-web/internal/store"
	"github.com/normal-ex/letrecovery-web/internal/theme"
)

var themeOpts struct {
	source string
}

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	lightStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	darkStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
	timeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Read, change or follow the theme preference",
	Long: `Manage the persisted theme preference.

The preference is one of light, dark or system and is stored in
~/.local/share/letrecovery-web/state.json unless [theme] state_file is set.
With system the resolved theme follows the desktop color scheme reported by
the freedesktop settings portal.`,
}

var themeGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the preference and resolved theme",
	Args:  cobra.NoArgs,
	RunE:  runThemeGet,
}

var themeSetCmd = &cobra.Command{
	Use:       "set <light|dark|system>",
	Short:     "Change the preference",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"light", "dark", "system"},
	RunE:      runThemeSet,
}

var themeWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the resolved theme whenever it changes",
	Long: `Print the resolved theme now and on every change until interrupted.

Changes come from the desktop color scheme (while the preference is system)
and from the state file being rewritten, for example by "lrweb theme set" in
another terminal.`,
	Args: cobra.NoArgs,
	RunE: runThemeWatch,
}

func init() {
	themeCmd.AddCommand(themeGetCmd)
	themeCmd.AddCommand(themeSetCmd)
	themeCmd.AddCommand(themeWatchCmd)
	rootCmd.AddCommand(themeCmd)

	themeCmd.PersistentFlags().StringVar(&themeOpts.source, "source", "",
		"Color scheme source: portal, light or dark (overrides [theme] source)")
}

// newDesktopResolver builds a resolver backed by the state file and the
// configured color-scheme source. The returned cleanup closes both.
func newDesktopResolver() (*theme.Resolver, *store.PreferenceFile, func(), error) {
	path := cfg.Theme.StateFile
	if path == "" {
		var err error
		path, err = store.StateFilePath()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to locate state file: %w", err)
		}
	}
	file := store.NewPreferenceFile(path)

	sourceName := cfg.Theme.Source
	if themeOpts.source != "" {
		sourceName = themeOpts.source
	}

	var (
		source  theme.SchemeSource
		cleanup = func() {}
	)
	switch config.SchemeSource(sourceName) {
	case config.SchemeSourceLight:
		source = theme.StaticSource(false)
	case config.SchemeSourceDark:
		source = theme.StaticSource(true)
	case config.SchemeSourcePortal:
		portal := dbus.NewPortalSource(logger)
		if err := portal.Connect(); err != nil {
			logger.Warn("settings portal unavailable, assuming light", "error", err)
			source = theme.StaticSource(false)
			break
		}
		source = portal
		cleanup = func() {
			if err := portal.Close(); err != nil {
				logger.Debug("failed to close portal connection", "error", err)
			}
		}
	default:
		return nil, nil, nil, fmt.Errorf("invalid source %q, must be one of: %v",
			sourceName, config.ValidSchemeSources())
	}

	r := theme.New(file, source, theme.WithLogger(logger))
	return r, file, func() {
		_ = r.Close()
		cleanup()
	}, nil
}

func runThemeGet(cmd *cobra.Command, args []string) error {
	r, _, cleanup, err := newDesktopResolver()
	if err != nil {
		return err
	}
	defer cleanup()

	printState(cmd.OutOrStdout(), r.State())
	return nil
}

func runThemeSet(cmd *cobra.Command, args []string) error {
	p, err := theme.ParsePreference(args[0])
	if err != nil {
		return err
	}

	r, file, cleanup, err := newDesktopResolver()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := r.SetPreference(p); err != nil {
		return err
	}

	// The resolver keeps going on a failed save; the command should not.
	saved, err := file.Load()
	if err != nil {
		return fmt.Errorf("failed to verify saved preference: %w", err)
	}
	if saved != p {
		return fmt.Errorf("failed to save preference to %s", file.Path())
	}

	printState(cmd.OutOrStdout(), r.State())
	return nil
}

func runThemeWatch(cmd *cobra.Command, args []string) error {
	r, file, cleanup, err := newDesktopResolver()
	if err != nil {
		return err
	}
	defer cleanup()

	out := cmd.OutOrStdout()
	events := make(chan theme.State, 8)
	unsubscribe := r.Subscribe(func(s theme.State) {
		select {
		case events <- s:
		default:
			logger.Warn("dropping theme event, output is behind")
		}
	})
	defer unsubscribe()

	watcher, err := store.NewPreferenceWatcher(file.Path(), r.Reload, logger)
	if err != nil {
		return fmt.Errorf("failed to create state file watcher: %w", err)
	}
	if err := watcher.Start(); err != nil {
		return fmt.Errorf("failed to watch state file: %w", err)
	}
	defer func() { _ = watcher.Stop() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	printEvent(out, time.Now(), r.State())
	for {
		select {
		case <-ctx.Done():
			return nil
		case s := <-events:
			printEvent(out, time.Now(), s)
		}
	}
}

func styleResolved(resolved theme.Resolved) string {
	if resolved.IsDark() {
		return darkStyle.Render(string(resolved))
	}
	return lightStyle.Render(string(resolved))
}

func printState(w io.Writer, s theme.State) {
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("preference:"), s.Preference)
	fmt.Fprintf(w, "%s   %s\n", labelStyle.Render("resolved:"), styleResolved(s.Resolved))
}

func printEvent(w io.Writer, at time.Time, s theme.State) {
	fmt.Fprintf(w, "%s %s (%s)\n",
		timeStyle.Render(at.Format(time.TimeOnly)),
		styleResolved(s.Resolved),
		s.Preference)
}

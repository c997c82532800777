package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"codelingo/internal/app"
	"codelingo/internal/devtools"
	"codelingo/internal/router"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	dataDir    string
	catalogDir string
	logLevel   string
	ascii      bool
	debug      bool
	hearts     bool
}

func newRootCmd() *cobra.Command {
	var flags rootFlags
	root := &cobra.Command{
		Use:           "codelingo",
		Short:         "Bite-sized coding lessons in your terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlay(cmd, flags, "")
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&flags.dataDir, "data-dir", "", "directory holding state.db (default: user data dir)")
	pf.StringVar(&flags.catalogDir, "catalog", "", "load course packs from this directory instead of the built-in ones")
	pf.StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error")
	pf.BoolVar(&flags.ascii, "ascii", false, "draw with ASCII only")
	pf.BoolVar(&flags.debug, "debug", false, "verbose logging")
	pf.BoolVar(&flags.hearts, "hearts", false, "lose a heart on every wrong answer")

	root.AddCommand(
		newPlayCmd(&flags),
		newStatusCmd(&flags),
		newOpenCmd(&flags),
		newResetCmd(&flags),
		newPreviewCmd(&flags),
		newSeedCmd(&flags),
	)
	return root
}

// loadConfig layers flags that were set explicitly over the environment.
func loadConfig(cmd *cobra.Command, flags rootFlags) (app.Config, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return cfg, err
	}
	changed := cmd.Flags().Changed
	if changed("data-dir") {
		cfg.DataDir = flags.dataDir
	}
	if changed("catalog") {
		cfg.CatalogDir = flags.catalogDir
	}
	if changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}
	if changed("ascii") {
		cfg.ASCIIOnly = flags.ascii
	}
	if changed("debug") {
		cfg.Debug = flags.debug
	}
	if changed("hearts") {
		cfg.Gameplay.HeartsEnabled = flags.hearts
	}
	return cfg, nil
}

func openApp(cmd *cobra.Command, flags rootFlags) (*app.App, error) {
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return nil, err
	}
	return app.New(cfg)
}

func runPlay(cmd *cobra.Command, flags rootFlags, route string) error {
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}
	cfg.StartRoute = route
	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return a.Run(cmd.Context())
}

func newPlayCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "play [route]",
		Short: "Start the lesson TUI, optionally at a route such as map/python",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			route := ""
			if len(args) == 1 {
				route = args[0]
			}
			return runPlay(cmd, *flags, route)
		},
	}
}

func newStatusCmd(flags *rootFlags) *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print XP, streak, badges and unit progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, *flags)
			if err != nil {
				return err
			}
			defer a.Close()
			snap := a.Status(cmd.Context())
			md := app.StatusMarkdown(snap)
			if plain {
				_, err := io.WriteString(cmd.OutOrStdout(), md)
				return err
			}
			r, err := glamour.NewTermRenderer(
				glamour.WithStandardStyle(snap.Theme),
				glamour.WithWordWrap(100),
			)
			if err != nil {
				return err
			}
			out, err := r.Render(md)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print raw markdown")
	return cmd
}

func newOpenCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "open <route>",
		Short: "Resolve a route token and show where it leads",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, *flags)
			if err != nil {
				return err
			}
			defer a.Close()
			r := router.Parse(args[0], a.Catalog())
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", r.String())
			if r.Redirected {
				fmt.Fprintf(out, "redirected: %s\n", r.Reason)
			}
			return nil
		},
	}
}

var errResetDeclined = errors.New("reset cancelled")

func newResetCmd(flags *rootFlags) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Erase all progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Erase all progress? This cannot be undone. [y/N] ") {
				return errResetDeclined
			}
			a, err := openApp(cmd, *flags)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.ResetProgress(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Progress reset.")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func newPreviewCmd(flags *rootFlags) *cobra.Command {
	var cols, rows int
	cmd := &cobra.Command{
		Use:    "preview [route]",
		Short:  "Render one frame of a screen without starting the TUI",
		Hidden: true,
		Args:   cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, *flags)
			if err != nil {
				return err
			}
			defer a.Close()
			route := ""
			if len(args) == 1 {
				route = args[0]
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.Preview(route, cols, rows))
			return nil
		},
	}
	cmd.Flags().IntVar(&cols, "cols", 100, "frame width")
	cmd.Flags().IntVar(&rows, "rows", 30, "frame height")
	return cmd
}

func newSeedCmd(flags *rootFlags) *cobra.Command {
	demo := devtools.NewManager()
	return &cobra.Command{
		Use:       "seed <scenario>",
		Short:     "Overwrite progress with a demo scenario",
		Hidden:    true,
		Args:      cobra.ExactArgs(1),
		ValidArgs: demo.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, *flags)
			if err != nil {
				return err
			}
			defer a.Close()
			route, err := a.Seed(cmd.Context(), demo, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %s, try: codelingo play %s\n", args[0], route)
			return nil
		},
	}
}

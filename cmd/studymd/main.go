package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/gubarz/studymd/internal/clipboard"
	"github.com/gubarz/studymd/internal/config"
	"github.com/gubarz/studymd/internal/content"
	"github.com/gubarz/studymd/internal/logging"
	"github.com/gubarz/studymd/internal/parser"
	"github.com/gubarz/studymd/internal/search"
	"github.com/gubarz/studymd/internal/ui"
)

var version = "0.1.0"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "studymd [doc]",
	Short: "Markdown study guides in the terminal",
	Long: `Read Markdown study guides in an interactive viewer.

Jump between sections, bookmark them, search the guide,
copy code blocks and keep notes while you study.`,
	Args:              cobra.MaximumNArgs(1),
	PersistentPreRunE: initConfig,
	RunE:              runViewer,
	SilenceUsage:      true,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available guides",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var tocCmd = &cobra.Command{
	Use:   "toc <doc>",
	Short: "Print a guide's table of contents",
	Args:  cobra.ExactArgs(1),
	RunE:  runTOC,
}

var searchCmd = &cobra.Command{
	Use:   "search <doc> <query>",
	Short: "Search a guide line by line",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runSearch,
}

var renderCmd = &cobra.Command{
	Use:   "render <doc>",
	Short: "Print a guide as formatted text",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

func init() {
	rootCmd.AddCommand(listCmd, tocCmd, searchCmd, renderCmd)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: studymd.yaml in ~/.config/studymd, ~ or .)")
	rootCmd.PersistentFlags().StringP("dir", "d", "", "Read guides from a directory instead of the bundled set")
	rootCmd.PersistentFlags().BoolP("watch", "w", false, "Reload guides when files in --dir change")

	searchCmd.Flags().IntP("limit", "l", 0, "Maximum number of results (default from config)")
	renderCmd.Flags().Int("width", 0, "Wrap width (default from config)")
	renderCmd.Flags().Bool("plain", false, "Disable colors")

	viper.BindPFlag("dir", rootCmd.PersistentFlags().Lookup("dir"))
	viper.BindPFlag("watch", rootCmd.PersistentFlags().Lookup("watch"))
}

func initConfig(cmd *cobra.Command, args []string) error {
	if err := config.Init(cfgFile); err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	return nil
}

// openLibrary builds the guide source named by config
func openLibrary(logger *slog.Logger) (*content.Library, error) {
	var (
		src *content.FSSource
		err error
	)
	if dir := config.GetDir(); dir != "" {
		src, err = content.NewDir(dir)
	} else {
		src, err = content.NewBundled()
	}
	if err != nil {
		return nil, fmt.Errorf("open guides: %w", err)
	}
	return content.NewLibrary(src, logger), nil
}

// loadDoc loads a guide for the non-interactive commands, which fail on missing guides
func loadDoc(ctx context.Context, id string) (*content.Document, error) {
	lib, err := openLibrary(slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		return nil, err
	}
	res := lib.Load(ctx, id)
	if res.Status != content.StatusOK {
		return nil, fmt.Errorf("%s: %w", id, res.Err)
	}
	return res.Document, nil
}

func runViewer(cmd *cobra.Command, args []string) error {
	logger, closer, err := logging.New(config.GetLogFile(), config.GetLogLevel())
	if err != nil {
		return err
	}
	defer closer.Close()
	slog.SetDefault(logger)

	lib, err := openLibrary(logger)
	if err != nil {
		return err
	}

	docID := config.GetDefaultDoc()
	if len(args) > 0 {
		docID = args[0]
	}
	logger.Info("studymd: starting",
		slog.String("doc", docID),
		slog.String("dir", config.GetDir()),
		slog.Bool("watch", config.GetWatch()))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	var changes chan []string
	if dir := config.GetDir(); config.GetWatch() && dir != "" {
		changes = make(chan []string, 1)
		g.Go(func() error {
			err := content.Watch(gCtx, dir, logger, func(files []string) {
				select {
				case changes <- files:
				case <-gCtx.Done():
				}
			})
			if err != nil {
				logger.Error("watcher failed", slog.String("error", err.Error()))
			}
			return nil
		})
	} else if config.GetWatch() {
		fmt.Fprintln(os.Stderr, "Warning: --watch has no effect without --dir")
	}

	g.Go(func() error {
		defer cancel()
		return ui.Run(gCtx, ui.Options{
			Library:  lib,
			Copier:   clipboard.NewCopier(logger),
			Logger:   logger,
			DocID:    docID,
			DarkMode: config.GetDarkMode(),
			Search: search.Options{
				Limit:   config.GetSearchLimit(),
				Context: config.GetSearchContext(),
			},
			WrapWidth:    config.GetWrapWidth(),
			SidebarWidth: config.GetSidebarWidth(),
		}, changes)
	})

	return g.Wait()
}

func runList(cmd *cobra.Command, args []string) error {
	lib, err := openLibrary(slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, item := range lib.Catalog() {
		fmt.Fprintf(out, "%-24s %-9s %s\n", item.ID, item.Icon, item.Title)
	}
	return nil
}

func runTOC(cmd *cobra.Command, args []string) error {
	doc, err := loadDoc(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, s := range doc.Sections {
		indent := strings.Repeat("  ", max(s.Level-1, 0))
		fmt.Fprintf(out, "%s%s  #%s\n", indent, s.Title, s.ID)
	}
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	doc, err := loadDoc(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	limit := config.GetSearchLimit()
	if cmd.Flags().Changed("limit") {
		limit, _ = cmd.Flags().GetInt("limit")
	}
	query := strings.Join(args[1:], " ")
	results := search.Search(doc.Content, query, search.Options{
		Limit:   limit,
		Context: config.GetSearchContext(),
	})

	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintf(out, "no matches for %q\n", query)
		return nil
	}
	mark := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(config.GetColorAccent()))
	for _, r := range results {
		var snippet strings.Builder
		for i, part := range search.Highlights(r.Snippet) {
			if i%2 == 1 {
				part = mark.Render(part)
			}
			snippet.WriteString(part)
		}
		fmt.Fprintf(out, "%5d  %-28s %s\n", r.Line, r.SectionID, snippet.String())
	}
	return nil
}

func runRender(cmd *cobra.Command, args []string) error {
	doc, err := loadDoc(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	width := config.GetWrapWidth()
	if cmd.Flags().Changed("width") {
		width, _ = cmd.Flags().GetInt("width")
	}

	st := ui.PlainStyles()
	if plain, _ := cmd.Flags().GetBool("plain"); !plain {
		st = ui.DefaultStyles()
		st.LoadFromConfig(config.GetDarkMode())
	}

	page := ui.Layout(parser.Render(doc.Content), width, st)
	fmt.Fprintln(cmd.OutOrStdout(), page.Content())
	return nil
}

func main() {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thiagokokada/storygraph/internal/buildinfo"
	"github.com/thiagokokada/storygraph/internal/gitexport"
	"github.com/thiagokokada/storygraph/internal/gui"
	"github.com/thiagokokada/storygraph/internal/logging"
	"github.com/thiagokokada/storygraph/internal/render"
	"github.com/thiagokokada/storygraph/internal/script"
	"github.com/thiagokokada/storygraph/internal/session"
	"github.com/thiagokokada/storygraph/internal/story"
	"github.com/thiagokokada/storygraph/internal/template"
	"github.com/thiagokokada/storygraph/internal/watch"
	"github.com/thiagokokada/storygraph/internal/web"
)

type globalOptions struct {
	story     string
	verbose   bool
	logFormat string
	logger    *slog.Logger
}

// storyPath prefers a positional argument over --story.
func (o *globalOptions) storyPath(args []string) string {
	if len(args) > 0 {
		return args[len(args)-1]
	}
	return o.story
}

func (o *globalOptions) load(args []string) (*script.Script, error) {
	return script.LoadOrDefault(o.storyPath(args))
}

func Run() error {
	return newRootCmd().ExecuteContext(context.Background())
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	view := &viewOptions{}
	root := &cobra.Command{
		Use:   buildinfo.Name + " [story.yaml]",
		Short: "Draw a career history as a git-style commit graph",
		Long: `Draw a career history as a git-style commit graph.

Without a story file the built-in career story is shown. Clicking a commit
expands it to show its details.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			format, err := logging.ParseFormat(opts.logFormat)
			if err != nil {
				return err
			}
			opts.logger = logging.Setup(cmd.ErrOrStderr(), opts.verbose, format)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(opts, view, args)
		},
	}
	root.PersistentFlags().StringVarP(&opts.story, "story", "s", "", "story file to load (default: built-in career story)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", string(logging.FormatText), "log format: text, json, or logfmt")
	bindViewFlags(root, view)

	root.AddCommand(
		newViewCmd(opts),
		newRenderCmd(opts),
		newServeCmd(opts),
		newExportGitCmd(opts),
		newVersionCmd(),
	)
	return root
}

type viewOptions struct {
	mode     string
	noWatch  bool
	noSyntax bool
}

func bindViewFlags(cmd *cobra.Command, v *viewOptions) {
	cmd.Flags().StringVar(&v.mode, "mode", gui.ThemeAuto.String(), "color mode: auto, light, or dark")
	cmd.Flags().BoolVar(&v.noWatch, "nowatch", false, "disable automatic reload when the story file changes")
	cmd.Flags().BoolVar(&v.noSyntax, "nosyntax", false, "disable syntax highlighting in the detail pane")
}

func newViewCmd(opts *globalOptions) *cobra.Command {
	view := &viewOptions{}
	cmd := &cobra.Command{
		Use:   "view [story.yaml]",
		Short: "Show the story in a desktop window (default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(opts, view, args)
		},
	}
	bindViewFlags(cmd, view)
	return cmd
}

func runView(opts *globalOptions, view *viewOptions, args []string) error {
	return gui.Run(gui.RunConfig{
		StoryPath:       opts.storyPath(args),
		ThemePreference: gui.ThemePreferenceFromString(view.mode),
		AutoReload:      !view.noWatch,
		SyntaxHighlight: !view.noSyntax,
		Logger:          opts.logger,
	})
}

type renderOptions struct {
	format      string
	output      string
	orientation string
	mode        string
	expand      []int
}

func newRenderCmd(opts *globalOptions) *cobra.Command {
	ro := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render [story.yaml]",
		Short: "Render the story as SVG or as a text outline",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := opts.load(args)
			if err != nil {
				return err
			}
			if ro.orientation != "" {
				sc.Layout.Orientation = ro.orientation
			}
			if ro.mode != "" {
				sc.Layout.Mode = ro.mode
			}
			return renderStory(cmd.OutOrStdout(), sc, ro, opts.logger)
		},
	}
	cmd.Flags().StringVarP(&ro.format, "format", "f", "svg", "output format: svg or outline")
	cmd.Flags().StringVarP(&ro.output, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().StringVar(&ro.orientation, "orientation", "", "override the story orientation")
	cmd.Flags().StringVar(&ro.mode, "layout-mode", "", "override the story mode: extended or compact")
	cmd.Flags().IntSliceVarP(&ro.expand, "expand", "e", nil, "commit ids to expand before rendering")
	return cmd
}

func renderStory(stdout io.Writer, sc *script.Script, ro *renderOptions, logger *slog.Logger) (err error) {
	format := strings.ToLower(strings.TrimSpace(ro.format))
	if format != "svg" && format != "outline" {
		return fmt.Errorf("unknown format %q", ro.format)
	}
	var engine *render.SVGEngine
	host := session.HostFunc(func(string) (session.Container, bool) {
		return session.ContainerFunc(func(g *story.Graph, tmpl template.Template, o render.Options) (render.Engine, error) {
			engine = render.NewSVGEngine(g, tmpl, o)
			return engine, nil
		}), true
	})
	sess, err := session.Start(host, session.Config{Script: sc, Logger: logger})
	if err != nil {
		return err
	}
	for _, id := range ro.expand {
		if _, err := sess.Controller.Toggle(story.CommitID(id)); err != nil {
			return fmt.Errorf("expand: %w", err)
		}
	}

	w := stdout
	if ro.output != "" {
		f, err := os.Create(ro.output)
		if err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, f.Close())
		}()
		w = f
	}
	if format == "outline" {
		_, err = io.WriteString(w, sess.Outline())
		return err
	}
	_, err = w.Write(engine.Bytes())
	return err
}

type serveOptions struct {
	addr    string
	noWatch bool
	dark    bool
}

func newServeCmd(opts *globalOptions) *cobra.Command {
	so := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve [story.yaml]",
		Short: "Serve the story as an interactive web page",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := opts.load(args)
			if err != nil {
				return err
			}
			srv, err := web.New(web.Config{Script: sc, Dark: so.dark, Logger: opts.logger})
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if path := opts.storyPath(args); path != "" && !so.noWatch {
				w, err := watchStory(srv, path, opts.logger)
				if err != nil {
					opts.logger.Error("auto reload disabled", slog.Any("error", err))
				} else {
					defer w.Close()
				}
			}
			return srv.Run(ctx, so.addr)
		},
	}
	cmd.Flags().StringVar(&so.addr, "addr", "localhost:8080", "address to listen on")
	cmd.Flags().BoolVar(&so.noWatch, "nowatch", false, "disable automatic reload when the story file changes")
	cmd.Flags().BoolVar(&so.dark, "dark", false, "use the dark highlighting style for details")
	return cmd
}

func watchStory(srv *web.Server, path string, logger *slog.Logger) (*watch.Watcher, error) {
	files := []string{path}
	if sess := srv.Session(); sess != nil {
		files = sess.Script.SourceFiles()
	}
	return watch.New(files, watch.DefaultDelay, func() {
		next, err := script.Load(path)
		if err == nil {
			err = srv.Reload(next)
		}
		if err != nil {
			logger.Error("failed to reload story", slog.String("path", path), slog.Any("error", err))
			return
		}
		logger.Info("story reloaded", slog.String("path", path))
	})
}

func newExportGitCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export-git DIR",
		Short: "Write the story as a bare git repository",
		Long: `Write the story as a bare git repository in DIR.

Every story commit becomes a git commit with the same hash the graph shows,
and every branch becomes a ref. Open it with any git tool.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := script.LoadOrDefault(opts.story)
			if err != nil {
				return err
			}
			g, err := sc.Build(nil)
			if err != nil {
				return err
			}
			res, err := gitexport.ExportDir(g, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d commits and %d branches to %s (HEAD -> %s)\n",
				res.Commits, len(res.Refs), args[0], res.Head.Short())
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), buildinfo.Title())
		},
	}
}

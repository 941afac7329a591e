package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/park285/samarth-chess/internal/livefeed"
	"github.com/park285/samarth-chess/pkg/chessdto"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "chessctl",
		Short:         a.formatter.Help("root"),
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	flags := root.PersistentFlags()
	flags.StringVar(&a.server, "server", a.server, "chess-server API base URL (env CHESS_SERVER)")
	flags.StringVar(&a.feed, "feed", a.feed, "live feed base URL (env CHESS_FEED); empty uses the API host")
	flags.StringVarP(&a.session, "session", "s", a.session, "session id (env CHESS_SESSION)")
	flags.DurationVar(&a.timeout, "timeout", a.timeout, "per-request timeout")

	root.AddCommand(
		newNewCmd(a),
		newShowCmd(a),
		newClickCmd(a),
		newUndoCmd(a),
		newResetCmd(a),
		newFlipCmd(a),
		newFENCmd(a),
		newPNGCmd(a),
		newWatchCmd(a),
	)
	return root
}

// sessionCmd builds a command that needs a session id and a client.
func sessionCmd(a *app, use, help string, args cobra.PositionalArgs, run func(cmd *cobra.Command, id string, args []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: a.formatter.Help(help),
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.sessionID()
			if err != nil {
				return err
			}
			return run(cmd, id, args)
		},
	}
}

func newNewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: a.formatter.Help("new"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := a.client().Create(cmd.Context())
			if err != nil {
				return err
			}
			return a.presenter(cmd.OutOrStdout(), "").Board("session "+v.ID, v)
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	return sessionCmd(a, "show", "show", cobra.NoArgs, func(cmd *cobra.Command, id string, _ []string) error {
		v, err := a.client().Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		return a.presenter(cmd.OutOrStdout(), "").Board("", v)
	})
}

// click accepts several squares so "click e2 e4" plays a move in one call.
func newClickCmd(a *app) *cobra.Command {
	return sessionCmd(a, "click <square>...", "click", cobra.MinimumNArgs(1), func(cmd *cobra.Command, id string, args []string) error {
		c := a.client()
		p := a.presenter(cmd.OutOrStdout(), "")
		var (
			last  chessdto.ClickResponse
			lines []string
		)
		for _, sq := range args {
			resp, err := c.Click(cmd.Context(), id, strings.ToLower(sq))
			if err != nil {
				return err
			}
			last = resp
			lines = append(lines, a.formatter.Outcome(resp.Outcome))
		}
		return p.Board(strings.Join(lines, "\n"), last.View)
	})
}

func newUndoCmd(a *app) *cobra.Command {
	return sessionCmd(a, "undo", "undo", cobra.NoArgs, func(cmd *cobra.Command, id string, _ []string) error {
		resp, err := a.client().Undo(cmd.Context(), id)
		if err != nil {
			return err
		}
		return a.presenter(cmd.OutOrStdout(), "").Board(a.formatter.Undo(resp.Undone), resp.View)
	})
}

func newResetCmd(a *app) *cobra.Command {
	return sessionCmd(a, "reset", "reset", cobra.NoArgs, func(cmd *cobra.Command, id string, _ []string) error {
		v, err := a.client().Reset(cmd.Context(), id)
		if err != nil {
			return err
		}
		return a.presenter(cmd.OutOrStdout(), "").Board(a.formatter.Reset(), v)
	})
}

func newFlipCmd(a *app) *cobra.Command {
	return sessionCmd(a, "flip", "flip", cobra.NoArgs, func(cmd *cobra.Command, id string, _ []string) error {
		v, err := a.client().Flip(cmd.Context(), id)
		if err != nil {
			return err
		}
		return a.presenter(cmd.OutOrStdout(), "").Board(a.formatter.Flipped(), v)
	})
}

func newFENCmd(a *app) *cobra.Command {
	cmd := sessionCmd(a, "fen", "fen", cobra.NoArgs, func(cmd *cobra.Command, id string, _ []string) error {
		out, err := a.client().FEN(cmd.Context(), id)
		if err != nil {
			return err
		}
		return a.presenter(cmd.OutOrStdout(), "").Text(out)
	})
	// FEN fields contain spaces; accept them quoted or as separate args.
	cmd.AddCommand(sessionCmd(a, "set <fen>", "fen", cobra.MinimumNArgs(1), func(cmd *cobra.Command, id string, args []string) error {
		v, err := a.client().LoadFEN(cmd.Context(), id, strings.Join(args, " "))
		if err != nil {
			return err
		}
		return a.presenter(cmd.OutOrStdout(), "").Board("", v)
	}))
	return cmd
}

func newPNGCmd(a *app) *cobra.Command {
	var size int
	cmd := sessionCmd(a, "png <file>", "png", cobra.ExactArgs(1), func(cmd *cobra.Command, id string, args []string) error {
		data, err := a.client().BoardPNG(cmd.Context(), id, size)
		if err != nil {
			return err
		}
		if err := a.presenter(cmd.OutOrStdout(), args[0]).Image(data); err != nil {
			return fmt.Errorf("write %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", args[0], len(data))
		return nil
	})
	cmd.Flags().IntVar(&size, "size", 0, "pixels per square (16..256, 0 for server default)")
	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	return sessionCmd(a, "watch", "watch", cobra.NoArgs, func(cmd *cobra.Command, id string, _ []string) error {
		p := a.presenter(cmd.OutOrStdout(), "")
		err := livefeed.Watch(cmd.Context(), a.watchURL(a.client(), id), func(v chessdto.SessionView) {
			msg := ""
			if v.LastMove != nil {
				msg = v.LastMove.Text
			}
			_ = p.Board(msg, v)
		})
		if errors.Is(err, livefeed.ErrSessionClosed) {
			return p.Text("session " + id + " closed")
		}
		return err
	})
}

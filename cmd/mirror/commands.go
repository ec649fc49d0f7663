package main

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/zoobzio/mirror"
)

func newGetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get [KEY]",
		Short: "Print the file's value, or one top-level key, as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := a.newMonitor()
			if err := m.Reload(cmd.Context()); err != nil {
				return err
			}

			doc := m.Value()
			if len(args) == 0 {
				return printJSON(cmd.OutOrStdout(), doc)
			}
			v, ok := doc[args[0]]
			if !ok {
				return fmt.Errorf("key %q not found in %s", args[0], m.Path())
			}
			return printJSON(cmd.OutOrStdout(), v)
		},
	}
}

func newSetCommand(a *app) *cobra.Command {
	var remove bool

	cmd := &cobra.Command{
		Use:   "set KEY [VALUE]",
		Short: "Set or remove a top-level key and save the file",
		Long: `set loads the file, replaces one top-level key and writes the file back
atomically. VALUE is parsed as YAML, so 42, true and [a, b] keep their types;
anything else is stored as a string.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if remove {
				return cobra.ExactArgs(1)(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			m := a.newMonitor()
			if err := m.Reload(cmd.Context()); err != nil {
				return err
			}

			doc := maps.Clone(m.Value())
			if doc == nil {
				doc = Document{}
			}
			if remove {
				delete(doc, args[0])
			} else {
				doc[args[0]] = parseValue(args[1])
			}

			m.Set(doc)
			if err := m.Flush(cmd.Context()); err != nil {
				return err
			}
			return m.LastError()
		},
	}

	cmd.Flags().BoolVarP(&remove, "delete", "d", false, "Remove KEY instead of setting it")
	return cmd
}

func newWatchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print the value every time the file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watch(ctx, a, cmd.OutOrStdout())
		},
	}
}

// watch prints the value once loaded and after every change until ctx is done.
func watch(ctx context.Context, a *app, out io.Writer) error {
	m := a.newMonitor().OnChange(func(doc Document) {
		if err := printJSON(out, doc); err != nil {
			a.log.Warn("failed to print value", zap.Error(err))
		}
	})

	if err := m.Start(ctx); err != nil {
		return err
	}
	defer m.Stop()

	if m.State() == mirror.StateMissing {
		if err := printJSON(out, m.Value()); err != nil {
			return err
		}
	}

	<-ctx.Done()
	return nil
}

// parseValue interprets raw as a YAML scalar or collection, falling back to
// the literal string.
func parseValue(raw string) any {
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil || v == nil {
		return raw
	}
	return v
}

func printJSON(w io.Writer, v any) error {
	data, err := mirror.JSONCodec{}.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	ai "github.com/spetersoncode/assistant"
	"github.com/spetersoncode/assistant/mcp"
	"github.com/spetersoncode/assistant/model"
	"github.com/spetersoncode/assistant/stream"
	"github.com/spf13/cobra"
)

func newServeCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := rt.newAgent()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server := &http.Server{
				Addr:         fmt.Sprintf(":%d", rt.cfg.Port),
				Handler:      NewServer(a, rt.cfg.Heartbeat, rt.log).Routes(),
				ReadTimeout:  10 * time.Second,
				WriteTimeout: 0, // SSE needs no write timeout
				IdleTimeout:  120 * time.Second,
			}
			return serve(ctx, server, rt)
		},
	}
}

func serve(ctx context.Context, server *http.Server, rt *runtime) error {
	errCh := make(chan error, 1)
	go func() {
		rt.log.Info("server starting",
			"addr", server.Addr,
			"provider", rt.cfg.Provider,
			"chat", "POST /chat",
			"agui", "POST /api/agent",
		)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	rt.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	rt.log.Info("server stopped")
	return nil
}

func newAskCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <message>",
		Short: "Ask one question and print the streamed answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.newAgent()
			if err != nil {
				return err
			}
			message := strings.Join(args, " ")

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			out := cmd.OutOrStdout()
			for ev := range stream.Adapt(a.RunStream(ctx, message)) {
				switch ev.Kind {
				case stream.KindToken:
					fmt.Fprint(out, ev.Content)
				case stream.KindDone:
					fmt.Fprintln(out)
				case stream.KindError:
					fmt.Fprintln(out)
					return errors.New(ev.Message)
				}
			}
			return nil
		},
	}
}

func newMCPCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the tools to MCP clients over stdio",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			rt.log.Info("serving MCP over stdio")
			return mcp.ServeStdio(rt.registry())
		},
	}
}

func newToolsCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools offered to the model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, t := range rt.registry().Tools() {
				fmt.Fprintf(tw, "%s\t%s\n", t.Name, t.Description)
			}
			return tw.Flush()
		},
	}
}

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models [provider]",
		Short: "List models with known pricing",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var provider ai.Provider
			if len(args) == 1 {
				p, err := ai.ParseProvider(args[0])
				if err != nil {
					return err
				}
				provider = p
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "MODEL\tPROVIDER\tINPUT $/M\tOUTPUT $/M\tDEFAULT")
			for _, m := range model.Models(provider) {
				def := ""
				if m.Provider().DefaultModel() == m.String() {
					def = "yes"
				}
				p := m.Pricing()
				fmt.Fprintf(tw, "%s\t%s\t%.3f\t%.3f\t%s\n", m, m.Provider(), p.InputPerMillion, p.OutputPerMillion, def)
			}
			return tw.Flush()
		},
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"splox-go/internal/infra/config"
	"splox-go/pkg/splox"
)

const maxConcurrentTrees = 4

type runFlags struct {
	params  splox.RunParams
	timeout time.Duration
	stream  bool
}

// parseRunFlags accepts both "--flag value" and "--flag=value".
func parseRunFlags(args []string) (runFlags, error) {
	var f runFlags
	for i := 0; i < len(args); i++ {
		name, value, hasValue := strings.Cut(args[i], "=")
		if name == "--stream" {
			f.stream = true
			continue
		}
		if !hasValue {
			if i+1 >= len(args) {
				return f, fmt.Errorf("flag %s needs a value", name)
			}
			i++
			value = args[i]
		}
		switch name {
		case "--version":
			f.params.WorkflowVersionID = value
		case "--chat":
			f.params.ChatID = value
		case "--start":
			f.params.StartNodeID = value
		case "--query":
			f.params.Query = value
		case "--end-user":
			f.params.EndUserID = value
		case "--timeout":
			d, err := time.ParseDuration(value)
			if err != nil || d <= 0 {
				return f, fmt.Errorf("invalid --timeout %q", value)
			}
			f.timeout = d
		default:
			return f, fmt.Errorf("unknown flag: %s", name)
		}
	}
	return f, f.params.Validate()
}

func runRun(ctx context.Context, a *app, args []string) error {
	f, err := parseRunFlags(args)
	if err != nil {
		return err
	}

	opts := []splox.RunAndWaitOption{
		splox.WithRunIDHandler(func(id string) {
			fmt.Fprintf(a.out, "%s %s\n", styleLabel.Render("run"), id)
		}),
	}
	if f.timeout > 0 {
		opts = append(opts, splox.WithRunTimeout(f.timeout))
	}
	if f.stream {
		opts = append(opts, splox.WithEventHandler(func(ev splox.StreamEvent) { printEvent(a.out, ev) }))
	}

	tree, err := a.client.Workflows.RunAndWait(ctx, f.params, opts...)
	if err != nil {
		return err
	}
	printTree(a.out, tree)
	if a.cfg.WebhookURL != "" {
		if err := a.client.Events.Notify(ctx, a.cfg.WebhookURL, tree); err != nil {
			return fmt.Errorf("notify: %w", err)
		}
	}
	return nil
}

func runListen(ctx context.Context, a *app, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: splox listen <run|chat> <id>")
	}

	var stream *splox.Stream
	var err error
	switch args[0] {
	case "run":
		stream, err = a.client.Workflows.Listen(ctx, args[1])
	case "chat":
		stream, err = a.client.Chats.Listen(ctx, args[1])
	default:
		return fmt.Errorf("unknown listen target: %s", args[0])
	}
	if err != nil {
		return err
	}
	return drain(ctx, a.out, stream)
}

// drain prints events until the stream ends. Interrupts end it quietly.
func drain(ctx context.Context, w io.Writer, stream *splox.Stream) error {
	defer stream.Close()
	for ev, err := range stream.All(ctx) {
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		printEvent(w, ev)
	}
	return nil
}

func runTree(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: splox tree <run-id>...")
	}
	trees, err := fetchTrees(ctx, a.client, args)
	if err != nil {
		return err
	}
	for _, t := range trees {
		printTree(a.out, t)
	}
	return nil
}

// fetchTrees loads trees concurrently, keeping the order of ids. The first
// failure cancels the rest.
func fetchTrees(ctx context.Context, c *splox.Client, ids []string) ([]*splox.ExecutionTreeResponse, error) {
	trees := make([]*splox.ExecutionTreeResponse, len(ids))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentTrees)
	for i, id := range ids {
		g.Go(func() error {
			t, err := c.Workflows.GetExecutionTree(ctx, id)
			if err != nil {
				return fmt.Errorf("run %s: %w", id, err)
			}
			trees[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return trees, nil
}

func runBalance(ctx context.Context, a *app, _ []string) error {
	bal, err := a.client.Billing.GetBalance(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s %.2f %s\n", styleBold.Render("balance"), bal.BalanceUSD, bal.Currency)
	return nil
}

func runEncrypt(args []string, w io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: splox encrypt <value>")
	}
	passphrase := os.Getenv("SPLOX_CONFIG_KEY")
	if passphrase == "" {
		return errors.New("SPLOX_CONFIG_KEY is not set")
	}
	enc, err := config.EncryptValue(args[0], passphrase)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "enc:%s\n", enc)
	return nil
}

func printEvent(w io.Writer, ev splox.StreamEvent) {
	switch {
	case ev.IsKeepalive():
		fmt.Fprintln(w, styleDim.Render("keepalive"))
	case ev.Kind == splox.EventUnparsed:
		fmt.Fprintf(w, "%s %s\n", styleDim.Render("raw"), ev.Raw)
	case ev.WorkflowRequest != nil:
		fmt.Fprintf(w, "%s %s %s\n", styleLabel.Render("run"), ev.WorkflowRequest.ID, statusText(ev.WorkflowRequest.Status))
	case ev.NodeExecution != nil:
		fmt.Fprintf(w, "%s %s %s\n", styleLabel.Render("node"), ev.NodeExecution.NodeID, statusText(ev.NodeExecution.Status))
	case ev.Type() == splox.ChatEventTextDelta:
		fmt.Fprint(w, ev.Delta())
	case ev.Type() != "":
		fmt.Fprintf(w, "\n%s\n", styleDim.Render(ev.Type()))
	}
}

func printTree(w io.Writer, resp *splox.ExecutionTreeResponse) {
	t := &resp.ExecutionTree
	fmt.Fprintf(w, "%s %s %s\n", styleBold.Render("tree"), t.WorkflowRequestID, statusText(t.Status))
	t.Walk(func(depth int, n *splox.ExecutionNode) bool {
		label := n.NodeLabel
		if label == "" {
			label = n.NodeID
		}
		fmt.Fprintf(w, "%s- %s %s\n", strings.Repeat("  ", depth+1), label, statusText(n.Status))
		return true
	})
}

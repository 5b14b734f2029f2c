// Package splox is a Go client for the Splox workflow platform API.
//
// It covers the REST resources (workflows, chats, events, billing, context
// memory, MCP catalog and LLM completions) and the server-sent event
// streams that report run and chat progress.
//
// Example:
//
//	client, err := splox.New(splox.WithAPIKey(os.Getenv("SPLOX_API_KEY")))
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	tree, err := client.Workflows.RunAndWait(ctx, splox.RunParams{
//	    WorkflowVersionID: versionID,
//	    ChatID:            chatID,
//	    StartNodeID:       startNodeID,
//	    Query:             "Summarize today's tickets",
//	}, splox.WithRunTimeout(5*time.Minute))
//	if errors.Is(err, splox.ErrTimeout) {
//	    // the run is still going on the server
//	}
//
// Streams are read with Next, ranged over with All, or drained through
// Chan. Every stream must be closed; leaving an All loop early closes it.
//
//	stream, err := client.Chats.Listen(ctx, chatID)
//	if err != nil {
//	    return err
//	}
//	for ev, err := range stream.All(ctx) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Print(ev.Delta())
//	}
package splox

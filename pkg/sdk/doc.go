// Package semrouter embeds the keyword query router in a Go program,
// backed by Redis or Valkey.
//
// Each query is matched against a fixed, ordered list of routes. An
// index-backed tag lookup is tried first on Redis with search; otherwise
// keywords are scored by case-insensitive substring matching. Every decision
// bumps a per-route counter and is appended to a capped history list in the
// store, so several processes sharing one store see the same statistics.
//
//	client, _ := semrouter.New(ctx,
//	    semrouter.WithRedis("localhost:6379", ""),
//	    semrouter.WithRoutes(semrouter.DefaultRoutes()...),
//	)
//	defer client.Close()
//
//	res, err := client.Route(ctx, "How do I build a RAG pipeline?")
//	// res.Route == "GenAI Programming"
//
//	stats, _ := client.Statistics(ctx)
//	recent, _ := client.History(ctx, 10)
package semrouter

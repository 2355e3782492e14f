// Package ui provides an embeddable HTTP inspector for the session cache.
//
// The inspector lists cached chat sessions, shows per-session context usage
// and system prompt breakdowns, and renders message history as sanitized
// markdown. Mount it under any prefix:
//
//	http.Handle("/debug/sessions/", http.StripPrefix("/debug/sessions",
//		ui.Handler(manager, &ui.Config{BasePath: "/debug/sessions"})))
//
// By default the inspector also exposes reset, compact and evict actions;
// set Config.ReadOnly for monitoring-only deployments.
package ui

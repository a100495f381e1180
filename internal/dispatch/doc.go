// Package dispatch delivers platform events to the auto-channel
// orchestrator.
//
// Events are queued per guild. A guild has at most one event in a handler
// at any time and its events are handled in arrival order; different
// guilds are handled in parallel by a fixed pool of workers. Each event is
// assigned a random correlation id which is attached to the handler's
// context (see logging.WithCorrelationID) so that all log lines caused by
// one event can be found together.
//
//	m := dispatch.NewManager(dispatch.Config{Workers: 4}, orchestrator)
//	m.Start(ctx)
//	id, err := m.Submit(autochannel.MemberJoined{...})
//	...
//	m.Stop(shutdownCtx)
package dispatch

// Package events renders the audit-log reasons eclipse attaches to every
// channel mutation it performs.
//
// Each Reason has a default text/template. Templates may reference the
// fields of ReasonData and any sprig function:
//
//	engine, err := events.NewReasonEngine(map[string]string{
//		"CloneCreated": "Auto-channel opened for {{.Actor | upper}}",
//	})
//	reason := engine.Render(events.ReasonCloneCreated, events.ReasonData{Actor: "1234"})
//
// Overrides come from the autoChannel.auditReasons section of the
// configuration file.
package events

package events

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"eclipse/pkg/logging"
	pkgstrings "eclipse/pkg/strings"
)

// MaxReasonLength is the longest audit-log reason the platform accepts.
const MaxReasonLength = 512

var defaultTemplates = map[Reason]string{
	ReasonCloneCreated:      "New auto-channel created by {{.Actor}}",
	ReasonCloneEmpty:        "Every member has left the auto-channel",
	ReasonRootDeleted:       "Root channel was deleted",
	ReasonOwnerLeft:         "Channel owner {{.Actor}} has left their channel{{if .NewOwner}}, designating {{.NewOwner}} as the new owner{{end}}",
	ReasonRenamed:           "Auto-channel renamed to {{.Label | quote}}",
	ReasonPropertySynced:    "Synced property {{.Property | lower}} with root channel",
	ReasonPermissionsSynced: "Synced permissions with root channel",
}

// ReasonEngine renders audit-log reasons from text templates. Templates have
// access to the sprig function set.
type ReasonEngine struct {
	mu        sync.RWMutex
	templates map[Reason]*template.Template
}

// NewReasonEngine creates an engine with the default templates, then applies
// overrides. Unknown reasons and unparsable templates are reported together.
func NewReasonEngine(overrides map[string]string) (*ReasonEngine, error) {
	e := &ReasonEngine{templates: make(map[Reason]*template.Template, len(defaultTemplates))}
	for reason, text := range defaultTemplates {
		if err := e.SetTemplate(reason, text); err != nil {
			return nil, err
		}
	}

	var errs []error
	for name, text := range overrides {
		reason := Reason(name)
		if _, known := defaultTemplates[reason]; !known {
			errs = append(errs, fmt.Errorf("unknown audit reason %q", name))
			continue
		}
		if err := e.SetTemplate(reason, text); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return e, nil
}

// MustReasonEngine returns an engine with the default templates.
func MustReasonEngine() *ReasonEngine {
	e, err := NewReasonEngine(nil)
	if err != nil {
		panic(err)
	}
	return e
}

// SetTemplate parses text and registers it for reason.
func (e *ReasonEngine) SetTemplate(reason Reason, text string) error {
	tmpl, err := template.New(string(reason)).Funcs(sprig.TxtFuncMap()).Option("missingkey=zero").Parse(text)
	if err != nil {
		return fmt.Errorf("parse template for %s: %w", reason, err)
	}

	e.mu.Lock()
	e.templates[reason] = tmpl
	e.mu.Unlock()
	return nil
}

// Render produces the reason text. Rendering never fails: a template that
// errors at execution time falls back to the reason name.
func (e *ReasonEngine) Render(reason Reason, data ReasonData) string {
	e.mu.RLock()
	tmpl, ok := e.templates[reason]
	e.mu.RUnlock()

	if !ok {
		return string(reason)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		logging.Warn("Events", "Failed to render audit reason %s: %v", reason, err)
		return string(reason)
	}
	return pkgstrings.Abbreviate(buf.String(), "...", MaxReasonLength)
}

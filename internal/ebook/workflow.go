// Package ebook holds the interactive workflow: one handler per user action, each
// operating on the explicit session context it is given.
package ebook

import (
	"career-ebook-generator/internal/environment"
	"career-ebook-generator/internal/export"
	"career-ebook-generator/internal/generation"
	"career-ebook-generator/internal/instruction"
	"career-ebook-generator/internal/logging"
	"career-ebook-generator/internal/metrics"
	"career-ebook-generator/internal/models"
	"career-ebook-generator/internal/sanitize"
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

const EmptyCommunityMessage = "Please specify a target community."

var (
	ErrEmptyCommunity       = errors.New(EmptyCommunityMessage)
	ErrGenerationInProgress = errors.New("a generation is already running for this session")
	ErrNoDocument           = errors.New("no e-book has been generated yet")
	ErrNotConverted         = errors.New("the e-book has not been converted yet")
	ErrConversionDisabled   = errors.New("fixed-layout export is not enabled")
	ErrEmptyResponse        = errors.New("the provider returned no content")
)

// ProviderError marks a failed generation call. Its message is the provider's own.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string {
	return e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Workflow implements the user actions over a session. A handler either fully applies
// its change and persists it, or leaves the session exactly as it was.
type Workflow struct {
	*environment.Env

	Instructions *instruction.Builder
	Provider     generation.Provider
	Sanitizer    sanitize.Sanitizer
	Exporter     *export.Exporter

	inflight sync.Map
}

// OnGenerate builds the instruction for community, calls the provider once and stores
// the sanitized result as the session's document.
func (w *Workflow) OnGenerate(ctx context.Context, session *models.Session, community string) error {
	name := strings.TrimSpace(community)
	if len(name) == 0 {
		w.ObserveGeneration(0, metrics.OutcomeRejected)
		w.LogWarn(logging.GetLogTypeSession("generate", session.ID), "generation rejected: empty community name")
		return ErrEmptyCommunity
	}

	if _, running := w.inflight.LoadOrStore(session.ID, struct{}{}); running {
		w.ObserveGeneration(0, metrics.OutcomeRejected)
		return ErrGenerationInProgress
	}
	defer w.inflight.Delete(session.ID)

	started := time.Now()
	w.LogInfof(logging.GetLogTypeSession("generate", session.ID), "drafting content for '%s'", name)

	raw, err := w.Provider.Complete(ctx, w.Instructions.Build(name))
	if err != nil {
		w.ObserveGeneration(time.Since(started), metrics.OutcomeFailed)
		w.LogErrorf(logging.GetLogTypeSession("generate", session.ID), "provider call failed: %v", err)
		return &ProviderError{Err: err}
	}

	document := w.Sanitizer.Sanitize(raw)
	if len(document) == 0 {
		w.ObserveGeneration(time.Since(started), metrics.OutcomeFailed)
		w.LogErrorf(logging.GetLogTypeSession("generate", session.ID), "provider returned %d bytes, nothing left after sanitizing", len(raw))
		return &ProviderError{Err: ErrEmptyResponse}
	}

	next := *session
	next.SetGenerated(name, document)
	if err := w.SaveSession(ctx, &next); err != nil {
		w.ObserveGeneration(time.Since(started), metrics.OutcomeFailed)
		return err
	}
	*session = next

	w.ObserveGeneration(time.Since(started), metrics.OutcomeSuccess)
	w.LogInfof(logging.GetLogTypeSession("generate", session.ID), "generated %d bytes in %s", len(document), time.Since(started).Round(time.Millisecond))
	return nil
}

// OnEdit stores the user's edited markup verbatim.
func (w *Workflow) OnEdit(ctx context.Context, session *models.Session, document string) error {
	if !session.HasDocument() {
		return ErrNoDocument
	}

	next := *session
	next.ReplaceDocument(document)
	if err := w.SaveSession(ctx, &next); err != nil {
		return err
	}
	*session = next

	w.IncEdit()
	w.LogDebugf(logging.GetLogTypeSession("edit", session.ID), "document updated (%d bytes)", len(document))
	return nil
}

// OnExportHTML returns the current document as an HTML download.
func (w *Workflow) OnExportHTML(session *models.Session) (export.Artifact, error) {
	if !session.HasDocument() {
		w.IncExport(export.FormatHTML, metrics.OutcomeRejected)
		return export.Artifact{}, ErrNoDocument
	}
	w.IncExport(export.FormatHTML, metrics.OutcomeSuccess)
	return export.HTML(session.Document, session.CommunityName), nil
}

// OnConvert runs the fixed-layout converter over the current document and keeps the
// result in the session for OnExportDocument. A failure leaves the HTML export untouched.
func (w *Workflow) OnConvert(ctx context.Context, session *models.Session) (export.Artifact, error) {
	if !w.Exporter.Enabled() {
		return export.Artifact{}, ErrConversionDisabled
	}
	if !session.HasDocument() {
		w.IncExport(w.Exporter.Extension, metrics.OutcomeRejected)
		return export.Artifact{}, ErrNoDocument
	}

	artifact, err := w.Exporter.Document(ctx, session.Document, session.CommunityName)
	if err != nil {
		w.IncExport(w.Exporter.Extension, metrics.OutcomeFailed)
		w.LogErrorf(logging.GetLogTypeSession("convert", session.ID), "%v", err)
		return export.Artifact{}, err
	}

	next := *session
	next.Converted = artifact.Content
	if err := w.SaveSession(ctx, &next); err != nil {
		return export.Artifact{}, err
	}
	*session = next

	w.IncExport(w.Exporter.Extension, metrics.OutcomeSuccess)
	return artifact, nil
}

// OnExportDocument returns the artifact produced by the last OnConvert.
func (w *Workflow) OnExportDocument(session *models.Session) (export.Artifact, error) {
	if !w.Exporter.Enabled() {
		return export.Artifact{}, ErrConversionDisabled
	}
	if !session.HasConverted() {
		return export.Artifact{}, ErrNotConverted
	}
	return w.Exporter.DocumentArtifact(session.Converted, session.CommunityName), nil
}

// ConvertEnabled reports whether the fixed-layout variant is active.
func (w *Workflow) ConvertEnabled() bool {
	return w.Exporter.Enabled()
}

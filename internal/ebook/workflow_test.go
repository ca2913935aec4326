package ebook_test

import (
	"career-ebook-generator/internal/converter"
	"career-ebook-generator/internal/database"
	"career-ebook-generator/internal/ebook"
	"career-ebook-generator/internal/environment"
	"career-ebook-generator/internal/export"
	"career-ebook-generator/internal/generation"
	"career-ebook-generator/internal/instruction"
	"career-ebook-generator/internal/models"
	"career-ebook-generator/internal/sanitize"
	"context"
	"errors"
	"github.com/google/go-cmp/cmp"
	"strings"
	"testing"
)

const fencedGuide = "```html\n<h2>PREFACE</h2>\n<p>Welcome, Data Scientists.</p>\n```"

func newWorkflow(repo database.Repository, provider generation.Provider, conv converter.Converter) *ebook.Workflow {
	env := environment.Null()
	env.Repository = repo

	var exporter *export.Exporter
	if conv != nil {
		exporter = &export.Exporter{Converter: conv, Extension: "pdf", ContentType: "application/pdf"}
	}

	return &ebook.Workflow{
		Env:          env,
		Instructions: instruction.Default(),
		Provider:     provider,
		Sanitizer:    sanitize.Sanitizer{},
		Exporter:     exporter,
	}
}

func newSession(t *testing.T, repo database.Repository, id string) *models.Session {
	t.Helper()
	s := &models.Session{ID: id}
	if err := repo.CreateSession(context.Background(), s); err != nil {
		t.Fatalf("create session: %v", err)
	}
	return s
}

func TestOnGenerate_DataScientists(t *testing.T) {
	repo := database.NewMemoryRepository()
	provider := &generation.MockProvider{Response: fencedGuide}
	w := newWorkflow(repo, provider, nil)
	session := newSession(t, repo, "s1")

	if err := w.OnGenerate(context.Background(), session, "Data Scientists"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calls := provider.Calls()
	if len(calls) != 1 {
		t.Fatalf("got %d provider calls, want 1", len(calls))
	}
	if !strings.Contains(calls[0], "Data Scientists") {
		t.Errorf("instruction does not contain the community name")
	}

	artifact, err := w.OnExportHTML(session)
	if err != nil {
		t.Fatalf("unexpected export error: %v", err)
	}
	if artifact.Filename != "Data_Scientists_Career_Guide.html" {
		t.Errorf("got filename %q", artifact.Filename)
	}
	if len(artifact.Content) == 0 || strings.Contains(string(artifact.Content), "```") {
		t.Errorf("unexpected artifact content %q", artifact.Content)
	}

	stored := models.Session{}
	if err := repo.FindSession(context.Background(), "s1", &stored); err != nil {
		t.Fatalf("find session: %v", err)
	}
	if stored.Document != session.Document || stored.CommunityName != "Data Scientists" {
		t.Errorf("session not persisted: %+v", stored)
	}
}

func TestOnGenerate_EmptyCommunity(t *testing.T) {
	for _, name := range []string{"", "   ", "\t\n"} {
		repo := database.NewMemoryRepository()
		provider := &generation.MockProvider{Response: fencedGuide}
		w := newWorkflow(repo, provider, nil)
		session := newSession(t, repo, "s1")

		err := w.OnGenerate(context.Background(), session, name)
		if !errors.Is(err, ebook.ErrEmptyCommunity) {
			t.Errorf("name %q: got error %v, want %v", name, err, ebook.ErrEmptyCommunity)
		}
		if n := len(provider.Calls()); n != 0 {
			t.Errorf("name %q: provider called %d times", name, n)
		}
	}
}

func TestOnGenerate_ProviderFailureKeepsState(t *testing.T) {
	repo := database.NewMemoryRepository()
	provider := &generation.MockProvider{Response: fencedGuide}
	w := newWorkflow(repo, provider, nil)
	session := newSession(t, repo, "s1")

	// first attempt on an empty session
	provider.Err = errors.New("dial tcp: connection refused")
	err := w.OnGenerate(context.Background(), session, "Nurses")
	var providerErr *ebook.ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("got error %v, want ProviderError", err)
	}
	if err.Error() != "dial tcp: connection refused" {
		t.Errorf("provider message not passed through: %q", err.Error())
	}
	if session.HasDocument() {
		t.Errorf("failed generation produced a document")
	}

	// a later failure keeps the earlier document
	provider.Err = nil
	if err := w.OnGenerate(context.Background(), session, "Nurses"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := *session

	provider.Err = errors.New("quota exceeded")
	if err := w.OnGenerate(context.Background(), session, "Pilots"); err == nil {
		t.Fatalf("expected an error")
	}
	if !cmp.Equal(before, *session) {
		t.Error(cmp.Diff(before, *session))
	}

	stored := models.Session{}
	_ = repo.FindSession(context.Background(), "s1", &stored)
	if stored.CommunityName != "Nurses" || stored.Document != before.Document {
		t.Errorf("stored session changed: %+v", stored)
	}
}

func TestOnGenerate_EmptyResponse(t *testing.T) {
	repo := database.NewMemoryRepository()
	w := newWorkflow(repo, &generation.MockProvider{Response: "```html\n```"}, nil)
	session := newSession(t, repo, "s1")

	err := w.OnGenerate(context.Background(), session, "Nurses")
	if !errors.Is(err, ebook.ErrEmptyResponse) {
		t.Errorf("got error %v, want %v", err, ebook.ErrEmptyResponse)
	}
	if session.HasDocument() {
		t.Errorf("empty response stored as document")
	}
}

type blockingProvider struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingProvider) Complete(ctx context.Context, _ string) (string, error) {
	close(b.entered)
	<-b.release
	return "<p>done</p>", nil
}

func TestOnGenerate_RejectsConcurrentRequest(t *testing.T) {
	repo := database.NewMemoryRepository()
	provider := &blockingProvider{entered: make(chan struct{}), release: make(chan struct{})}
	w := newWorkflow(repo, provider, nil)
	first := newSession(t, repo, "s1")
	second := *first

	done := make(chan error)
	go func() {
		done <- w.OnGenerate(context.Background(), first, "Nurses")
	}()
	<-provider.entered

	if err := w.OnGenerate(context.Background(), &second, "Nurses"); !errors.Is(err, ebook.ErrGenerationInProgress) {
		t.Errorf("got error %v, want %v", err, ebook.ErrGenerationInProgress)
	}

	close(provider.release)
	if err := <-done; err != nil {
		t.Errorf("first generation failed: %v", err)
	}
}

func TestOnEdit_ThenExport(t *testing.T) {
	repo := database.NewMemoryRepository()
	w := newWorkflow(repo, &generation.MockProvider{Response: fencedGuide}, nil)
	session := newSession(t, repo, "s1")

	if err := w.OnEdit(context.Background(), session, "<p>x</p>"); !errors.Is(err, ebook.ErrNoDocument) {
		t.Errorf("got error %v, want %v", err, ebook.ErrNoDocument)
	}

	if err := w.OnGenerate(context.Background(), session, "Data Scientists"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	edited := "<h2>PREFACE</h2><p>edited <b>unclosed"
	if err := w.OnEdit(context.Background(), session, edited); err != nil {
		t.Fatalf("unexpected edit error: %v", err)
	}

	artifact, err := w.OnExportHTML(session)
	if err != nil {
		t.Fatalf("unexpected export error: %v", err)
	}
	if string(artifact.Content) != edited {
		t.Errorf("got %q, want %q", artifact.Content, edited)
	}
}

func TestOnEdit_EmptyDocumentStaysExportable(t *testing.T) {
	repo := database.NewMemoryRepository()
	w := newWorkflow(repo, &generation.MockProvider{Response: fencedGuide}, nil)
	session := newSession(t, repo, "s1")

	if err := w.OnGenerate(context.Background(), session, "Nurses"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.OnEdit(context.Background(), session, ""); err != nil {
		t.Fatalf("unexpected edit error: %v", err)
	}

	artifact, err := w.OnExportHTML(session)
	if err != nil {
		t.Fatalf("unexpected export error: %v", err)
	}
	if len(artifact.Content) != 0 || artifact.Filename != "Nurses_Career_Guide.html" {
		t.Errorf("got %q with %q, want an empty Nurses_Career_Guide.html", artifact.Filename, artifact.Content)
	}

	// the stored session must stay editable after a reload
	stored := models.Session{}
	if err := repo.FindSession(context.Background(), "s1", &stored); err != nil {
		t.Fatalf("find session: %v", err)
	}
	if err := w.OnEdit(context.Background(), &stored, "<p>retyped</p>"); err != nil {
		t.Fatalf("edit after emptying failed: %v", err)
	}
	if stored.Document != "<p>retyped</p>" {
		t.Errorf("got document %q", stored.Document)
	}
}

func TestOnExportHTML_NoDocument(t *testing.T) {
	w := newWorkflow(database.NewMemoryRepository(), &generation.MockProvider{}, nil)
	if _, err := w.OnExportHTML(&models.Session{ID: "s1"}); !errors.Is(err, ebook.ErrNoDocument) {
		t.Errorf("got error %v, want %v", err, ebook.ErrNoDocument)
	}
}

func TestOnConvert(t *testing.T) {
	repo := database.NewMemoryRepository()
	conv := converter.Func(func(ctx context.Context, html []byte) ([]byte, error) {
		return append([]byte("%PDF "), html...), nil
	})
	w := newWorkflow(repo, &generation.MockProvider{Response: fencedGuide}, conv)
	session := newSession(t, repo, "s1")

	if _, err := w.OnExportDocument(session); !errors.Is(err, ebook.ErrNotConverted) {
		t.Errorf("got error %v, want %v", err, ebook.ErrNotConverted)
	}

	if err := w.OnGenerate(context.Background(), session, "Data Scientists"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	artifact, err := w.OnConvert(context.Background(), session)
	if err != nil {
		t.Fatalf("unexpected convert error: %v", err)
	}
	if artifact.Filename != "Data_Scientists_Career_Guide.pdf" {
		t.Errorf("got filename %q", artifact.Filename)
	}

	downloaded, err := w.OnExportDocument(session)
	if err != nil {
		t.Fatalf("unexpected export error: %v", err)
	}
	if !cmp.Equal(artifact, downloaded) {
		t.Error(cmp.Diff(artifact, downloaded))
	}

	// an edit invalidates the converted artifact
	if err := w.OnEdit(context.Background(), session, "<p>new</p>"); err != nil {
		t.Fatalf("unexpected edit error: %v", err)
	}
	if _, err := w.OnExportDocument(session); !errors.Is(err, ebook.ErrNotConverted) {
		t.Errorf("got error %v, want %v", err, ebook.ErrNotConverted)
	}
}

func TestOnConvert_FailureKeepsHTMLExport(t *testing.T) {
	repo := database.NewMemoryRepository()
	conv := converter.Func(func(ctx context.Context, html []byte) ([]byte, error) {
		return nil, converter.ErrConversion
	})
	w := newWorkflow(repo, &generation.MockProvider{Response: fencedGuide}, conv)
	session := newSession(t, repo, "s1")

	if err := w.OnGenerate(context.Background(), session, "Data Scientists"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := w.OnConvert(context.Background(), session); !errors.Is(err, converter.ErrConversion) {
		t.Errorf("got error %v, want %v", err, converter.ErrConversion)
	}

	artifact, err := w.OnExportHTML(session)
	if err != nil {
		t.Fatalf("html export failed after conversion error: %v", err)
	}
	if len(artifact.Content) == 0 {
		t.Errorf("empty html artifact")
	}
}

func TestOnConvert_Disabled(t *testing.T) {
	w := newWorkflow(database.NewMemoryRepository(), &generation.MockProvider{}, nil)
	session := &models.Session{ID: "s1", Document: "<p>x</p>"}

	if _, err := w.OnConvert(context.Background(), session); !errors.Is(err, ebook.ErrConversionDisabled) {
		t.Errorf("got error %v, want %v", err, ebook.ErrConversionDisabled)
	}
	if w.ConvertEnabled() {
		t.Errorf("conversion reported as enabled")
	}
}

package intake

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hyperjump/marketscan/internal/config"
	"github.com/hyperjump/marketscan/internal/models"
	"github.com/hyperjump/marketscan/internal/scanid"
	"github.com/hyperjump/marketscan/internal/workflow"
)

type submission struct {
	id  string
	req models.MarketScanRequest
}

type fakeSubmitter struct {
	mu    sync.Mutex
	calls []submission
	err   error
}

func (f *fakeSubmitter) SubmitScan(_ context.Context, id string, req models.MarketScanRequest) (*workflow.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, submission{id: id, req: req})
	if f.err != nil {
		return nil, f.err
	}
	return &workflow.Result{Scan: &models.MarketScan{ID: id}}, nil
}

func (f *fakeSubmitter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func intakeConfig(dirs ...string) config.IntakeConfig {
	return config.IntakeConfig{
		Directories:   dirs,
		Extensions:    []string{"txt", ".md", ".pages"},
		ClientName:    "Inbox",
		ClientEmail:   "inbox@hyperjump.tech",
		CompanyDomain: "hyperjump.tech",
	}
}

func TestProcessFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "posting.md")
	body := "# Retention Manager\nClient: Acme\nDomain: acme.com\nOwn lifecycle email and churn analysis.\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	sub := &fakeSubmitter{}
	in := New(intakeConfig(dir), sub, nil)
	if _, err := in.ProcessFile(context.Background(), path); err != nil {
		t.Fatal(err)
	}
	if len(sub.calls) != 1 {
		t.Fatalf("calls = %d", len(sub.calls))
	}
	call := sub.calls[0]
	if call.id != scanid.FromPath(path) {
		t.Errorf("id = %q, want path-derived id", call.id)
	}
	if call.req.JobTitle != "Retention Manager" {
		t.Errorf("title = %q", call.req.JobTitle)
	}
	if call.req.ClientName != "Acme" || call.req.CompanyDomain != "acme.com" {
		t.Errorf("client fields from document not used: %+v", call.req)
	}
	if call.req.ClientEmail != "inbox@hyperjump.tech" {
		t.Errorf("default email not applied: %q", call.req.ClientEmail)
	}
}

func TestProcessFile_Unsupported(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "posting.pages")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	sub := &fakeSubmitter{}
	if _, err := New(intakeConfig(dir), sub, nil).ProcessFile(context.Background(), path); err == nil {
		t.Fatal("expected error for unsupported file")
	}
	if sub.count() != 0 {
		t.Error("unsupported file was submitted")
	}
}

func TestProcessFile_SubmitError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "posting.txt")
	if err := os.WriteFile(path, []byte("Data Analyst\nSQL"), 0644); err != nil {
		t.Fatal(err)
	}
	sub := &fakeSubmitter{err: errors.New("store down")}
	if _, err := New(intakeConfig(dir), sub, nil).ProcessFile(context.Background(), path); err == nil {
		t.Fatal("expected submit error")
	}
}

func TestExtensions(t *testing.T) {
	in := New(intakeConfig(), &fakeSubmitter{}, nil)
	got := in.extensions()
	if len(got) != 2 || got[0] != ".txt" || got[1] != ".md" {
		t.Errorf("extensions = %v", got)
	}
}

func TestRun_NoDirectories(t *testing.T) {
	if err := New(intakeConfig(), &fakeSubmitter{}, nil).Run(context.Background()); err == nil {
		t.Fatal("expected error without directories")
	}
}

func TestRun_SubmitsExistingAndNewFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "existing.txt"), []byte("Data Analyst\nSQL"), 0644); err != nil {
		t.Fatal(err)
	}

	sub := &fakeSubmitter{}
	in := New(intakeConfig(dir), sub, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- in.Run(ctx, WithDebounce(50*time.Millisecond)) }()

	waitFor(t, func() bool { return sub.count() >= 1 })
	if err := os.WriteFile(filepath.Join(dir, "new.txt"), []byte("Community Manager\nDiscord"), 0644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return sub.count() >= 2 })

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run returned %v", err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

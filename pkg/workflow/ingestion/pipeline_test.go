package ingestion

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ai-coursebuilder-be/pkg/embedding"
	"ai-coursebuilder-be/pkg/extract"
	"ai-coursebuilder-be/pkg/workflow/state"
)

type fakeEmbedder struct {
	fail bool
}

func (f fakeEmbedder) Generate(text string, _ string) (*embedding.EmbeddingResponse, error) {
	if f.fail {
		return nil, errors.New("quota exceeded")
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.1, 0.2}},
	}, nil
}

type fakeIndexer struct {
	indexed int
}

func (f *fakeIndexer) Index(_ context.Context, _ string, chunk state.ContentChunk, _ []float32) (string, error) {
	f.indexed++
	return "vec-" + chunk.ID, nil
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newPipeline(embedder embedding.EmbeddingProvider, indexer VectorIndexer) *Pipeline {
	registry := extract.NewRegistry()
	registry.Register(extract.TypeText, extract.NewTextExtractor())
	registry.Register(extract.TypeMarkdown, extract.NewTextExtractor())
	return NewPipeline(registry, embedder, indexer, nil, nil)
}

func TestInvokeProcessesPendingFiles(t *testing.T) {
	dir := t.TempDir()
	content := strings.Repeat("Goroutines are cheap. ", 30)

	st := state.NewConstructorState("sess-1", "creator-1")
	st.CourseID = "course-1"
	st.Files = []state.UploadedFile{
		{ID: "f1", Filename: "a.txt", Path: writeFile(t, dir, "a.txt", content), Status: state.FilePending},
		{ID: "f2", Filename: "b.md", Path: writeFile(t, dir, "b.md", content), Status: state.FilePending},
		{ID: "f3", Filename: "done.txt", Status: state.FileCompleted},
	}

	indexer := &fakeIndexer{}
	p := newPipeline(fakeEmbedder{}, indexer)

	update, err := p.Invoke(context.Background(), st)
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	if err := st.Apply(update); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	for _, id := range []string{"f1", "f2"} {
		f, _ := st.FileByID(id)
		if f.Status != state.FileCompleted {
			t.Errorf("file %s status = %s, want completed", id, f.Status)
		}
	}
	if len(st.Chunks) == 0 {
		t.Fatal("no chunks created")
	}
	perFile := map[string]int{}
	for _, c := range st.Chunks {
		perFile[c.SourceFile]++
		if c.VectorID == "" {
			t.Errorf("chunk %s has no vector id", c.ID)
		}
	}
	if perFile["f1"] == 0 || perFile["f2"] == 0 {
		t.Errorf("chunks per file = %v, want >=1 each", perFile)
	}
	if indexer.indexed != len(st.Chunks) {
		t.Errorf("indexed = %d, chunks = %d", indexer.indexed, len(st.Chunks))
	}
	if st.Progress != 0.5 {
		t.Errorf("progress = %v, want 0.5", st.Progress)
	}
}

func TestInvokeSkipsCompletedFiles(t *testing.T) {
	st := state.NewConstructorState("sess-1", "creator-1")
	st.Files = []state.UploadedFile{{ID: "f1", Filename: "done.txt", Status: state.FileCompleted}}

	p := newPipeline(fakeEmbedder{}, &fakeIndexer{})
	update, err := p.Invoke(context.Background(), st)
	if err != nil {
		t.Fatal(err)
	}
	if len(update.Files) != 0 {
		t.Errorf("completed file touched: %v", update.Files)
	}
	if update.SubResults["ingestion"]["report"] != "No new files to process." {
		t.Errorf("report = %v", update.SubResults["ingestion"]["report"])
	}
}

func TestInvokePerFileFaultIsolation(t *testing.T) {
	dir := t.TempDir()
	content := strings.Repeat("Channels connect goroutines. ", 30)

	st := state.NewConstructorState("sess-1", "creator-1")
	st.Files = []state.UploadedFile{
		{ID: "bad", Filename: "missing.txt", Path: filepath.Join(dir, "missing.txt"), Status: state.FilePending},
		{ID: "good", Filename: "ok.txt", Path: writeFile(t, dir, "ok.txt", content), Status: state.FilePending},
	}

	p := newPipeline(fakeEmbedder{}, &fakeIndexer{})
	update, err := p.Invoke(context.Background(), st)
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if err := st.Apply(update); err != nil {
		t.Fatal(err)
	}

	bad, _ := st.FileByID("bad")
	if bad.Status != state.FileError || bad.Error == "" {
		t.Errorf("bad file = %+v, want error status with message", bad)
	}
	good, _ := st.FileByID("good")
	if good.Status != state.FileCompleted {
		t.Errorf("good file status = %s, want completed", good.Status)
	}
	if len(st.Errors) == 0 {
		t.Error("failure not recorded in error list")
	}
	if len(st.Chunks) == 0 {
		t.Error("good file should still produce chunks")
	}
}

func TestInvokeEmbeddingFailureStillAdvances(t *testing.T) {
	dir := t.TempDir()
	content := strings.Repeat("Select multiplexes channels. ", 30)

	st := state.NewConstructorState("sess-1", "creator-1")
	st.Files = []state.UploadedFile{
		{ID: "f1", Filename: "a.txt", Path: writeFile(t, dir, "a.txt", content), Status: state.FilePending},
	}

	p := newPipeline(fakeEmbedder{fail: true}, &fakeIndexer{})
	update, err := p.Invoke(context.Background(), st)
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if update.Progress != 0.5 {
		t.Errorf("progress = %v, want 0.5 even when embedding fails", update.Progress)
	}
	if len(update.Errors) == 0 {
		t.Error("embedding failure not recorded")
	}
	for _, c := range update.Chunks {
		if c.VectorID != "" {
			t.Errorf("chunk %s unexpectedly indexed", c.ID)
		}
	}
}

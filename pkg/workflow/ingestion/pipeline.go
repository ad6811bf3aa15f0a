// Package ingestion runs the linear pipeline that turns uploaded files
// into embedded content chunks: detect_types → extract → chunk → store
// → report. Extraction is fault-isolated per file.
package ingestion

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ai-coursebuilder-be/pkg/embedding"
	"ai-coursebuilder-be/pkg/extract"
	"ai-coursebuilder-be/pkg/utils"
	"ai-coursebuilder-be/pkg/workflow"
	"ai-coursebuilder-be/pkg/workflow/events"
	"ai-coursebuilder-be/pkg/workflow/state"

	"github.com/google/uuid"
)

// Chunk size bounds in characters.
const (
	MinChunkSize = 200
	MaxChunkSize = 1500
)

// VectorIndexer persists one embedded chunk in the similarity store,
// namespaced under the construction session, and returns the vector
// id. Finalization re-keys the session's vectors to the course.
type VectorIndexer interface {
	Index(ctx context.Context, sessionID string, chunk state.ContentChunk, vector []float32) (string, error)
}

// Pipeline implements the ingestion sub-workflow.
type Pipeline struct {
	extractors *extract.Registry
	embedder   embedding.EmbeddingProvider
	indexer    VectorIndexer
	bus        *events.Bus
	logger     *log.Logger
}

var _ workflow.Subworkflow = &Pipeline{}

func NewPipeline(extractors *extract.Registry, embedder embedding.EmbeddingProvider, indexer VectorIndexer, bus *events.Bus, logger *log.Logger) *Pipeline {
	return &Pipeline{
		extractors: extractors,
		embedder:   embedder,
		indexer:    indexer,
		bus:        bus,
		logger:     logger,
	}
}

func (p *Pipeline) Name() string { return "ingestion" }

type extracted struct {
	file state.UploadedFile
	text string
}

func (p *Pipeline) Invoke(ctx context.Context, st *state.ConstructorState) (*state.ConstructorUpdate, error) {
	update := &state.ConstructorUpdate{
		SubResults: map[string]map[string]any{"ingestion": {}},
		Progress:   0.5,
	}

	pending := p.detectTypes(st, update)
	p.emit(st.SessionID, "detect_types", 0.1)
	if len(pending) == 0 {
		update.SubResults["ingestion"]["report"] = "No new files to process."
		return update, nil
	}

	texts, failed := p.extract(ctx, pending, update)
	p.emit(st.SessionID, "extract", 0.4)

	chunks := p.chunk(texts, update)
	p.emit(st.SessionID, "chunk", 0.6)

	indexed := p.store(ctx, st, chunks, update)
	p.emit(st.SessionID, "store", 0.85)

	p.report(update, len(texts), failed, len(chunks), indexed)
	p.emit(st.SessionID, "report", 1)

	update.Chunks = append(append([]state.ContentChunk{}, st.Chunks...), chunks...)
	return update, nil
}

// detectTypes marks pending files processing and fills in their
// detected type. Files already completed are never reprocessed.
func (p *Pipeline) detectTypes(st *state.ConstructorState, update *state.ConstructorUpdate) []state.UploadedFile {
	var pending []state.UploadedFile
	for _, f := range st.Files {
		if f.Status != state.FilePending {
			continue
		}
		if f.Type == "" {
			f.Type = extract.DetectType(f.Filename)
		}
		f.Status = state.FileProcessing
		pending = append(pending, f)
	}
	update.Files = append(update.Files, pending...)
	p.logf("[DETECT] %d pending files", len(pending))
	return pending
}

// extract runs the per-file extractors. One file's failure marks only
// that file and never stops the rest.
func (p *Pipeline) extract(ctx context.Context, pending []state.UploadedFile, update *state.ConstructorUpdate) ([]extracted, int) {
	var texts []extracted
	failed := 0

	for _, f := range pending {
		result, err := p.extractOne(ctx, f)
		if err != nil {
			failed++
			f.Status = state.FileError
			f.Error = err.Error()
			update.Files = append(update.Files, f)
			update.Errors = append(update.Errors,
				fmt.Sprintf("ingestion: %s: %s", f.Filename, err))
			p.logf("[EXTRACT] %s failed: %v", f.Filename, err)
			continue
		}
		f.Status = state.FileCompleted
		update.Files = append(update.Files, f)
		texts = append(texts, extracted{file: f, text: result.Text})
		p.logf("[EXTRACT] %s: %d chars, %d pages", f.Filename, len(result.Text), result.Pages)
	}
	return texts, failed
}

func (p *Pipeline) extractOne(ctx context.Context, f state.UploadedFile) (*extract.Result, error) {
	ex, err := p.extractors.For(f.Type)
	if err != nil {
		return nil, err
	}
	return ex.Extract(ctx, f.Path)
}

// chunk splits extracted text with the semantic splitter and tags each
// chunk with its source file.
func (p *Pipeline) chunk(texts []extracted, update *state.ConstructorUpdate) []state.ContentChunk {
	var chunks []state.ContentChunk
	for _, t := range texts {
		pieces := utils.SplitSemantic(t.text, MinChunkSize, MaxChunkSize)
		if len(pieces) == 0 {
			update.Warnings = append(update.Warnings,
				fmt.Sprintf("ingestion: %s produced no chunks", t.file.Filename))
			continue
		}
		for i, piece := range pieces {
			chunks = append(chunks, state.ContentChunk{
				ID:         uuid.NewString(),
				Text:       piece,
				SourceFile: t.file.ID,
				Index:      i,
			})
		}
	}
	p.logf("[CHUNK] %d chunks from %d files", len(chunks), len(texts))
	return chunks
}

// store embeds every chunk and writes it to the vector store. An
// embedding failure leaves chunks un-indexed and records one error;
// progress still advances.
func (p *Pipeline) store(ctx context.Context, st *state.ConstructorState, chunks []state.ContentChunk, update *state.ConstructorUpdate) int {
	if p.embedder == nil || p.indexer == nil {
		return 0
	}
	indexed := 0
	var firstErr error
	for i := range chunks {
		resp, err := p.embedder.Generate(chunks[i].Text, "RETRIEVAL_DOCUMENT")
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		vectorID, err := p.indexer.Index(ctx, st.SessionID, chunks[i], resp.Embedding.Values)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		chunks[i].VectorID = vectorID
		indexed++
	}
	if firstErr != nil {
		update.Errors = append(update.Errors,
			fmt.Sprintf("ingestion: embedding/indexing incomplete (%d of %d chunks stored): %s",
				indexed, len(chunks), firstErr))
	}
	p.logf("[STORE] indexed %d of %d chunks", indexed, len(chunks))
	return indexed
}

func (p *Pipeline) report(update *state.ConstructorUpdate, processed, failed, chunks, indexed int) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Processed %d file(s)", processed)
	if failed > 0 {
		fmt.Fprintf(&sb, " (%d failed)", failed)
	}
	fmt.Fprintf(&sb, " into %d content chunk(s)", chunks)
	if indexed < chunks {
		fmt.Fprintf(&sb, ", %d indexed for search", indexed)
	}
	sb.WriteString(".")

	update.SubResults["ingestion"] = map[string]any{
		"files_processed": processed,
		"files_failed":    failed,
		"chunks_created":  chunks,
		"chunks_indexed":  indexed,
		"report":          sb.String(),
	}
}

func (p *Pipeline) emit(sessionID, step string, fraction float64) {
	if p.bus == nil {
		return
	}
	_ = p.bus.Publish(events.StepEvent{
		SessionID: sessionID,
		Workflow:  p.Name(),
		Step:      step,
		Progress:  fraction,
	})
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.logger != nil {
		p.logger.Printf(format, args...)
	}
}

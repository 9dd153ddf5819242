package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"vizbot/app"
	"vizbot/app/config"
)

// BatchStage marks where a job is in its lifecycle.
type BatchStage string

const (
	StageQueued    BatchStage = "queued"
	StageRendering BatchStage = "rendering"
	StageDone      BatchStage = "done"
	StageSkipped   BatchStage = "skipped"
	StageError     BatchStage = "error"
)

// BatchEvent is one progress update emitted while a batch runs.
type BatchEvent struct {
	Index   int
	Total   int
	Request app.RenderRequest
	Stage   BatchStage
	Result  *app.RenderResult
	Err     error
}

// BatchScheduler runs a set of render jobs with bounded concurrency.
// Rendering saturates the machine, so the default is one job at a time
// with a short pause between starts.
type BatchScheduler struct {
	processor *VideoProcessor
	// Events receives progress updates when non-nil. The scheduler never
	// blocks on it; slow consumers miss events.
	Events chan<- BatchEvent
}

func NewBatchScheduler(processor *VideoProcessor) *BatchScheduler {
	return &BatchScheduler{processor: processor}
}

// LoadRequests reads all *.json render request files from dir.
func LoadRequests(dir string) ([]app.RenderRequest, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	var reqs []app.RenderRequest
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f, err)
		}
		var req app.RenderRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", f, err)
		}
		if req.OutputPath == "" {
			base := filepath.Base(f)
			req.OutputPath = filepath.Join(config.OutputDir,
				base[:len(base)-len(filepath.Ext(base))]+".mp4")
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// Run processes the jobs and returns per-job results in input order. A
// failed job never stops the batch.
func (s *BatchScheduler) Run(ctx context.Context, reqs []app.RenderRequest) []app.RenderResult {
	total := len(reqs)
	results := make([]app.RenderResult, total)
	if total == 0 {
		log.Println("📭 No render jobs found")
		return results
	}
	log.Printf("🗂️ Batch of %d render jobs, concurrency %d", total, config.GetMaxConcurrentRenders())

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, config.GetMaxConcurrentRenders())

	for i, req := range reqs {
		wg.Add(1)
		s.emit(BatchEvent{Index: i, Total: total, Request: req, Stage: StageQueued})

		go func(idx int, req app.RenderRequest) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			if ctx.Err() != nil {
				results[idx] = app.RenderResult{Status: app.StatusFailed, ErrorKind: app.ErrRenderFailed}
				s.emit(BatchEvent{Index: idx, Total: total, Request: req, Stage: StageError, Err: ctx.Err()})
				return
			}

			s.emit(BatchEvent{Index: idx, Total: total, Request: req, Stage: StageRendering})
			log.Printf("[%d/%d] Rendering %s", idx+1, total, filepath.Base(req.OutputPath))

			result, err := s.processor.ProcessRequest(ctx, req)
			results[idx] = *result
			if err != nil {
				log.Printf("[%d/%d] ❌ %s: %v", idx+1, total, filepath.Base(req.OutputPath), err)
				s.emit(BatchEvent{Index: idx, Total: total, Request: req, Stage: StageError, Result: result, Err: err})
			} else {
				s.emit(BatchEvent{Index: idx, Total: total, Request: req, Stage: StageDone, Result: result})
			}

			time.Sleep(config.RenderBatchDelay)
		}(i, req)
	}

	wg.Wait()

	ok := 0
	for _, r := range results {
		if r.Status == app.StatusSuccess {
			ok++
		}
	}
	log.Printf("🏁 Batch complete: %d/%d succeeded", ok, total)
	return results
}

func (s *BatchScheduler) emit(ev BatchEvent) {
	if s.Events == nil {
		return
	}
	select {
	case s.Events <- ev:
	default:
	}
}

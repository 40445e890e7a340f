package batch

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"

	"github.com/dtnitsch/llm-chat-extractor/pkg/caching"
	"github.com/dtnitsch/llm-chat-extractor/pkg/extractor"
	"github.com/dtnitsch/llm-chat-extractor/pkg/mapreduce"
	"github.com/dtnitsch/llm-chat-extractor/pkg/storage"
)

// pool is what every batch worker shares. cache may be nil.
type pool struct {
	logger    *slog.Logger
	extractor *extractor.Extractor
	storage   *storage.Storage
	cache     *caching.Cache
	outDir    string
}

// run extracts every message over workerCount goroutines and writes one result
// file per message into outDir. Results come back in transcript order along
// with the drop reasons of the whole batch.
func (p *pool) run(messages []Message, workerCount int) ([]Result, map[string]int) {
	logger := p.logger
	logger.Info("Starting batch extraction", "message_count", len(messages), "workers", workerCount)
	var wg sync.WaitGroup
	jobs := make(chan Job, len(messages))
	results := make(chan Result, len(messages))

	for w := 1; w <= workerCount; w++ {
		wg.Add(1)
		go p.worker(w, &wg, jobs, results)
	}

	for i, m := range messages {
		jobs <- Job{Index: i, Message: m}
	}
	close(jobs)

	wg.Wait()
	close(results)
	logger.Info("All batch workers finished")

	allResults := make([]Result, 0, len(messages))
	for result := range results {
		allResults = append(allResults, result)
	}
	sort.Slice(allResults, func(i, j int) bool { return allResults[i].Index < allResults[j].Index })

	intermediateResults := make([]map[string]int, 0, len(allResults))
	for _, result := range allResults {
		intermediateResults = append(intermediateResults, mapreduce.Map(result.Diagnostics))
	}

	return allResults, mapreduce.Reduce(intermediateResults)
}

func (p *pool) worker(id int, wg *sync.WaitGroup, jobs <-chan Job, results chan<- Result) {
	defer wg.Done()
	for job := range jobs {
		p.logger.Debug("Worker started job", "worker_id", id, "message_id", job.Message.ID)
		results <- p.process(id, job)
	}
}

// analyze returns the cached result for text when there is one. Cached
// results are not handed to the extractor's recorders again.
func (p *pool) analyze(text string) (extractor.Result, bool) {
	if p.cache != nil {
		if res, ok := p.cache.Get(text); ok {
			return *res, true
		}
	}

	res := p.extractor.Analyze(text)
	if p.cache != nil {
		if err := p.cache.Put(text, res); err != nil {
			p.logger.Warn("Failed to cache result", "error", err)
		}
	}
	return res, false
}

func (p *pool) process(id int, job Job) Result {
	logger := p.logger
	result := Result{Index: job.Index}
	result.ID = job.Message.ID

	res, cached := p.analyze(job.Message.Text)
	result.Cached = cached
	result.Content = res.Content
	result.Signals = res.Detection.Signals
	result.Diagnostics = res.Diagnostics

	data, err := json.MarshalIndent(res.Content, "", "  ")
	if err != nil {
		logger.Error("Error marshalling result", "worker_id", id, "message_id", job.Message.ID, "error", err)
		result.Error = fmt.Errorf("failed to marshal result: %w", err)
		return result
	}

	path := filepath.Join(p.outDir, resultFileName(job.Index, job.Message.ID))
	if err := p.storage.SaveFile(path, data); err != nil {
		logger.Error("Error saving result", "worker_id", id, "message_id", job.Message.ID, "error", err)
		result.Error = err
		return result
	}

	result.FilePath = path
	result.FileSizeBytes = int64(len(data))
	logger.Debug("Worker finished job", "worker_id", id, "message_id", job.Message.ID, "kind", res.Content.Kind, "cached", cached)
	return result
}

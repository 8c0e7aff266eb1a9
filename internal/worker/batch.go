package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/draftsmith/internal/logging"
	"github.com/ppiankov/draftsmith/internal/model"
)

// Composer drafts and checks an outline for a single topic
type Composer interface {
	GenerateOutline(ctx context.Context, title, description string) (string, error)
	ValidateOutline(ctx context.Context, title, description, text string) model.ValidationResult
}

// Topic is one line of a batch file
type Topic struct {
	Title       string
	Description string
}

// OutlineJob drafts an outline for a topic and optionally validates it
type OutlineJob struct {
	Topic    Topic
	Composer Composer
	Validate bool
}

// Execute executes the outline job
func (j *OutlineJob) Execute(ctx context.Context) Result {
	outline, err := j.Composer.GenerateOutline(ctx, j.Topic.Title, j.Topic.Description)
	if err != nil {
		return &OutlineResult{Topic: j.Topic, Error: err}
	}

	res := &OutlineResult{Topic: j.Topic, Outline: outline}
	if j.Validate {
		v := j.Composer.ValidateOutline(ctx, j.Topic.Title, j.Topic.Description, outline)
		res.Validation = &v
	}
	return res
}

// OutlineResult represents the result of an outline job
type OutlineResult struct {
	Topic      Topic
	Outline    string
	Validation *model.ValidationResult
	Error      error
}

// GetError returns the error from the outline result
func (r *OutlineResult) GetError() error {
	return r.Error
}

// BatchProcessor drafts outlines for many topics concurrently
type BatchProcessor struct {
	composer    Composer
	concurrency int
	validate    bool
	logger      *zap.Logger
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(composer Composer, concurrency int, validate bool, logger *zap.Logger) *BatchProcessor {
	return &BatchProcessor{
		composer:    composer,
		concurrency: concurrency,
		validate:    validate,
		logger:      logging.Component(logger, "batch"),
	}
}

// ProcessTopics runs every topic and returns results in input order
func (b *BatchProcessor) ProcessTopics(ctx context.Context, topics []Topic) []*OutlineResult {
	if len(topics) == 0 {
		return []*OutlineResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, t := range topics {
		if !pool.Submit(&OutlineJob{Topic: t, Composer: b.composer, Validate: b.validate}) {
			b.logger.Warn("batch cancelled before all topics were queued", zap.String("title", t.Title))
			break
		}
	}

	results := pool.Wait()

	out := make([]*OutlineResult, len(results))
	failed := 0
	for i, r := range results {
		out[i] = r.(*OutlineResult)
		if out[i].Error != nil {
			failed++
		}
	}

	b.logger.Info("batch finished",
		zap.Int("topics", len(topics)),
		zap.Int("completed", len(out)),
		zap.Int("failed", failed))

	return out
}

// ProcessFile reads topics from a file and processes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*OutlineResult, error) {
	topics, err := ReadTopicsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read topics: %w", err)
	}

	return b.ProcessTopics(ctx, topics), nil
}

// ReadTopicsFromFile reads one topic per line in the form
// "title | description". The description is optional.
func ReadTopicsFromFile(filePath string) ([]Topic, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var topics []Topic
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		title, desc, _ := strings.Cut(line, "|")
		t := Topic{Title: strings.TrimSpace(title), Description: strings.TrimSpace(desc)}
		if t.Title == "" {
			continue
		}

		key := strings.ToLower(strings.Join(strings.Fields(t.Title), " "))
		if !seen[key] {
			seen[key] = true
			topics = append(topics, t)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return topics, nil
}

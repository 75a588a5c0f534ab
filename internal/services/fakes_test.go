package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// fakeGenerator returns canned responses and records every request.
type fakeGenerator struct {
	mu       sync.Mutex
	text     string
	err      error
	delay    time.Duration
	requests []GenerationRequest
}

func (f *fakeGenerator) GenerateText(ctx context.Context, req GenerationRequest) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type modelCall struct {
	model   string
	outcome string
}

type stageCall struct {
	task  string
	stage string
}

// recordingRecorder implements ModelCallRecorder and PipelineRecorder.
type recordingRecorder struct {
	mu          sync.Mutex
	modelCalls  []modelCall
	stages      []stageCall
	evaluations []string
}

func (r *recordingRecorder) ObserveModelCall(model, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modelCalls = append(r.modelCalls, modelCall{model: model, outcome: outcome})
}

func (r *recordingRecorder) ObserveStage(task, stage string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, stageCall{task: task, stage: stage})
}

func (r *recordingRecorder) ObserveEvaluation(task, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evaluations = append(r.evaluations, task+":"+outcome)
}

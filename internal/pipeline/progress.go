package pipeline

import "fmt"

// Stage identifies a pipeline phase.
type Stage int

const (
	StageGraph Stage = iota + 1
	StageLeveling
	StageClustering
	StageArtifacts
)

func (s Stage) String() string {
	switch s {
	case StageGraph:
		return "dependency graph"
	case StageLeveling:
		return "processing order"
	case StageClustering:
		return "module clustering"
	case StageArtifacts:
		return "artifacts"
	default:
		return "unknown"
	}
}

// ProgressStatus is the lifecycle state of a stage.
type ProgressStatus string

const (
	ProgressWorking  ProgressStatus = "working"
	ProgressComplete ProgressStatus = "complete"
	ProgressFailed   ProgressStatus = "failed"
)

// ProgressEvent is one stage transition, plus per-file ticks during the
// graph stage.
type ProgressEvent struct {
	Stage   Stage
	Status  ProgressStatus
	Message string
}

// ProgressReporter emits progress events through a buffered channel.
type ProgressReporter struct {
	ch chan ProgressEvent
}

// NewProgressReporter creates a ProgressReporter with a buffered channel
// of size 64.
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{
		ch: make(chan ProgressEvent, 64),
	}
}

// Emit sends a progress event in a non-blocking fashion.
// If the channel is full, the event is silently dropped.
func (pr *ProgressReporter) Emit(event ProgressEvent) {
	if pr == nil {
		return
	}
	select {
	case pr.ch <- event:
	default:
		// Drop the event if the channel is full.
	}
}

// Subscribe returns a read-only channel for consuming progress events.
func (pr *ProgressReporter) Subscribe() <-chan ProgressEvent {
	return pr.ch
}

// Close closes the progress event channel.
func (pr *ProgressReporter) Close() {
	if pr != nil {
		close(pr.ch)
	}
}

// FormatProgress formats a ProgressEvent as a human-readable status line.
func FormatProgress(event ProgressEvent) string {
	switch event.Status {
	case ProgressWorking:
		if event.Message != "" {
			return fmt.Sprintf("  ● %s: %s", event.Stage, event.Message)
		}
		return fmt.Sprintf("  ● %s...", event.Stage)
	case ProgressComplete:
		return fmt.Sprintf("  ✓ %s complete", event.Stage)
	case ProgressFailed:
		return fmt.Sprintf("  ✗ %s failed: %s", event.Stage, event.Message)
	default:
		return fmt.Sprintf("  ? %s (unknown status)", event.Stage)
	}
}

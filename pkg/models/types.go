package models

import "fmt"

// ==================== Stage Types ====================

// Stage identifies one ordered step of the automation pipeline.
type Stage string

const (
	StageInitialize      Stage = "initialize"
	StageNavigateToSite  Stage = "navigate-to-site"
	StageAuthenticate    Stage = "authenticate"
	StageNavigateToTopic Stage = "navigate-to-topic"
	StageExtractInfo     Stage = "extract-info"
	StageScreenshot      Stage = "capture-screenshot"
)

// FailureKind classifies what went wrong inside a stage.
type FailureKind string

const (
	KindInitialization FailureKind = "initialization"
	KindNavigation     FailureKind = "navigation"
	KindAuthentication FailureKind = "authentication"
	KindExtraction     FailureKind = "extraction"
	KindScreenshot     FailureKind = "screenshot"
)

// StageError wraps a failure with the stage it happened in.
type StageError struct {
	Stage Stage
	Kind  FailureKind
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s (%s): %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError wraps err for the given stage.
func NewStageError(stage Stage, kind FailureKind, err error) *StageError {
	return &StageError{Stage: stage, Kind: kind, Err: err}
}

// ==================== Extraction Types ====================

// Sentinel values substituted when extraction of a field fails.
// Missing data degrades to these instead of failing the run.
const (
	UnknownTitle    = "Unknown Title"
	UnknownAuthor   = "Unknown Author"
	UnknownCategory = "Unknown Category"
	NoContentFound  = "No content found"
)

// TopicInfo is the metadata snapshot extracted from a forum topic page.
// Tags are kept in document order.
type TopicInfo struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	URL      string   `json:"url"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

// ==================== Result Types ====================

// AutomationResult is the single terminal value of one run. Topic is set
// only on success, ErrorMessage only on failure. ScreenshotPath points at
// the success screenshot or the best-effort failure screenshot; on the
// failure path the file may not exist if the attempt itself failed.
type AutomationResult struct {
	RunID          string     `json:"run_id"`
	Success        bool       `json:"success"`
	Message        string     `json:"message"`
	Topic          *TopicInfo `json:"topic,omitempty"`
	ScreenshotPath string     `json:"screenshot_path,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	Duration       int64      `json:"duration_ms"`
}

// SuccessResult builds the success-shaped result.
func SuccessResult(runID string, topic *TopicInfo, screenshotPath string, durationMs int64) AutomationResult {
	return AutomationResult{
		RunID:          runID,
		Success:        true,
		Message:        fmt.Sprintf("Successfully extracted topic: %s", topic.Title),
		Topic:          topic,
		ScreenshotPath: screenshotPath,
		Duration:       durationMs,
	}
}

// FailureResult builds the failure-shaped result.
func FailureResult(runID string, err error, screenshotPath string, durationMs int64) AutomationResult {
	return AutomationResult{
		RunID:          runID,
		Success:        false,
		Message:        "Automation run failed",
		ScreenshotPath: screenshotPath,
		ErrorMessage:   err.Error(),
		Duration:       durationMs,
	}
}

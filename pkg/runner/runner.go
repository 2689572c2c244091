// Package runner executes the forum automation pipeline: one browser
// session, a fixed sequence of stages, one AutomationResult.
package runner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dev/bravebird/forum-automation-go/pkg/browser"
	"dev/bravebird/forum-automation-go/pkg/config"
	"dev/bravebird/forum-automation-go/pkg/models"
)

// postLoginURLPattern confirms the redirect after a successful login.
const postLoginURLPattern = `/(latest|categories|hot)`

// Element targets for a Discourse-style forum. Accessible attributes
// and attribute patterns, not positional selectors.
var (
	loginButton   = browser.Target{Tag: "button", Text: "Log In"}
	usernameField = browser.Target{Tag: "input", Name: "username"}
	passwordField = browser.Target{Tag: "input", Name: "password"}
	submitButton  = browser.Target{CSS: "#login-button, button[type='submit']"}

	titleTarget    = browser.Target{CSS: "h1 .fancy-title, h1"}
	authorTarget   = browser.Target{CSS: ".topic-meta-data .username, [itemprop='author']"}
	categoryTarget = browser.Target{CSS: ".badge-category__name, .badge-category"}
	tagTarget      = browser.Target{CSS: ".discourse-tag, [data-tag-name]"}
)

// Runner owns one session pipeline. Handles live inside the driver and
// are released exactly once per Run, whatever the exit path. Concurrent
// Run calls on the same instance are not supported: the session handles
// are not reentrant and the behavior is undefined.
type Runner struct {
	cfg    *config.Config
	driver browser.Driver
	log    *zap.SugaredLogger

	// pageReady flips once initialize succeeds, gating the best-effort
	// failure screenshot.
	pageReady bool
}

// New creates a runner over the given driver.
func New(cfg *config.Config, driver browser.Driver, log *zap.SugaredLogger) *Runner {
	return &Runner{cfg: cfg, driver: driver, log: log}
}

// Run executes the pipeline and returns the single terminal result.
// It never panics past its boundary and never returns a partial result.
func (r *Runner) Run(ctx context.Context) (result models.AutomationResult) {
	runID := uuid.New().String()
	startedAt := time.Now()
	log := r.log.With("run_id", runID)
	r.pageReady = false

	log.Infow("Starting automation run", "site", r.cfg.SiteURL, "headless", r.cfg.Settings.Headless)

	// Registered first so handle teardown is the last action before
	// control returns, on every exit path.
	defer r.cleanup(log)
	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("unexpected fault: %v", rec)
			log.Errorw("Automation run panicked", "error", err)
			r.captureFailureScreenshot(context.Background(), log)
			result = models.FailureResult(runID, err, r.cfg.Settings.FailureScreenshotPath, elapsedMs(startedAt))
		}
	}()

	topic, err := r.pipeline(ctx, log)
	if err != nil {
		// Fresh context: the failure may be the run deadline itself, and
		// the recovery screenshot should still get its chance.
		r.captureFailureScreenshot(context.Background(), log)
		log.Errorw("Automation run failed", "error", err)
		return models.FailureResult(runID, err, r.cfg.Settings.FailureScreenshotPath, elapsedMs(startedAt))
	}

	log.Infow("Automation run succeeded",
		"title", topic.Title,
		"author", topic.Author,
		"category", topic.Category,
		"tags", topic.Tags,
	)
	return models.SuccessResult(runID, topic, r.cfg.Settings.SuccessScreenshotPath, elapsedMs(startedAt))
}

// pipeline runs the ordered stages, stopping at the first failure.
func (r *Runner) pipeline(ctx context.Context, log *zap.SugaredLogger) (*models.TopicInfo, error) {
	if err := r.initialize(ctx, log); err != nil {
		return nil, err
	}
	if err := r.navigateToSite(ctx, log); err != nil {
		return nil, err
	}
	if err := r.authenticate(ctx, log); err != nil {
		return nil, err
	}
	if err := r.navigateToTopic(ctx, log); err != nil {
		return nil, err
	}
	topic, err := r.extractInfo(ctx, log)
	if err != nil {
		return nil, err
	}
	if err := r.captureScreenshot(ctx, log); err != nil {
		return nil, err
	}
	return topic, nil
}

func (r *Runner) initialize(ctx context.Context, log *zap.SugaredLogger) error {
	log.Infow("Stage started", "stage", models.StageInitialize)
	if err := r.driver.Start(ctx); err != nil {
		return models.NewStageError(models.StageInitialize, models.KindInitialization, err)
	}
	r.pageReady = true
	return nil
}

func (r *Runner) navigateToSite(ctx context.Context, log *zap.SugaredLogger) error {
	log.Infow("Stage started", "stage", models.StageNavigateToSite, "url", r.cfg.SiteURL)
	if err := r.driver.Navigate(ctx, r.cfg.SiteURL); err != nil {
		return models.NewStageError(models.StageNavigateToSite, models.KindNavigation, err)
	}
	if err := r.driver.WaitQuiescent(ctx); err != nil {
		return models.NewStageError(models.StageNavigateToSite, models.KindNavigation, err)
	}
	return nil
}

// authenticate opens the login affordance, submits the credentials and
// waits for the post-login redirect. Every failure here surfaces as an
// authentication failure: the driver cannot reliably distinguish wrong
// credentials from a changed UI.
func (r *Runner) authenticate(ctx context.Context, log *zap.SugaredLogger) error {
	log.Infow("Stage started", "stage", models.StageAuthenticate, "username", r.cfg.Credentials.Username)

	authErr := func(err error) error {
		return models.NewStageError(models.StageAuthenticate, models.KindAuthentication, err)
	}

	if err := r.driver.Click(ctx, loginButton); err != nil {
		return authErr(err)
	}
	if err := r.driver.Fill(ctx, usernameField, r.cfg.Credentials.Username); err != nil {
		return authErr(err)
	}
	if err := r.driver.Fill(ctx, passwordField, r.cfg.Credentials.Password.Value()); err != nil {
		return authErr(err)
	}
	if err := r.driver.Click(ctx, submitButton); err != nil {
		return authErr(err)
	}
	if err := r.driver.WaitURL(ctx, postLoginURLPattern, r.cfg.Settings.OperationTimeout); err != nil {
		return authErr(fmt.Errorf("post-login redirect not observed: %w", err))
	}
	return nil
}

// navigateToTopic opens the first entry matching the topic-link query.
func (r *Runner) navigateToTopic(ctx context.Context, log *zap.SugaredLogger) error {
	log.Infow("Stage started", "stage", models.StageNavigateToTopic, "selector", r.cfg.Settings.TopicLinkSelector)

	if err := r.driver.Click(ctx, browser.Target{CSS: r.cfg.Settings.TopicLinkSelector}); err != nil {
		return models.NewStageError(models.StageNavigateToTopic, models.KindNavigation, err)
	}
	if err := r.driver.WaitQuiescent(ctx); err != nil {
		return models.NewStageError(models.StageNavigateToTopic, models.KindNavigation, err)
	}
	return nil
}

// extractInfo reads topic metadata. Missing elements degrade to
// sentinel values; only hard driver failures abort the stage.
func (r *Runner) extractInfo(ctx context.Context, log *zap.SugaredLogger) (*models.TopicInfo, error) {
	log.Infow("Stage started", "stage", models.StageExtractInfo)

	extractErr := func(err error) error {
		return models.NewStageError(models.StageExtractInfo, models.KindExtraction, err)
	}

	topic := &models.TopicInfo{}

	var err error
	if topic.Title, err = r.textOrSentinel(ctx, titleTarget, models.UnknownTitle); err != nil {
		return nil, extractErr(err)
	}
	if topic.Author, err = r.textOrSentinel(ctx, authorTarget, models.UnknownAuthor); err != nil {
		return nil, extractErr(err)
	}
	if topic.Category, err = r.textOrSentinel(ctx, categoryTarget, models.UnknownCategory); err != nil {
		return nil, extractErr(err)
	}

	tags, err := r.driver.Texts(ctx, tagTarget)
	if err != nil {
		return nil, extractErr(err)
	}
	topic.Tags = make([]string, 0, len(tags))
	for _, tag := range tags {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			topic.Tags = append(topic.Tags, trimmed)
		}
	}

	if topic.URL, err = r.driver.CurrentURL(ctx); err != nil {
		return nil, extractErr(err)
	}

	return topic, nil
}

func (r *Runner) captureScreenshot(ctx context.Context, log *zap.SugaredLogger) error {
	log.Infow("Stage started", "stage", models.StageScreenshot, "path", r.cfg.Settings.SuccessScreenshotPath)
	if err := r.driver.Screenshot(ctx, r.cfg.Settings.SuccessScreenshotPath); err != nil {
		return models.NewStageError(models.StageScreenshot, models.KindScreenshot, err)
	}
	return nil
}

// textOrSentinel looks up a single text value, substituting the
// sentinel when the element is absent.
func (r *Runner) textOrSentinel(ctx context.Context, target browser.Target, sentinel string) (string, error) {
	text, found, err := r.driver.Text(ctx, target)
	if err != nil {
		return "", err
	}
	if !found || strings.TrimSpace(text) == "" {
		return sentinel, nil
	}
	return strings.TrimSpace(text), nil
}

// captureFailureScreenshot attempts the failure-path screenshot. A
// failure of the attempt itself is logged and swallowed so it never
// masks the original stage error.
func (r *Runner) captureFailureScreenshot(ctx context.Context, log *zap.SugaredLogger) {
	if !r.pageReady {
		return
	}
	if err := r.driver.Screenshot(ctx, r.cfg.Settings.FailureScreenshotPath); err != nil {
		log.Warnw("Failure screenshot attempt failed", "path", r.cfg.Settings.FailureScreenshotPath, "error", err)
	}
}

// cleanup releases the session handles; errors are logged, never
// surfaced, so teardown cannot override the run result.
func (r *Runner) cleanup(log *zap.SugaredLogger) {
	if err := r.driver.Close(); err != nil {
		log.Warnw("Session teardown reported errors", "error", err)
	}
}

func elapsedMs(startedAt time.Time) int64 {
	return time.Since(startedAt).Milliseconds()
}

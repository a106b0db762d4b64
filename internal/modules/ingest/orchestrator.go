package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/paperlab/core/internal/config"
	"github.com/paperlab/core/internal/modules/assets"
	"go.uber.org/zap"
)

// Status is the terminal outcome of an ingestion run.
type Status string

const (
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
	StatusTimeout Status = "timeout"
	StatusError   Status = "error"
)

// Result carries the outcome of one ingestion run. Markdown is only set on
// StatusDone and already has its image references rewritten.
type Result struct {
	Status   Status
	Markdown string
	Message  string
}

// Orchestrator drives a parse job through submit → poll → retrieve. The
// sleep function is injectable so tests can run the full poll budget
// without real waiting.
type Orchestrator struct {
	client      *Client
	assets      *assets.Service
	interval    time.Duration
	maxAttempts int
	sleep       func(time.Duration)
	logger      *zap.Logger
}

func NewOrchestrator(cfg config.MineruConfig, assetSvc *assets.Service, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		client:      NewClient(cfg),
		assets:      assetSvc,
		interval:    time.Duration(cfg.PollIntervalSec) * time.Second,
		maxAttempts: cfg.PollMaxAttempts,
		sleep:       time.Sleep,
		logger:      logger,
	}
}

// Run submits sourceURL for parsing under the given paper identity and
// drives the job to a terminal state. Embedded images are written to the
// asset store before the rewritten markdown is returned, so every rewritten
// reference already has a valid target. The attempt cap is a hard bound:
// a job still non-terminal after it reports StatusTimeout, never success.
func (o *Orchestrator) Run(ctx context.Context, identity, sourceURL string) *Result {
	taskID, err := o.client.Submit(ctx, sourceURL)
	if err != nil {
		o.logger.Warn("parse submit failed", zap.String("identity", identity), zap.Error(err))
		return &Result{Status: StatusError, Message: err.Error()}
	}
	o.logger.Info("parse job submitted",
		zap.String("identity", identity), zap.String("task_id", taskID))

	for attempt := 0; attempt < o.maxAttempts; attempt++ {
		o.sleep(o.interval)

		status, err := o.client.Status(ctx, taskID)
		if err != nil {
			// Transient transport failures count as a normal
			// non-terminal poll.
			o.logger.Debug("poll attempt failed",
				zap.String("task_id", taskID), zap.Int("attempt", attempt+1), zap.Error(err))
			continue
		}

		switch status.State {
		case StateDone:
			return o.retrieve(ctx, identity, status.FullZipURL)
		case StateFailed:
			msg := status.ErrMsg
			if msg == "" {
				msg = "parse job failed"
			}
			return &Result{Status: StatusFailed, Message: msg}
		}
	}

	o.logger.Warn("parse job timed out",
		zap.String("identity", identity), zap.String("task_id", taskID),
		zap.Int("attempts", o.maxAttempts))
	return &Result{Status: StatusTimeout, Message: "parse job did not finish within the poll budget"}
}

func (o *Orchestrator) retrieve(ctx context.Context, identity, zipURL string) *Result {
	raw, err := o.client.FetchArtifact(ctx, zipURL)
	if err != nil {
		return &Result{Status: StatusError, Message: err.Error()}
	}

	artifact, err := extractArtifact(raw)
	if err != nil {
		return &Result{Status: StatusError, Message: "unpack artifact: " + err.Error()}
	}
	if artifact.Markdown == "" {
		return &Result{Status: StatusFailed, Message: "no markdown found in parse artifact"}
	}

	// Store images first so rewritten references resolve immediately.
	for _, img := range artifact.Images {
		if err := o.assets.Save(identity, img.Name, img.Data, img.Mime); err != nil {
			return &Result{Status: StatusError, Message: "store image: " + err.Error()}
		}
	}

	markdown := assets.RewriteMarkdown(identity, artifact.Markdown)
	return &Result{Status: StatusDone, Markdown: markdown}
}

// IsRejection reports whether an error message stems from a structured
// submit rejection rather than transport failure.
func IsRejection(err error) bool {
	return errors.Is(err, ErrRejected) || errors.Is(err, ErrNoToken)
}

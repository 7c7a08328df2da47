package scheduler

import (
	"context"
	"fmt"

	"shoreline_portal_backend/internal/prospects/outreach"
	"shoreline_portal_backend/internal/prospects/scoring"
	"shoreline_portal_backend/platform/config"
	"shoreline_portal_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type FollowUpProcessor interface {
	ProcessDueFollowUps(ctx context.Context) (outreach.BatchResult, error)
}

type ProspectRescorer interface {
	RecalculateAll(ctx context.Context, triggeredBy *uuid.UUID) (scoring.RecalcSummary, error)
}

type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	processor FollowUpProcessor
	rescorer  ProspectRescorer
	log       *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, processor FollowUpProcessor, rescorer ProspectRescorer, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:    server,
		mux:       mux,
		processor: processor,
		rescorer:  rescorer,
		log:       log,
	}

	mux.HandleFunc(TaskOutreachProcessDue, w.handleOutreachProcessDue)
	mux.HandleFunc(TaskProspectRescore, w.handleProspectRescore)

	return w, nil
}

func (w *Worker) handleOutreachProcessDue(ctx context.Context, task *asynq.Task) error {
	if w.processor == nil {
		return nil
	}

	if _, err := ParseOutreachProcessDuePayload(task); err != nil {
		return err
	}

	result, err := w.processor.ProcessDueFollowUps(ctx)
	if err != nil {
		return err
	}

	w.log.Info("follow-up run completed",
		"sent", result.Succeeded,
		"failed", result.Failed,
		"skipped", result.Skipped,
	)
	return nil
}

func (w *Worker) handleProspectRescore(ctx context.Context, task *asynq.Task) error {
	if w.rescorer == nil {
		return nil
	}

	if _, err := ParseProspectRescorePayload(task); err != nil {
		return err
	}

	summary, err := w.rescorer.RecalculateAll(ctx, nil)
	if err != nil {
		return err
	}

	w.log.Info("rescore run completed", "scored", summary.Scored, "failed", summary.Failed)
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

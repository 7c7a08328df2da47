package scheduler

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"shoreline_portal_backend/platform/config"
	"shoreline_portal_backend/platform/logger"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

type Client struct {
	client *asynq.Client
	queue  string
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
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

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Client) EnqueueOutreachProcessDue(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewOutreachProcessDueTask(OutreachProcessDuePayload{EnqueuedAt: time.Now().UTC()})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue))
	return err
}

func (c *Client) EnqueueProspectRescore(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewProspectRescoreTask(ProspectRescorePayload{EnqueuedAt: time.Now().UTC()})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue))
	return err
}

// Dispatcher periodically enqueues the recurring outreach and scoring tasks.
// It runs next to the worker so a single scheduler binary drives the cadence.
type Dispatcher struct {
	client           *Client
	followUpInterval time.Duration
	rescoreInterval  time.Duration
	log              *logger.Logger
}

func NewDispatcher(cfg config.SchedulerConfig, log *logger.Logger) (*Dispatcher, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	followUp := cfg.GetFollowUpInterval()
	if followUp <= 0 {
		followUp = time.Hour
	}
	rescore := cfg.GetRescoreInterval()
	if rescore <= 0 {
		rescore = 7 * 24 * time.Hour
	}

	return &Dispatcher{
		client:           client,
		followUpInterval: followUp,
		rescoreInterval:  rescore,
		log:              log,
	}, nil
}

func (d *Dispatcher) Close() error {
	if d == nil {
		return nil
	}
	return d.client.Close()
}

func (d *Dispatcher) Run(ctx context.Context) {
	if d == nil || d.client == nil {
		return
	}

	followUpTicker := time.NewTicker(d.followUpInterval)
	defer followUpTicker.Stop()

	rescoreTicker := time.NewTicker(d.rescoreInterval)
	defer rescoreTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-followUpTicker.C:
			if err := d.client.EnqueueOutreachProcessDue(ctx); err != nil {
				d.log.Warn("failed to enqueue follow-up run", "error", err)
			}
		case <-rescoreTicker.C:
			if err := d.client.EnqueueProspectRescore(ctx); err != nil {
				d.log.Warn("failed to enqueue rescore run", "error", err)
			}
		}
	}
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}

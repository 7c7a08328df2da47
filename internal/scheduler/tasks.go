package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskOutreachProcessDue = "outreach.process_due"

const TaskProspectRescore = "prospects.rescore"

type OutreachProcessDuePayload struct {
	EnqueuedAt time.Time `json:"enqueuedAt"`
}

type ProspectRescorePayload struct {
	EnqueuedAt time.Time `json:"enqueuedAt"`
}

func NewOutreachProcessDueTask(payload OutreachProcessDuePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOutreachProcessDue, data), nil
}

func ParseOutreachProcessDuePayload(task *asynq.Task) (OutreachProcessDuePayload, error) {
	var payload OutreachProcessDuePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return OutreachProcessDuePayload{}, err
	}
	return payload, nil
}

func NewProspectRescoreTask(payload ProspectRescorePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskProspectRescore, data), nil
}

func ParseProspectRescorePayload(task *asynq.Task) (ProspectRescorePayload, error) {
	var payload ProspectRescorePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ProspectRescorePayload{}, err
	}
	return payload, nil
}

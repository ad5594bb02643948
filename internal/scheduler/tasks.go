package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskLeadRescore = "leads.rescore"

type RescorePayload struct {
	LeadID   string `json:"leadId"`
	TenantID string `json:"tenantId"`
}

func NewRescoreTask(payload RescorePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadRescore, data), nil
}

func ParseRescorePayload(task *asynq.Task) (RescorePayload, error) {
	var payload RescorePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return RescorePayload{}, err
	}
	return payload, nil
}

package queue

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
)

func (j *Queue) HandleGenerateSessionTask(ctx context.Context, task *asynq.Task) error {
	var payload GenerateSessionPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	return j.wf.ProcessSession(ctx, payload.SessionID)
}

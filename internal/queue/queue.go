package queue

import (
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"
)

// Enqueuer hands started sessions to the background worker.
type Enqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

// EnqueueGeneration schedules a claimed session for processing. MaxRetry is
// zero: there is no cross-run retry, a failed post waits for manual re-queue.
func (e *Enqueuer) EnqueueGeneration(sessionID int64) error {
	payload := GenerateSessionPayload{SessionID: sessionID}
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeGenerateSession, taskPayload, asynq.MaxRetry(0))

	_, err = e.client.Enqueue(task)
	if err != nil {
		return err
	}

	log.Printf("Generation task enqueued: %+v", payload)
	return nil
}

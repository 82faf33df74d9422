package queue

import (
	"github.com/maheshrc27/postforge/internal/service"
)

type Queue struct {
	wf service.WorkflowService
}

func NewQueue(wf service.WorkflowService) *Queue {
	return &Queue{
		wf: wf,
	}
}

const TaskTypeGenerateSession = "generate:session"

type GenerateSessionPayload struct {
	SessionID int64 `json:"session_id"`
}

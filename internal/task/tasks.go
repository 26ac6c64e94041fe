package task

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	TypeProcessImage       = "image:process"
	TypeProcessPdf         = "pdf:process"
	TypeCleanupMedia       = "media:cleanup"
	TypePasswordResetEmail = "auth:password_reset_email"
)

// JobPayload identifies the image or PDF job a worker must run.
type JobPayload struct {
	JobID string `json:"job_id"`
}

type PasswordResetEmailPayload struct {
	UserID string `json:"user_id"`
	UID    string `json:"uid"`
	Token  string `json:"token"`
}

// NewProcessImageTask creates an Asynq task for processing an image job by ID.
func NewProcessImageTask(jobID string) (*asynq.Task, error) {
	return newJobTask(TypeProcessImage, jobID)
}

// NewProcessPdfTask creates an Asynq task for processing a PDF job by ID.
func NewProcessPdfTask(jobID string) (*asynq.Task, error) {
	return newJobTask(TypeProcessPdf, jobID)
}

func newJobTask(typ, jobID string) (*asynq.Task, error) {
	data, err := json.Marshal(JobPayload{JobID: jobID})
	if err != nil {
		return nil, fmt.Errorf("could not marshal %s payload: %w", typ, err)
	}
	return asynq.NewTask(typ, data), nil
}

// ParseJobPayload parses the payload of an image or PDF task.
func ParseJobPayload(t *asynq.Task) (JobPayload, error) {
	var p JobPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return JobPayload{}, fmt.Errorf("could not unmarshal payload: %w", err)
	}
	return p, nil
}

// NewCleanupMediaTask creates the periodic cleanup task; it carries no payload.
func NewCleanupMediaTask() *asynq.Task {
	return asynq.NewTask(TypeCleanupMedia, nil)
}

func NewPasswordResetEmailTask(userID, uid, token string) (*asynq.Task, error) {
	data, err := json.Marshal(PasswordResetEmailPayload{UserID: userID, UID: uid, Token: token})
	if err != nil {
		return nil, fmt.Errorf("could not marshal password-reset-email payload: %w", err)
	}
	return asynq.NewTask(TypePasswordResetEmail, data), nil
}

func ParsePasswordResetEmailPayload(t *asynq.Task) (PasswordResetEmailPayload, error) {
	var p PasswordResetEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return PasswordResetEmailPayload{}, fmt.Errorf("could not unmarshal payload: %w", err)
	}
	return p, nil
}

package stores

import "time"

// Run is one recorded provisioning run.
type Run struct {
	ID           string     `json:"id"`
	ProfileUser  string     `json:"profile_user"`
	InstallRoot  string     `json:"install_root"`
	Status       string     `json:"status"`
	FailedStep   *string    `json:"failed_step,omitempty"`
	DetectedAddr *string    `json:"detected_addr,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// StepEvent is the recorded outcome of one executed step.
type StepEvent struct {
	ID         int64     `json:"id"`
	RunID      string    `json:"run_id"`
	Ordinal    int       `json:"ordinal"`
	Name       string    `json:"name"`
	Outcome    string    `json:"outcome"`
	Detail     *string   `json:"detail,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

package api

import (
	"github.com/Abhijadhav03/momentum/activity"
	"github.com/Abhijadhav03/momentum/board"
	"github.com/Abhijadhav03/momentum/domain"
	"github.com/Abhijadhav03/momentum/toast"
)

const maxBodySize = 64 * 1024 // 64 KiB

const headerIdempotencyKey = "Idempotency-Key"

type errorResponse struct {
	Error string `json:"error"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type tasksResponse struct {
	Tasks []domain.Task `json:"tasks"`
}

type moveRequest struct {
	Status domain.Status `json:"status"`
}

// POST /api/board/drag/over and /end request body; a null target means the
// pointer is over nothing.
type dragRequest struct {
	Over *board.Item `json:"over"`
}

type dragStartResponse struct {
	State board.DragState `json:"state"`
	Task  domain.Task     `json:"task"`
}

type dragOverResponse struct {
	Column domain.Status `json:"column,omitempty"`
	Valid  bool          `json:"valid"`
}

type activityResponse = activity.Snapshot

type toastsResponse struct {
	Toasts []toast.Toast `json:"toasts"`
}

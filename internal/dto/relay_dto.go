package dto

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// TargetSelector is either every student ("all") or an explicit set of
// identities. The wire shape is a bare string, a single id, or an id array.
type TargetSelector struct {
	All bool
	IDs []uuid.UUID
}

func (t *TargetSelector) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "all" {
			t.All = true
			return nil
		}
		id, err := uuid.Parse(single)
		if err != nil {
			return fmt.Errorf("invalid target %q: %w", single, err)
		}
		t.IDs = []uuid.UUID{id}
		return nil
	}

	var many []uuid.UUID
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("target must be \"all\", an id, or an id list: %w", err)
	}
	t.IDs = many
	return nil
}

func (t TargetSelector) MarshalJSON() ([]byte, error) {
	if t.All {
		return json.Marshal("all")
	}
	return json.Marshal(t.IDs)
}

type SendMessageRequest struct {
	Target  TargetSelector `json:"target"`
	Message string         `json:"message"`
	Type    string         `json:"type,omitempty"`
}

type ReceiveMessagePayload struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	From      string `json:"from"`
	Timestamp string `json:"timestamp"`
}

type LockScreensRequest struct {
	Students TargetSelector `json:"students"`
	Duration int            `json:"duration,omitempty"`
	Message  string         `json:"message,omitempty"`
}

type ScreenLockPayload struct {
	Duration int    `json:"duration"`
	Message  string `json:"message"`
}

type UnlockScreensRequest struct {
	Students TargetSelector `json:"students"`
}

type CreatePollRequest struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type ShowPollPayload struct {
	PollId    string   `json:"poll_id"`
	Question  string   `json:"question"`
	Options   []string `json:"options"`
	Timestamp string   `json:"timestamp"`
}

type PollResponseRequest struct {
	PollId string `json:"poll_id"`
	Answer string `json:"answer"`
}

type PollResultsPayload struct {
	PollId    string `json:"poll_id"`
	Answer    string `json:"answer"`
	Username  string `json:"username,omitempty"`
	Timestamp string `json:"timestamp"`
}

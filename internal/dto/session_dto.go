package dto

type ClearSessionResponse struct {
	SessionId string `json:"session_id"`
	Cleared   bool   `json:"cleared"`
}

type SessionStateResponse struct {
	SessionId string `json:"session_id"`
	State     string `json:"state"`
}

package packets

// REQUESTS FOR /api/player/*

// LinkRequest carries the invite code typed on the device. Presence is checked
// by the handler so a missing code gets its own message.
type LinkRequest struct {
	InviteCode string `json:"inviteCode"`
}

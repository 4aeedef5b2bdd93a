package packets

// RESPONSES FOR /api/player/*

const LinkedMessage = "Display linked successfully"

type LinkResponse struct {
	DisplayID   string `json:"displayId"`
	AccessToken string `json:"accessToken"`
	Message     string `json:"message"`
}

type CheckInResponse struct {
	Success bool `json:"success"`
}

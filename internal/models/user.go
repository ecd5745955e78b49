package models

// Profile is the loaded save as the client sees it.
type Profile struct {
	SaveID       string      `json:"save_id"`
	Username     string      `json:"username"`
	Balance      int64       `json:"balance"`
	Dirty        bool        `json:"unsaved"`
	ActiveRounds []RoundInfo `json:"active_rounds"`
}

type LoadSaveResponse struct {
	Token   string  `json:"token"`
	Profile Profile `json:"profile"`
}

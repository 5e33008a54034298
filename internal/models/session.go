package models

// Session is a voice-chat room bound to one meeting on the audio platform.
// Timestamps are unix milliseconds.
type Session struct {
	SessionID string `json:"sessionId"`
	MeetingID string `json:"meetingId"`
	Users     []User `json:"users"`
	CreatedAt int64  `json:"createdAt"`
}

// User is one joined member of a session.
type User struct {
	SummonerID string `json:"summonerId"`
	PUUID      string `json:"puuid,omitempty"`
	IconURL    string `json:"iconUrl"`
	JoinedAt   int64  `json:"joinedAt,omitempty"`
}

// Mapping points a game identity (or a session id) at the meeting it is bound to.
type Mapping struct {
	MeetingID string `json:"meetingId"`
	SessionID string `json:"sessionId"`
	UpdatedAt int64  `json:"updatedAt"`
}

package types

// FileInfo describes an uploaded file inside a room
type FileInfo struct {
	Name      string `json:"name"`
	Timestamp int64  `json:"timestamp,string"`
	Size      int64  `json:"size"`
	Uploading bool   `json:"uploading"`
}

// PasteboardEntry is a text snippet posted to a room
type PasteboardEntry struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp,string"`
}

// NewRoomRequest is the body of a room creation request
type NewRoomRequest struct {
	Name string `json:"name"`
}

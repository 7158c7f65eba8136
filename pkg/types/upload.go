package types

// UploadStatus reports how much of an upload target has landed on disk.
// Size is only meaningful while InProgress is true; a target without an
// active session is reported with Size 0 so clients start fresh.
type UploadStatus struct {
	Size       uint64 `json:"size"`
	InProgress bool   `json:"in_progress"`
}

// ChunkResult is returned after a chunk has been applied to a target
type ChunkResult struct {
	Offset  int64 `json:"offset"`
	Written int64 `json:"written"`
}

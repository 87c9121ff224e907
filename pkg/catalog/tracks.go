package catalog

// DefaultTrackTitle is used when a track is attached without a title.
const DefaultTrackTitle = "No name"

// Track is a sub-record owned by an album, stored as an element of the
// embedded "tracks" array. Tracks are append-only; there is no update or
// delete of an individual track.
type Track struct {
	Title   string `json:"title"`
	FileURL string `json:"fileUrl"`
}

// Attachment is the result of a successful blob upload: the object name in
// the blob store and its publicly resolvable URL.
type Attachment struct {
	ObjectName string `json:"objectName"`
	URL        string `json:"url"`
}

package catalog

// Kind is the document-store kind that album records are persisted under.
const Kind = "Album"

// Record is the application-side representation of an album: a flat mapping
// from field name to value. The "id" field is reserved; it is assigned by the
// store on first persist and carried out-of-band as the store key.
type Record map[string]interface{}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	c := make(Record, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// ListAlbumsReq holds the parameters for a paginated album listing.
type ListAlbumsReq struct {
	Limit     int
	PageToken string
	Order     string
	Ascending bool
}

// ListAlbumsRes is one page of albums. NextPageToken is nil when there are no
// more pages; a non-nil token resumes the listing where this page ended.
type ListAlbumsRes struct {
	Items         []Record `json:"items"`
	NextPageToken *string  `json:"nextPageToken"`
}

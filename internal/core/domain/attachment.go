package domain

// Attachment points at a single blob in object storage. Key is the storage
// key, Name the original file name, Type the MIME type supplied on upload.
type Attachment struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// IsZero reports whether no attachment is present.
func (a Attachment) IsZero() bool {
	return a.Key == ""
}

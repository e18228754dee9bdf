package model

const (
	PurposeBlogs   = "blogs"
	PurposeAvatars = "avatars"
)

// StoredFile describes an uploaded image after it has been written to storage.
type StoredFile struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	URL          string `json:"url"`
	Size         int64  `json:"size"`
	MimeType     string `json:"mimetype"`
	Purpose      string `json:"-"`
}

// StoragePath is the key of the file inside the storage backend.
func (f *StoredFile) StoragePath() string {
	return f.Purpose + "/" + f.Filename
}

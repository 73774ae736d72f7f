package dto

// StorageRequest identifies the user whose folders an operation touches. Username is the folder name.
type StorageRequest struct {
	UserId   string `json:"user_id" validate:"required"`
	Username string `json:"username" validate:"required"`
}

type SignedUrlRequest struct {
	UserId      string `json:"user_id" validate:"required"`
	Username    string `json:"username" validate:"required"`
	Filename    string `json:"filename" validate:"required"`
	ContentType string `json:"content_type"`
}

type DeleteFileRequest struct {
	UserId    string   `json:"user_id" validate:"required"`
	Username  string   `json:"username" validate:"required"`
	Filenames []string `json:"filenames" validate:"required,min=1,dive,required"`
}

type StorageResponse struct {
	UserId   string `json:"user_id"`
	Message  string `json:"message"`
	Response string `json:"response"`
}

type SignedUrlResponse struct {
	Url        string `json:"url"`
	ObjectName string `json:"object_name"`
	ExpiresIn  int64  `json:"expires_in"`
}

type DeleteFileResponse struct {
	Deleted  []string `json:"deleted"`
	NotFound []string `json:"not_found"`
}

type FileListResponse struct {
	UserId    string   `json:"user_id"`
	Filenames []string `json:"filenames"`
}

// BuildVectorStoreMessage is the payload queued for the ingestion consumer.
type BuildVectorStoreMessage struct {
	UserId   string `json:"user_id"`
	Username string `json:"username"`
}

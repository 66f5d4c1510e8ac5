package config

const (
	// MaxFolderNameLength is the maximum length for folder names.
	// Limited to 255 to fit common VARCHAR(255) columns and keep paths readable.
	MaxFolderNameLength = 255

	// MaxFileNameLength is the maximum length for uploaded file names.
	MaxFileNameLength = 255

	// MaxFolderPathLength bounds a full folder path. Deeper hierarchies are
	// rejected at create/rename/move time.
	MaxFolderPathLength = 4096

	// MaxUploadRequestBytes caps the multipart body accepted by the upload
	// route, independent of the policy limit (which may be disabled).
	MaxUploadRequestBytes = 512 << 20
)

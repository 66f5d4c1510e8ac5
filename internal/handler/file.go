package handler

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"cloudfiles/internal/config"
	"cloudfiles/internal/domain/services"
	"cloudfiles/internal/httputil"
)

// multipartMemory is kept in memory before spilling upload parts to disk
const multipartMemory = 32 << 20

// FileHandler handles file HTTP requests
type FileHandler struct {
	fileService services.FileService
	info        ConfigInfo
	logger      *slog.Logger
}

// ConfigInfo is the public configuration reported by GET /api/files/config/info
type ConfigInfo struct {
	AppName                 string       `json:"appName"`
	Environment             string       `json:"environment"`
	APIVersion              string       `json:"apiVersion"`
	UploadMaxFileSizeMB     int64        `json:"uploadMaxFileSizeMB"`
	UploadAllowedExtensions []string     `json:"uploadAllowedExtensions"`
	Features                FeatureFlags `json:"features"`
	StorageBackend          string       `json:"storageBackend"`
}

// FeatureFlags are the switches clients adapt their UI to
type FeatureFlags struct {
	Logging        bool `json:"logging"`
	FileValidation bool `json:"fileValidation"`
}

// NewConfigInfo collects the public part of the configuration
func NewConfigInfo(cfg *config.Config, storageBackend string) ConfigInfo {
	return ConfigInfo{
		AppName:                 cfg.App.Name,
		Environment:             cfg.Environment,
		APIVersion:              cfg.App.APIVersion,
		UploadMaxFileSizeMB:     cfg.Upload.MaxFileSizeMB,
		UploadAllowedExtensions: cfg.Upload.AllowedExtensions,
		Features: FeatureFlags{
			Logging:        cfg.ActivityLogEnabled(),
			FileValidation: cfg.Upload.ValidationEnabled,
		},
		StorageBackend: storageBackend,
	}
}

// NewFileHandler creates a new file handler
func NewFileHandler(fileService services.FileService, info ConfigInfo, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		fileService: fileService,
		info:        info,
		logger:      logger,
	}
}

// ListFiles lists the files of one folder, or every file without folderId
// GET /api/files?folderId=
func (h *FileHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.fileService.ListFiles(r.Context(), httputil.QueryOptional(r, "folderId"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, files)
}

// UploadFile stores a multipart upload (fields: file, folderId)
// POST /api/files
func (h *FileHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadRequestBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handleError(w, err)
			return
		}
		httputil.RespondError(w, http.StatusBadRequest, "Invalid multipart body")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	part, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer part.Close()

	var folderID *string
	if v := r.FormValue("folderId"); v != "" {
		folderID = &v
	}

	file, err := h.fileService.UploadFile(r.Context(), &services.UploadFileRequest{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     part,
		FolderID:    folderID,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, file)
}

// GetConfigInfo reports the public configuration and feature flags
// GET /api/files/config/info
func (h *FileHandler) GetConfigInfo(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.info)
}

// DownloadFile streams a blob, inline unless ?download=true
// GET /api/files/download/{key}
func (h *FileHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	key, ok := PathParam(w, r, "key", "File key")
	if !ok {
		return
	}
	download := r.URL.Query().Get("download") == "true"

	file, content, err := h.fileService.OpenFile(r.Context(), key, download)
	if err != nil {
		handleError(w, err)
		return
	}
	defer content.Close()

	disposition := "inline"
	if download {
		disposition = "attachment"
	}
	w.Header().Set("Content-Type", file.MimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": file.Name}))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, content); err != nil {
		h.logger.Warn("download interrupted", "file_id", file.ID, "error", err)
	}
}

// GetFile returns a file record
// GET /api/files/{id}
func (h *FileHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "File ID")
	if !ok {
		return
	}

	file, err := h.fileService.GetFile(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, file)
}

// MoveFile places a file into another folder; null or absent folderId means root
// PATCH /api/files/{id}/move
func (h *FileHandler) MoveFile(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "File ID")
	if !ok {
		return
	}

	var req services.MoveFileRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	file, err := h.fileService.MoveFile(r.Context(), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, file)
}

// DeleteFile removes the blob and the record
// DELETE /api/files/{id}
func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "File ID")
	if !ok {
		return
	}

	if err := h.fileService.DeleteFile(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

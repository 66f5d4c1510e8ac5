package handler

import "net/http"

// Handlers groups the HTTP handlers mounted by RegisterRoutes
type Handlers struct {
	Folders     *FolderHandler
	Files       *FileHandler
	Events      *EventsHandler
	Logs        *LogsHandler
	Subscribers SubscriberCounter
}

// RegisterRoutes mounts the API on mux (Go 1.22+ enhanced patterns)
func RegisterRoutes(mux *http.ServeMux, h Handlers) {
	// Health check
	mux.HandleFunc("GET /health", HealthCheck(h.Subscribers))

	// Folder routes
	mux.HandleFunc("GET /api/folders", h.Folders.ListFolders)
	mux.HandleFunc("POST /api/folders", h.Folders.CreateFolder)
	mux.HandleFunc("GET /api/folders/root/contents", h.Folders.GetRootContents)
	mux.HandleFunc("GET /api/folders/path/{path...}", h.Folders.GetFolderByPath)
	mux.HandleFunc("GET /api/folders/{id}", h.Folders.GetFolder)
	mux.HandleFunc("PATCH /api/folders/{id}", h.Folders.RenameFolder)
	mux.HandleFunc("PATCH /api/folders/{id}/move", h.Folders.MoveFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", h.Folders.DeleteFolder)

	// File routes
	mux.HandleFunc("GET /api/files", h.Files.ListFiles)
	mux.HandleFunc("POST /api/files", h.Files.UploadFile)
	mux.HandleFunc("GET /api/files/config/info", h.Files.GetConfigInfo)
	mux.HandleFunc("GET /api/files/download/{key}", h.Files.DownloadFile)
	mux.HandleFunc("GET /api/files/{id}", h.Files.GetFile)
	mux.HandleFunc("PATCH /api/files/{id}/move", h.Files.MoveFile)
	mux.HandleFunc("DELETE /api/files/{id}", h.Files.DeleteFile)

	// Live updates
	mux.HandleFunc("GET /api/events", h.Events.Stream)
	mux.HandleFunc("GET /api/events/ws", h.Events.StreamWebSocket)

	// Activity log proxy
	mux.HandleFunc("GET /api/logs", h.Logs.GetLogs)
	mux.HandleFunc("POST /api/logs", h.Logs.SubmitLog)
	mux.HandleFunc("GET /api/logs/stats", h.Logs.GetStats)
}

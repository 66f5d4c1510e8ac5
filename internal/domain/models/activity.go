package models

// Activity actions reported to the external activity log
const (
	ActionUpload        = "upload"
	ActionDownload      = "download"
	ActionView          = "view"
	ActionDelete        = "delete"
	ActionList          = "list"
	ActionError         = "error"
	ActionFileMoved     = "file_moved"
	ActionFolderCreated = "folder_created"
	ActionFolderRenamed = "folder_renamed"
	ActionFolderMoved   = "folder_moved"
	ActionFolderDeleted = "folder_deleted"
)

// StatsActions are the actions counted by the daily stats endpoint
var StatsActions = []string{ActionUpload, ActionDownload, ActionView, ActionDelete, ActionList, ActionError}

// ActivityAttributes are free-form fields attached to an activity record
type ActivityAttributes map[string]interface{}

// LogQuery filters activity log reads
type LogQuery struct {
	Date   string `json:"date,omitempty"` // YYYY-MM-DD
	Action string `json:"action,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// LogStats aggregates one day of activity
type LogStats struct {
	Total    int            `json:"total"`
	ByAction map[string]int `json:"byAction"`
	Date     string         `json:"date"`
}

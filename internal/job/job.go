package job

import "time"

type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

type Source string

const (
	SourceUpload  Source = "upload"
	SourceYouTube Source = "youtube"
	SourceInbox   Source = "inbox"
)

// Job is one file (or YouTube URL) moving through the pipeline.
type Job struct {
	ID            string    `json:"id"`
	Filename      string    `json:"filename"`
	Size          int64     `json:"size"`
	Source        Source    `json:"source"`
	YouTubeURL    string    `json:"youtubeUrl,omitempty"`
	Status        Status    `json:"status"`
	Progress      int       `json:"progress"`
	StatusMessage string    `json:"statusMessage,omitempty"`
	Summary       string    `json:"summary,omitempty"`
	Transcript    string    `json:"transcript,omitempty"`
	Error         string    `json:"error,omitempty"`
	HistoryID     string    `json:"historyId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	FinishedAt    time.Time `json:"finishedAt,omitzero"`

	VideoPath string `json:"-"`
	AudioPath string `json:"-"`
}

// Input describes a new job.
type Input struct {
	Filename   string
	Size       int64
	Path       string
	Source     Source
	YouTubeURL string
}

type Counts struct {
	Completed int `json:"completed"`
	Error     int `json:"error"`
	Total     int `json:"total"`
}

// RunOptions carries per-request credentials and prompt. Empty fields are
// resolved from saved settings and then from config.
type RunOptions struct {
	GeminiAPIKey  string
	WhisperAPIKey string
	Prompt        string
}

package dto

// IngestRunResponse is one recorded ingest execution.
type IngestRunResponse struct {
	ID         string `json:"id"`
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at"`
	Processed  int    `json:"processed"`
	Error      string `json:"error,omitempty"`
}

// IngestRunsResponse lists the latest runs of a job, newest first.
type IngestRunsResponse struct {
	Job  string              `json:"job"`
	Runs []IngestRunResponse `json:"runs"`
}

package api

// UploadRequest is the JSON body for a roster upload. Rows may also arrive
// as a multipart CSV file, in which case this struct's fields map to form
// values instead.
type UploadRequest struct {
	DisplayName    string              `json:"display_name"`
	SourceUploadID string              `json:"source_upload_id,omitempty"`
	Columns        []string            `json:"columns"`
	Rows           []map[string]string `json:"rows"`
}

// UploadResponse reports the created table.
type UploadResponse struct {
	TableName string `json:"table_name"`
	Columns   int    `json:"columns"`
	TotalRows int64  `json:"total_rows"`
}

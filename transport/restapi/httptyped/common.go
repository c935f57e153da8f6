package httptyped

// MessageResp is returned by operation without resource to return, i.e: delete.
type MessageResp struct {
	Message string `json:"message"`
}

type DownloadResp struct {
	Message   string `json:"message"`
	Downloads int64  `json:"downloads"`
}

type HealthResp struct {
	Status string `json:"status"`
}

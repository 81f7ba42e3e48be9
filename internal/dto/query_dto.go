package dto

type QueryResultItem struct {
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
	ChunkIndex int     `json:"chunk_index"`
	FilePath   string  `json:"file_path"`
	ChunkCount int     `json:"chunk_count"`
}

type QueryResponse struct {
	Query   string            `json:"query"`
	Results []QueryResultItem `json:"results"`
}

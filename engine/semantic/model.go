package semantic

// SearchResult is a single similarity hit with its payload unpacked.
type SearchResult struct {
	ID      string            `json:"id"`
	Score   float32           `json:"score"`
	Content string            `json:"content"`
	Source  string            `json:"source"`
	Meta    map[string]string `json:"meta"`
}

// VectorRecord is one embedded chunk headed for the store. Payload carries
// content, source, type, chunk_id, and any record fields used for filtered
// retrieval (url, title).
type VectorRecord struct {
	ID        string
	Embedding []float32
	Payload   map[string]any
}

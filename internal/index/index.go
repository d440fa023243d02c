package index

// DocumentIndex is the search index as seen by its consumers.
type DocumentIndex interface {
	UpsertDocument(row DocumentRow, body string) error
	IndexDocument(path string, data []byte) error
	DeleteDocument(path string) error
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	ListDocuments(sourceType string, limit, offset int) ([]DocumentRow, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	Ping() error
	Close() error
}

var _ DocumentIndex = (*DB)(nil)

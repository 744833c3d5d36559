// Package mcp exposes the repository index as Model Context Protocol tools.
package mcp

// IngestRepositoryInput defines the input parameters for the ingest_repository tool.
type IngestRepositoryInput struct {
	// RepoURL is the clone URL of the repository.
	RepoURL string `json:"repo_url" jsonschema:"Clone URL of the git repository to ingest"`
	// Branch to clone. Empty means main.
	Branch string `json:"branch,omitempty" jsonschema:"Branch to ingest (default main); the value 'default' uses the repository's own default branch"`
}

// IngestRepositoryOutput summarizes a completed ingestion.
type IngestRepositoryOutput struct {
	Message        string `json:"message"`
	RepoURL        string `json:"repo_url"`
	Branch         string `json:"branch"`
	RepoName       string `json:"repo_name"`
	FilesProcessed int    `json:"files_processed"`
	RepoSummary    string `json:"repo_summary"`
}

// QueryIndexInput defines the input parameters for the query_index tool.
type QueryIndexInput struct {
	// Question is answered from the indexed content.
	Question string `json:"question" jsonschema:"The question to answer from the indexed repositories and documents"`
	// K is the number of excerpts retrieved.
	K int `json:"k,omitempty" jsonschema:"Number of excerpts to retrieve (default 100)"`
}

// QueryIndexOutput contains the generated answer and the excerpts it used.
type QueryIndexOutput struct {
	Question   string   `json:"question"`
	Answer     string   `json:"answer"`
	RawResults []string `json:"raw_results"`
}

// StoreDocumentInput defines the input parameters for the store_document tool.
type StoreDocumentInput struct {
	Filename string `json:"filename" jsonschema:"Name recorded as the document source; a .md suffix enables heading sections"`
	Content  string `json:"content" jsonschema:"UTF-8 text content of the document"`
}

// StoreDocumentOutput reports how many chunks were stored.
type StoreDocumentOutput struct {
	Filename   string `json:"filename"`
	Chunks     int    `json:"chunks"`
	Validation string `json:"validation"`
}

// DeleteCollectionInput takes no parameters.
type DeleteCollectionInput struct{}

// DeleteCollectionOutput confirms the deletion.
type DeleteCollectionOutput struct {
	Message string `json:"message"`
}

// StatusInput takes no parameters.
type StatusInput struct{}

// StatusOutput describes the vector store and target collection.
type StatusOutput struct {
	Collection  string `json:"collection"`
	Healthy     bool   `json:"healthy"`
	Exists      bool   `json:"exists"`
	Dimension   uint64 `json:"dimension"`
	PointsCount uint64 `json:"points_count"`
}

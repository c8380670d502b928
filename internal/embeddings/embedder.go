package embeddings

import "context"

// Mode distinguishes a query embedding from a document embedding.
// Asymmetric embedding APIs (Google's task_type) use it to bias the
// vector; symmetric ones (OpenAI, most self-hosted Ollama models) ignore
// it and embed the same way regardless.
type Mode string

const (
	ModeQuery    Mode = "query"
	ModeDocument Mode = "document"
)

// Embedder defines the interface for generating text embeddings.
type Embedder interface {
	// Embed generates embeddings for one or more texts in the given mode.
	Embed(ctx context.Context, texts []string, mode Mode) ([][]float32, error)

	// Dimensions returns the number of dimensions in the embedding vectors.
	Dimensions() int

	// Name returns the name/identifier of the embedding model.
	Name() string
}

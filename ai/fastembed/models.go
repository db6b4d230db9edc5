package fastembed

import (
	"errors"
	"fmt"

	"github.com/poiesic/sectionrank/ai"
)

// ErrNotAvailable is returned when the binary was built without cgo.
var ErrNotAvailable = errors.New("fastembed: not available (binary built without cgo, use the openai provider instead)")

// passageBatchSize is the number of texts fastembed encodes per ONNX run.
const passageBatchSize = 256

// modelNames maps accepted model names to fastembed's model identifiers.
var modelNames = map[string]string{
	"BAAI/bge-small-en-v1.5":                 "fast-bge-small-en-v1.5",
	"BAAI/bge-small-en":                      "fast-bge-small-en",
	"BAAI/bge-base-en-v1.5":                  "fast-bge-base-en-v1.5",
	"BAAI/bge-base-en":                       "fast-bge-base-en",
	"sentence-transformers/all-MiniLM-L6-v2": "fast-all-MiniLM-L6-v2",
	"fast-bge-small-en-v1.5":                 "fast-bge-small-en-v1.5",
	"fast-bge-small-en":                      "fast-bge-small-en",
	"fast-bge-base-en-v1.5":                  "fast-bge-base-en-v1.5",
	"fast-bge-base-en":                       "fast-bge-base-en",
	"fast-all-MiniLM-L6-v2":                  "fast-all-MiniLM-L6-v2",
}

// modelDimensions maps fastembed model identifiers to their embedding dimensions.
var modelDimensions = map[string]int{
	"fast-bge-small-en-v1.5": 384,
	"fast-bge-small-en":      384,
	"fast-bge-base-en-v1.5":  768,
	"fast-bge-base-en":       768,
	"fast-all-MiniLM-L6-v2":  384,
}

// resolveModel returns fastembed's identifier and the dimension of a model name.
func resolveModel(name string) (string, int, error) {
	id, ok := modelNames[name]
	if !ok {
		return "", 0, fmt.Errorf("%w: unsupported fastembed model %q (supported: BAAI/bge-small-en-v1.5, BAAI/bge-base-en-v1.5, sentence-transformers/all-MiniLM-L6-v2)",
			ai.ErrInvalidConfig, name)
	}
	return id, modelDimensions[id], nil
}

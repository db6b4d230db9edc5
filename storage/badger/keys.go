package badger

import (
	"encoding/binary"

	"github.com/minio/highwayhash"
)

const embeddingPrefix = "emb:"

// Fixed so keys are stable across runs. HighwayHash needs exactly 32 bytes.
var hashKey = []byte("sectionrank-embedding-cache-key!")

// makeEmbeddingKey returns the model prefix followed by the 256-bit
// HighwayHash of text.
func makeEmbeddingKey(model, text string) []byte {
	sum := highwayhash.Sum([]byte(text), hashKey)
	return append(makeModelPrefix(model), sum[:]...)
}

// makeModelPrefix returns the key prefix shared by all entries of model:
// "emb:", the uvarint length of model, then model. The length keeps one
// model's prefix from matching the keys of another.
func makeModelPrefix(model string) []byte {
	prefix := make([]byte, 0, len(embeddingPrefix)+binary.MaxVarintLen64+len(model)+highwayhash.Size)
	prefix = append(prefix, embeddingPrefix...)
	prefix = binary.AppendUvarint(prefix, uint64(len(model)))
	return append(prefix, model...)
}

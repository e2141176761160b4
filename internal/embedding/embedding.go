// Package embedding computes deterministic text embeddings stored
// alongside scored posts. Vectors are derived from a SHA-256 digest chain,
// so the same text always yields the same unit vector; neural embedding
// models are deliberately out of scope and can replace this behind the
// same function signature.
package embedding

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
)

// Dim is the embedding dimensionality, matching the 384-dim vectors the
// storage schema was sized for.
const Dim = 384

// Compute returns a normalized Dim-length embedding for text. Identical
// input always produces an identical vector.
func Compute(text string) []float32 {
	// Truncate very long text; the tail adds nothing for similarity.
	const maxLen = 512
	if len(text) > maxLen {
		text = text[:maxLen]
	}

	vec := make([]float32, Dim)
	digest := sha256.Sum256([]byte(text))

	// Each digest yields 8 float32 values; chain digests until the
	// vector is full.
	i := 0
	for i < Dim {
		for off := 0; off+4 <= len(digest) && i < Dim; off += 4 {
			bits := binary.BigEndian.Uint32(digest[off : off+4])
			// Map to (-1, 1) uniformly.
			vec[i] = float32(bits)/float32(math.MaxUint32)*2 - 1
			i++
		}
		digest = sha256.Sum256(digest[:])
	}

	return normalize(vec)
}

func normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return vec
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}

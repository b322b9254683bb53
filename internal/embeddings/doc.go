// Package embeddings turns text into fixed-length vectors.
//
// Supports FastEmbed (local ONNX) and TEI (external HTTP service) providers
// behind a common Provider interface. The intent classifier depends only on
// the Embedder interface; a provider that fails to initialize degrades the
// classifier to UNKNOWN instead of surfacing the failure.
package embeddings

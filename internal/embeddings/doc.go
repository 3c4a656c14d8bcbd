// Package embeddings turns text into vectors for similarity search.
//
// Four backends implement Provider: Gemini and the HuggingFace Inference API
// (hosted), an OpenAI-compatible endpoint through langchaingo, and a local
// ONNX model through fastembed. Select picks one at startup.
package embeddings

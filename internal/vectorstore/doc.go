// Package vectorstore searches the pre-populated attraction collection.
//
// Two backends implement Store: QdrantStore talks to Qdrant (self-hosted or
// Qdrant Cloud) over gRPC, ChromemStore reads an embedded chromem-go
// database from disk. Both take a query vector; embedding happens in the
// caller. NewStore picks the backend from the resolved provider selection.
//
// Stored points follow the LangChain layout: the embedded text under
// page_content and the attraction fields under a nested metadata object.
package vectorstore

// Package mcp exposes the travel query pipeline as MCP tools.
//
// The server uses the MCP SDK (github.com/modelcontextprotocol/go-sdk/mcp)
// over the stdio transport and registers two tools: travel_ask runs a query
// through the orchestrator, activity_lookup returns live booking data. Tool
// output is redacted for secrets before it is returned to clients.
package mcp

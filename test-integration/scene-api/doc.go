// Package integration provides integration tests for the ToolHive scene server.
// These tests run the complete server with both loader types and drive scene
// changes through the REST API.
package integration

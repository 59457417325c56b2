// Package connectors resolves an origin string to the connector that can
// fetch workflow documents from it. Local paths go to the filesystem
// connector and GitHub URLs to the GitHub connector.
package connectors

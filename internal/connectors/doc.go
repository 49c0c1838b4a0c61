// Package connectors holds sources that discover note files for ingestion.
package connectors

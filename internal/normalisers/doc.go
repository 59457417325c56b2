// Package normalisers holds the document parsers behind driven.Normaliser.
// Each subpackage understands one workflow format; n8n is the only one
// shipped.
package normalisers

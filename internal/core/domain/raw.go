package domain

// RawWorkflow is a document as handed over by a connector or client,
// before parsing.
type RawWorkflow struct {
	// Content is the raw document bytes.
	Content []byte

	// OriginURL is the file path or URL the bytes came from.
	OriginURL string

	// OriginGroup is the repository identifier, if any.
	OriginGroup string
}

// ParsedWorkflow is the normaliser output: validated metadata plus the
// verbatim raw text and its fingerprint, ready for insertion.
type ParsedWorkflow struct {
	Name        string
	Description string
	Nodes       []string
	Categories  []string
	NodeCount   int
	TriggerType string
	OriginURL   string
	OriginGroup string
	RawContent  string
	Fingerprint string
}

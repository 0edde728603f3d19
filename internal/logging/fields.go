package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID identifies one invocation of the tool.
	FieldRunID = "run_id"
	// FieldFile is the source recording a line refers to.
	FieldFile = "file"
	// FieldFrame is a zero-based frame index inside FieldFile.
	FieldFrame = "frame"
	// FieldWindow is the signed frame window being scanned.
	FieldWindow = "window"
	// FieldChain is the index of a chain in the registry.
	FieldChain = "chain"
	// FieldOutput is the merged output path.
	FieldOutput = "output"
	// FieldEventType classifies a line for filtering (e.g. "pair_matched").
	FieldEventType = "event_type"
	// FieldErrorHint suggests what the operator can do about an error.
	FieldErrorHint = "error_hint"
)

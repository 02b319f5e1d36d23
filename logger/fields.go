package logger

// Standard field names for consistent structured logging across idlbind.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Components
	FieldComponent = "component"
	FieldPhase     = "phase"

	// Files and paths
	FieldFile      = "file"
	FieldDir       = "dir"
	FieldPath      = "path"
	FieldOutputDir = "output_dir"

	// Model entities
	FieldType   = "type"
	FieldKind   = "kind"
	FieldModule = "module"

	// Counts and sizes
	FieldCount = "count"
	FieldSize  = "size"

	// Errors
	FieldError = "error"

	// Timing
	FieldDurationMS = "duration_ms"
)

package constants

// Hive home directory layout. All state lives under ~/.hive unless the
// operator overrides the base directory through configuration.
const (
	// HiveHome is the directory name of the hive state root, relative to
	// the user's home directory.
	HiveHome = ".hive"

	// TasksDir holds one JSON document per task.
	TasksDir = "tasks"

	// GoalsDir holds one JSON document per goal plus plan markdown.
	GoalsDir = "goals"

	// OutputsDir holds skill outputs keyed by squad/skill/task id.
	OutputsDir = "outputs"

	// ReviewsDir holds review documents keyed by task id and sequence.
	ReviewsDir = "reviews"

	// HumanReviewsDir holds escalated human review items.
	HumanReviewsDir = "human"

	// PipelinesDir holds pipeline run documents.
	PipelinesDir = "pipelines"

	// ContextDir holds shared foundation context documents.
	ContextDir = "context"

	// LogsDir holds rotated CLI log files.
	LogsDir = "logs"
)

// Well-known file names.
const (
	// FoundationContextFile is the shared brand context document that
	// every generated task receives as its first input.
	FoundationContextFile = "foundation.md"

	// LearningsFile is the append-only learning journal (JSON lines).
	LearningsFile = "learnings.jsonl"

	// CLILogFileName is the global CLI log file under LogsDir.
	CLILogFileName = "hive.log"

	// GlobalConfigName is the global configuration file under HiveHome.
	GlobalConfigName = "config.yaml"

	// ProjectConfigName is the project-local configuration file.
	ProjectConfigName = ".hive.yaml"

	// CatalogFileName is the optional externally loaded skill catalog.
	CatalogFileName = "catalog.yaml"
)

// FoundationSquadSegment is the output-path segment used for the
// foundation skill, which belongs to no squad.
const FoundationSquadSegment = "foundation"

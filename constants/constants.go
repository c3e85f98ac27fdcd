package constants

const (
	StatsCaptureFrequencySeconds = 5
	DefaultMaxActiveTasks        = 4
	TimeFormatDs                 = "2006-01-02"
	TimeFormatDsNoDash           = "20060102"
	TimeFormatYearSeconds        = "20060102T150405" // used for human readable run names
	TimeFormatYearSecondsRegex   = "[0-9]{4}[0-9]{2}[0-9]{2}T[0-9]{6}"
	CopyJsonOptionAuto           = "auto"
	StagingTablePrefix           = "stage_" // prefix of the temp clone used by upsert loads
	EmojiBang                    = "\U0001F4A5"
	AppName                      = "sparkpipe"
	ConfigDirName                = ".sparkpipe"
	EnvVarPrefix                 = "SP" // prefixed for environment variables in twelveFactorMode
	EnvVarTwelveFactorMode       = EnvVarPrefix + "_12FACTOR_MODE"
	EnvVarLogLevel               = EnvVarPrefix + "_LOG_LEVEL"
	EnvVarConfigKey              = EnvVarPrefix + "_CONFIG_KEY"
	EnvVarDotEnvFile             = EnvVarPrefix + "_DOTENV_FILE"
	TwelveFactorModeLambda       = "lambda"
	ConnectionTypeRedshift       = "redshift"
	ConnectionTypePostgres       = "postgres"
	ConnectionTypeSnowflake      = "snowflake"
	ConnectionTypeSqlServer      = "sqlserver"
	ConnectionTypeNetezza        = "netezza"
	ConnectionTypeMock           = "mock"
	ConnectionTypeAws            = "aws"
)

// Task types available to pipeline definitions.
const (
	TaskTypeNoOp             = "NoOp"
	TaskTypeSqlExec          = "SqlExec"
	TaskTypeStageToWarehouse = "StageToWarehouse"
	TaskTypeLoadFact         = "LoadFact"
	TaskTypeLoadDimension    = "LoadDimension"
	TaskTypeDataQuality      = "DataQuality"
)

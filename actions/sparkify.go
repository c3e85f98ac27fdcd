package actions

import (
	"encoding/json"
	"fmt"

	"github.com/relloyd/sparkpipe/constants"
	"github.com/relloyd/sparkpipe/helper"
	"github.com/relloyd/sparkpipe/transform"
)

// SparkifyConfig holds the settings of the Sparkify star-schema pipeline.
type SparkifyConfig struct {
	DagID              string `errorTxt:"dag id" mandatory:"yes"`
	Description        string
	Schedule           string
	RedshiftConnection string `errorTxt:"warehouse connection" mandatory:"yes"`
	RedshiftType       string `errorTxt:"warehouse connection type" mandatory:"yes"`
	AwsConnection      string `errorTxt:"aws connection" mandatory:"yes"`
	S3Bucket           string `errorTxt:"s3 bucket" mandatory:"yes"`
	S3Region           string
	LogDataKey         string `errorTxt:"log data key" mandatory:"yes"`
	LogJsonPaths       string `errorTxt:"log data JSONPaths option" mandatory:"yes"`
	SongDataKey        string `errorTxt:"song data key" mandatory:"yes"`
	SongJsonOption     string `errorTxt:"song data JSON option" mandatory:"yes"`
	MaxActiveTasks     int
}

// NewSparkifyConfig returns the settings used by the hourly Sparkify load.
func NewSparkifyConfig() *SparkifyConfig {
	return &SparkifyConfig{
		DagID:              "udac_example_dag",
		Description:        "Load and transform data in Redshift",
		Schedule:           "0 * * * *",
		RedshiftConnection: "redshift",
		RedshiftType:       constants.ConnectionTypeRedshift,
		AwsConnection:      "aws_credentials",
		S3Bucket:           "udacity-dend",
		S3Region:           "us-west-2",
		LogDataKey:         "log_data",
		LogJsonPaths:       "s3://udacity-dend/log_json_path.json",
		SongDataKey:        "song_data",
		SongJsonOption:     constants.CopyJsonOptionAuto,
		MaxActiveTasks:     constants.DefaultMaxActiveTasks,
	}
}

const sparkifyPipelineJson = `{
  "schemaVersion": 1,
  "dagId": "${dagId}",
  "description": "${description}",
  "schedule": "${schedule}",
  "maxActiveTasks": ${maxActiveTasks},
  "defaultArgs": {
    "owner": "udacity",
    "startDate": "2019-01-12",
    "dependsOnPast": false,
    "catchup": false,
    "retries": 3,
    "retryDelay": "5m",
    "emailOnRetry": false
  },
  "connections": {
    "${redshiftConnection}": {
      "type": "${redshiftType}",
      "logicalName": "${redshiftConnection}"
    },
    "${awsConnection}": {
      "type": "aws",
      "logicalName": "${awsConnection}"
    }
  },
  "tasks": {
    "Begin_execution": {
      "type": "NoOp"
    },
    "create_postgres_tables": {
      "type": "SqlExec",
      "data": {
        "databaseConnectionName": "${redshiftConnection}",
        "sqlQueryName": "create_tables"
      }
    },
    "stage_events": {
      "type": "StageToWarehouse",
      "data": {
        "databaseConnectionName": "${redshiftConnection}",
        "awsConnectionName": "${awsConnection}",
        "table": "staging_events",
        "s3Bucket": "${s3Bucket}",
        "s3Key": "${logDataKey}",
        "jsonOption": "${logJsonPaths}",
        "region": "${s3Region}"
      }
    },
    "Stage_songs": {
      "type": "StageToWarehouse",
      "data": {
        "databaseConnectionName": "${redshiftConnection}",
        "awsConnectionName": "${awsConnection}",
        "table": "staging_songs",
        "s3Bucket": "${s3Bucket}",
        "s3Key": "${songDataKey}",
        "jsonOption": "${songJsonOption}",
        "region": "${s3Region}"
      }
    },
    "Load_songplays_fact_table": {
      "type": "LoadFact",
      "data": {
        "databaseConnectionName": "${redshiftConnection}",
        "table": "songplays",
        "sqlQueryName": "songplay_table_insert"
      }
    },
    "Load_user_dim_table": {
      "type": "LoadDimension",
      "data": {
        "databaseConnectionName": "${redshiftConnection}",
        "table": "users",
        "sqlQueryName": "user_table_insert"
      }
    },
    "Load_song_dim_table": {
      "type": "LoadDimension",
      "data": {
        "databaseConnectionName": "${redshiftConnection}",
        "table": "songs",
        "sqlQueryName": "song_table_insert"
      }
    },
    "Load_artist_dim_table": {
      "type": "LoadDimension",
      "data": {
        "databaseConnectionName": "${redshiftConnection}",
        "table": "artists",
        "sqlQueryName": "artist_table_insert",
        "appendInsert": "true",
        "primaryKey": "artistid"
      }
    },
    "Load_time_dim_table": {
      "type": "LoadDimension",
      "data": {
        "databaseConnectionName": "${redshiftConnection}",
        "table": "time",
        "sqlQueryName": "time_table_insert"
      }
    },
    "Run_data_quality_checks": {
      "type": "DataQuality",
      "data": {
        "databaseConnectionName": "${redshiftConnection}",
        "testQuery": "SELECT COUNT(*) FROM songs WHERE songid IS NULL;",
        "expectedResult": "0"
      }
    },
    "Stop_execution": {
      "type": "NoOp"
    }
  },
  "edges": [
    {"from": "Begin_execution", "to": "create_postgres_tables"},
    {"from": "create_postgres_tables", "to": "stage_events"},
    {"from": "create_postgres_tables", "to": "Stage_songs"},
    {"from": "stage_events", "to": "Load_songplays_fact_table"},
    {"from": "Stage_songs", "to": "Load_songplays_fact_table"},
    {"from": "Load_songplays_fact_table", "to": "Load_user_dim_table"},
    {"from": "Load_songplays_fact_table", "to": "Load_song_dim_table"},
    {"from": "Load_songplays_fact_table", "to": "Load_artist_dim_table"},
    {"from": "Load_songplays_fact_table", "to": "Load_time_dim_table"},
    {"from": "Load_user_dim_table", "to": "Run_data_quality_checks"},
    {"from": "Load_song_dim_table", "to": "Run_data_quality_checks"},
    {"from": "Load_artist_dim_table", "to": "Run_data_quality_checks"},
    {"from": "Load_time_dim_table", "to": "Run_data_quality_checks"},
    {"from": "Run_data_quality_checks", "to": "Stop_execution"}
  ]
}`

// GetSparkifyPipeline renders the Sparkify pipeline definition using the values in cfg.
func GetSparkifyPipeline(cfg *SparkifyConfig) (*transform.PipelineDefinition, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil pointer for sparkify config supplied")
	}
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return nil, err
	}
	if cfg.MaxActiveTasks < 0 {
		return nil, fmt.Errorf("max active tasks must not be negative")
	}
	replacements := map[string]string{
		"${maxActiveTasks}": fmt.Sprintf("%v", cfg.MaxActiveTasks),
	}
	for k, v := range map[string]string{
		"dagId":              cfg.DagID,
		"description":        cfg.Description,
		"schedule":           cfg.Schedule,
		"redshiftConnection": cfg.RedshiftConnection,
		"redshiftType":       cfg.RedshiftType,
		"awsConnection":      cfg.AwsConnection,
		"s3Bucket":           cfg.S3Bucket,
		"s3Region":           cfg.S3Region,
		"logDataKey":         cfg.LogDataKey,
		"logJsonPaths":       cfg.LogJsonPaths,
		"songDataKey":        cfg.SongDataKey,
		"songJsonOption":     cfg.SongJsonOption,
	} {
		b, err := json.Marshal(v) // quote and escape the value
		if err != nil {
			return nil, err
		}
		replacements[`"${`+k+`}"`] = string(b)
	}
	s := sparkifyPipelineJson
	mustReplaceInStringUsingMapKeyVals(&s, replacements)
	p, err := transform.ParsePipelineDefinition([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("unable to render the sparkify pipeline: %v", err)
	}
	if err = p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

package actions

import (
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"regexp"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/relloyd/sparkpipe/constants"
	"github.com/relloyd/sparkpipe/rdbms/shared"
	"github.com/relloyd/sparkpipe/transform"
)

const (
	OutputFormatYaml = "yaml"
	OutputFormatJson = "json"
	redactedValue    = "xxxxx"
)

// mustReplaceInStringUsingMapKeyVals will replace in string s (by reference)
// the old and new values found in the map, where:
// the map key is the old value; and
// the map value is the replacement/new value.
func mustReplaceInStringUsingMapKeyVals(s *string, m map[string]string) {
	replacements := make([]string, 0)
	for k, v := range m { // for each key-value (old, new values)...
		replacements = append(replacements, k, v) // save them
	}
	r := strings.NewReplacer(replacements...)
	*s = r.Replace(*s)
}

// outputPipelineDefinition writes p to w as YAML or JSON.
// Connection data is stripped unless includeConnections is set, in which case passwords are redacted.
func outputPipelineDefinition(p *transform.PipelineDefinition, w io.Writer, yamlOrJson string, includeConnections bool) error {
	out := *p
	if includeConnections {
		out.Connections = redactConnections(p.Connections)
	} else {
		out.Connections = p.Connections.Redacted()
	}
	var data []byte
	var err error
	switch yamlOrJson {
	case OutputFormatYaml:
		data, err = yaml.Marshal(&out)
	case OutputFormatJson:
		data, err = json.MarshalIndent(&out, "", "  ")
	default:
		return fmt.Errorf("unsupported output format %q", yamlOrJson)
	}
	if err != nil {
		return fmt.Errorf("unable to marshal the pipeline: %v", err)
	}
	_, err = w.Write(data)
	return err
}

var reSecretKey = regexp.MustCompile(`(?i)(secret|password|token)`)

// redactConnections returns a copy of c with DSN passwords and secret values masked.
func redactConnections(c shared.DBConnections) shared.DBConnections {
	r := make(shared.DBConnections, len(c))
	for k, v := range c {
		d := shared.ConnectionDetails{Type: v.Type, LogicalName: v.LogicalName}
		if len(v.Data) > 0 {
			d.Data = make(map[string]string, len(v.Data))
			for dk, dv := range v.Data {
				switch {
				case dk == shared.DefaultDsnConnectionKeyNames.Dsn:
					dv = shared.RedactDsn(v.Type, dv)
				case reSecretKey.MatchString(dk):
					dv = redactedValue
				}
				d.Data[dk] = dv
			}
		}
		r[k] = d
	}
	return r
}

func loadPipelineFromFile(fileName string) (*transform.PipelineDefinition, error) {
	raw, err := ioutil.ReadFile(fileName)
	if err != nil {
		return nil, err
	}
	// Check file extension YAML or JSON.
	r := regexp.MustCompile(`.*\.(json|yaml|yml)$`)
	if !r.MatchString(strings.ToLower(fileName)) {
		return nil, fmt.Errorf("unable to identify type of pipeline file by its extension. Please use .yaml or .json")
	}
	p, err := transform.ParsePipelineDefinition(raw)
	if err != nil {
		return nil, fmt.Errorf("error reading pipeline file %v: %v", fileName, err)
	}
	return p, nil
}

// loadConnectionDataIfMissing will load connections from c if they are declared without data in p.
// Do this based on logical name only.
func loadConnectionDataIfMissing(c ConnectionLoader, p *transform.PipelineDefinition) error {
	for connectionName, v := range p.Connections { // for each connection...
		if len(v.Data) == 0 && v.Type != constants.ConnectionTypeMock { // if the details are missing...
			if c == nil {
				return fmt.Errorf("connection %q has no details and no connection store is available", connectionName)
			}
			if err := p.Connections.LoadConnection(c, connectionName); err != nil { // load the details from config...
				return err
			}
		}
	}
	return nil
}

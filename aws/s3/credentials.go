package s3

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/relloyd/sparkpipe/constants"
	"github.com/relloyd/sparkpipe/rdbms/shared"
)

// AccessKeys is the key pair handed to warehouse COPY statements.
type AccessKeys struct {
	AccessKeyId     string
	SecretAccessKey string
	SessionToken    string
}

var DefaultAwsConnectionKeyNames = struct {
	AccessKeyId     string
	SecretAccessKey string
	SessionToken    string
	Profile         string
	Region          string
}{
	AccessKeyId:     "accessKeyId",
	SecretAccessKey: "secretAccessKey",
	SessionToken:    "sessionToken",
	Profile:         "profile",
	Region:          "region",
}

// AwsConnectionDetails is the content of a connection of type aws.
// Static keys win over a shared credentials profile, which wins over the AWS_* environment.
type AwsConnectionDetails struct {
	AccessKeyId     string
	SecretAccessKey string
	SessionToken    string
	Profile         string
	Region          string
}

func NewAwsConnectionDetails(c *shared.ConnectionDetails) AwsConnectionDetails {
	k := DefaultAwsConnectionKeyNames
	return AwsConnectionDetails{
		AccessKeyId:     c.Data[k.AccessKeyId],
		SecretAccessKey: c.Data[k.SecretAccessKey],
		SessionToken:    c.Data[k.SessionToken],
		Profile:         c.Data[k.Profile],
		Region:          c.Data[k.Region],
	}
}

func (d AwsConnectionDetails) Parse() error {
	if (d.AccessKeyId == "") != (d.SecretAccessKey == "") {
		return fmt.Errorf("supply both an access key id and a secret access key, or neither")
	}
	return nil
}

func (d AwsConnectionDetails) GetScheme() (string, error) {
	return constants.ConnectionTypeAws, nil
}

func (d AwsConnectionDetails) GetMap(m map[string]string) map[string]string {
	if m == nil {
		m = make(map[string]string)
	}
	k := DefaultAwsConnectionKeyNames
	for key, v := range map[string]string{
		k.AccessKeyId:     d.AccessKeyId,
		k.SecretAccessKey: d.SecretAccessKey,
		k.SessionToken:    d.SessionToken,
		k.Profile:         d.Profile,
		k.Region:          d.Region,
	} {
		if v != "" {
			m[key] = v
		}
	}
	return m
}

func (d AwsConnectionDetails) String() string {
	switch {
	case d.AccessKeyId != "":
		return fmt.Sprintf("static keys for access key id %v", d.AccessKeyId)
	case d.Profile != "":
		return fmt.Sprintf("shared credentials profile %q", d.Profile)
	default:
		return "AWS environment variables"
	}
}

// Credentials returns the aws-sdk-go provider for d.
func (d AwsConnectionDetails) Credentials() *credentials.Credentials {
	switch {
	case d.AccessKeyId != "":
		return credentials.NewStaticCredentials(d.AccessKeyId, d.SecretAccessKey, d.SessionToken)
	case d.Profile != "":
		return credentials.NewSharedCredentials("", d.Profile)
	default:
		return credentials.NewEnvCredentials()
	}
}

// ConnectionCredentials resolves named aws connections into access keys.
type ConnectionCredentials struct {
	Connections ConnectionLoader
}

// GetCredentials loads connection name and returns its keys.
// Errors from loading or from the AWS credential provider are returned untranslated.
func (c *ConnectionCredentials) GetCredentials(name string) (AccessKeys, error) {
	d, err := c.Details(name)
	if err != nil {
		return AccessKeys{}, err
	}
	v, err := d.Credentials().Get()
	if err != nil {
		return AccessKeys{}, err
	}
	return AccessKeys{AccessKeyId: v.AccessKeyID, SecretAccessKey: v.SecretAccessKey, SessionToken: v.SessionToken}, nil
}

// Details loads and checks connection name.
func (c *ConnectionCredentials) Details(name string) (AwsConnectionDetails, error) {
	cd, err := c.Connections.LoadConnection(name)
	if err != nil {
		return AwsConnectionDetails{}, err
	}
	if cd.Type != constants.ConnectionTypeAws {
		return AwsConnectionDetails{}, fmt.Errorf("connection %q is of type %q; expected %q", name, cd.Type, constants.ConnectionTypeAws)
	}
	d := NewAwsConnectionDetails(&cd)
	if err := d.Parse(); err != nil {
		return AwsConnectionDetails{}, err
	}
	return d, nil
}

package s3_test

import (
	"errors"
	"os"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/relloyd/sparkpipe/aws/s3"
	"github.com/relloyd/sparkpipe/aws/s3/mocks"
	"github.com/relloyd/sparkpipe/constants"
	"github.com/relloyd/sparkpipe/rdbms/shared"
)

func TestConnectionCredentials_StaticKeys(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	loader := mocks.NewMockConnectionLoader(ctrl)
	loader.EXPECT().LoadConnection("aws_credentials").Return(shared.ConnectionDetails{
		Type:        constants.ConnectionTypeAws,
		LogicalName: "aws_credentials",
		Data:        map[string]string{"accessKeyId": "AKIA1", "secretAccessKey": "secret1", "profile": "ignored"},
	}, nil)
	c := &s3.ConnectionCredentials{Connections: loader}
	keys, err := c.GetCredentials("aws_credentials")
	if err != nil {
		t.Fatal(err)
	}
	if keys.AccessKeyId != "AKIA1" || keys.SecretAccessKey != "secret1" {
		t.Fatalf("unexpected keys: %+v", keys)
	}
}

func TestConnectionCredentials_EnvFallback(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	for k, v := range map[string]string{"AWS_ACCESS_KEY_ID": "AKIAENV", "AWS_SECRET_ACCESS_KEY": "envsecret"} {
		old, had := os.LookupEnv(k)
		_ = os.Setenv(k, v)
		defer func(k, old string, had bool) {
			if had {
				_ = os.Setenv(k, old)
			} else {
				_ = os.Unsetenv(k)
			}
		}(k, old, had)
	}
	loader := mocks.NewMockConnectionLoader(ctrl)
	loader.EXPECT().LoadConnection("aws_credentials").Return(shared.ConnectionDetails{
		Type: constants.ConnectionTypeAws, LogicalName: "aws_credentials",
	}, nil)
	keys, err := (&s3.ConnectionCredentials{Connections: loader}).GetCredentials("aws_credentials")
	if err != nil {
		t.Fatal(err)
	}
	if keys.AccessKeyId != "AKIAENV" {
		t.Fatalf("Expected: AKIAENV; Got: %v", keys.AccessKeyId)
	}
}

func TestConnectionCredentials_Errors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	loader := mocks.NewMockConnectionLoader(ctrl)
	notFound := errors.New("connection not found")
	loader.EXPECT().LoadConnection("missing").Return(shared.ConnectionDetails{}, notFound)
	loader.EXPECT().LoadConnection("redshift").Return(shared.ConnectionDetails{Type: constants.ConnectionTypeRedshift}, nil)
	loader.EXPECT().LoadConnection("half").Return(shared.ConnectionDetails{
		Type: constants.ConnectionTypeAws, Data: map[string]string{"accessKeyId": "AKIA"},
	}, nil)
	c := &s3.ConnectionCredentials{Connections: loader}
	if _, err := c.GetCredentials("missing"); err != notFound {
		t.Fatalf("expected the loader error untranslated; got %v", err)
	}
	if _, err := c.GetCredentials("redshift"); err == nil {
		t.Fatal("expected error for wrong connection type")
	}
	if _, err := c.GetCredentials("half"); err == nil {
		t.Fatal("expected error for a key id without a secret")
	}
}

func TestAwsConnectionDetails_GetMap(t *testing.T) {
	d := s3.AwsConnectionDetails{Profile: "dev", Region: "us-west-2"}
	m := d.GetMap(nil)
	if len(m) != 2 || m["profile"] != "dev" || m["region"] != "us-west-2" {
		t.Fatalf("unexpected map: %v", m)
	}
}

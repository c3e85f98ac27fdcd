package s3

import (
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// NewBasicClient returns a Lister for bucket using creds.
// Nil creds use the default AWS credential chain.
func NewBasicClient(bucket, region, prefix string, creds *credentials.Credentials) (Lister, error) {
	awsConfig := aws.NewConfig().WithRegion(region)
	if creds != nil {
		awsConfig = awsConfig.WithCredentials(creds)
	}
	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, err
	}
	return NewBasicClientWithAPI(bucket, prefix, s3.New(sess)), nil
}

// NewBasicClientWithAPI is NewBasicClient with the S3 API supplied, for tests.
func NewBasicClientWithAPI(bucket, prefix string, api s3iface.S3API) Lister {
	return &basicClient{
		bucket: bucket,
		prefix: prefix,
		api:    api,
	}
}

type basicClient struct {
	bucket string
	prefix string
	api    s3iface.S3API
}

func (s *basicClient) List(key string) (keys []string, err error) {
	keys = make([]string, 0, 1000)
	lastKey := ""
	for {
		params := &s3.ListObjectsInput{
			Bucket:  aws.String(s.bucket),
			Marker:  aws.String(lastKey),
			MaxKeys: aws.Int64(1000),
			Prefix:  aws.String(s.getKeyWithPrefix(key)),
		}
		resp, err := s.api.ListObjects(params)
		if err != nil {
			return nil, err
		}
		for _, v := range resp.Contents {
			keys = append(keys, aws.StringValue(v.Key))
		}
		if len(keys) > 0 {
			lastKey = keys[len(keys)-1]
		}
		if !aws.BoolValue(resp.IsTruncated) {
			break
		}
	}
	return
}

func (s *basicClient) getKeyWithPrefix(key string) string {
	if s.prefix == "" {
		return key
	}
	return strings.TrimRight(s.prefix, "/") + "/" + strings.TrimLeft(key, "/")
}

package s3

import (
	"fmt"
	"net/url"
	"strings"
)

const scheme = "s3"

type AwsS3Bucket struct {
	Name   string `errorTxt:"bucket name" mandatory:"yes"`
	Prefix string `errorTxt:"bucket prefix"`
	Region string `errorTxt:"bucket region"`
}

// Path returns s3://<bucket>/<prefix>.
func (d AwsS3Bucket) Path() string {
	return BuildPath(d.Name, d.Prefix)
}

// ParseDSN expects bucketPrefix to be of the form [s3://]<bucket>/<prefix>
// It returns an AwsS3Bucket populated with the components of bucketPrefix and the supplied region.
// The region may be empty.
func ParseDSN(bucketPrefix string, region string) (retval AwsS3Bucket, err error) {
	if !strings.Contains(bucketPrefix, "://") {
		bucketPrefix = scheme + "://" + bucketPrefix
	}
	s3url, err := url.Parse(bucketPrefix)
	if err != nil {
		return retval, fmt.Errorf("error parsing S3 URL: %v", err)
	}
	if s3url.Scheme != scheme {
		return retval, fmt.Errorf("expected S3 URL scheme %q but got %q", scheme, s3url.Scheme)
	}
	retval.Name = s3url.Host
	if retval.Name == "" {
		return retval, fmt.Errorf("DSN failed to parse bucket name")
	}
	retval.Prefix = strings.Trim(s3url.Path, "/")
	retval.Region = region
	return
}

// BuildPath joins bucket and key into s3://bucket/key.
func BuildPath(bucket string, key string) string {
	bucket = strings.TrimPrefix(strings.Trim(bucket, "/"), scheme+"://")
	key = strings.Trim(key, "/")
	if key == "" {
		return fmt.Sprintf("%v://%v", scheme, bucket)
	}
	return fmt.Sprintf("%v://%v/%v", scheme, bucket, key)
}

package s3

import (
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// pagingS3 serves ListObjects two keys at a time.
type pagingS3 struct {
	s3iface.S3API
	keys     []string
	prefixes []string
}

func (p *pagingS3) ListObjects(in *s3.ListObjectsInput) (*s3.ListObjectsOutput, error) {
	p.prefixes = append(p.prefixes, aws.StringValue(in.Prefix))
	start := 0
	for i, k := range p.keys {
		if k == aws.StringValue(in.Marker) {
			start = i + 1
		}
	}
	end := start + 2
	if end > len(p.keys) {
		end = len(p.keys)
	}
	out := &s3.ListObjectsOutput{IsTruncated: aws.Bool(end < len(p.keys))}
	for _, k := range p.keys[start:end] {
		out.Contents = append(out.Contents, &s3.Object{Key: aws.String(k)})
	}
	return out, nil
}

func TestBasicClient_List(t *testing.T) {
	api := &pagingS3{}
	for i := 0; i < 5; i++ {
		api.keys = append(api.keys, fmt.Sprintf("log_data/2018/11/%02d.json", i))
	}
	c := NewBasicClientWithAPI("udacity-dend", "", api)
	keys, err := c.List("log_data")
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 5 {
		t.Fatalf("Expected: 5 keys; Got: %v", len(keys))
	}
	if api.prefixes[0] != "log_data" {
		t.Fatalf("Expected: prefix log_data; Got: %v", api.prefixes[0])
	}
	// Prefix is joined to the key.
	c = NewBasicClientWithAPI("udacity-dend", "raw/", api)
	_, _ = c.List("/song_data")
	if got := api.prefixes[len(api.prefixes)-1]; got != "raw/song_data" {
		t.Fatalf("Expected: raw/song_data; Got: %v", got)
	}
}

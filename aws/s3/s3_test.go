package s3_test

import (
	"bytes"
	"io"
	"io/ioutil"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	awss3 "github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/qsimtools/upscale/aws/s3"
	"github.com/qsimtools/upscale/test"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		in             string
		bucket, prefix string
		ok             bool
	}{
		{"s3://bucket/runs/base", "bucket", "runs/base", true},
		{"s3://bucket", "bucket", "", true},
		{"s3:///prefix", "", "", false},
		{"/data/plans.json.gz", "", "", false},
	}
	for _, tst := range tests {
		b, p, ok := s3.ParseURL(tst.in)
		test.MustBe(t, ok, tst.ok, tst.in)
		if ok {
			test.MustBe(t, b, tst.bucket, tst.in)
			test.MustBe(t, p, tst.prefix, tst.in)
		}
	}
}

type fakeS3 struct {
	s3iface.S3API
	objects map[string]string
	keys    []string
}

func (f *fakeS3) ListObjectsPages(in *awss3.ListObjectsInput, fn func(*awss3.ListObjectsOutput, bool) bool) error {
	for i, k := range f.keys {
		page := &awss3.ListObjectsOutput{Contents: []*awss3.Object{{Key: aws.String(k)}}}
		if !fn(page, i == len(f.keys)-1) {
			break
		}
	}
	return nil
}

func (f *fakeS3) GetObject(in *awss3.GetObjectInput) (*awss3.GetObjectOutput, error) {
	return &awss3.GetObjectOutput{Body: ioutil.NopCloser(bytes.NewBufferString(f.objects[*in.Key]))}, nil
}

func TestRawSource(t *testing.T) {
	client := &fakeS3{
		objects: map[string]string{"run/a.json": "aaa", "run/b.json": "bbb"},
		keys:    []string{"run/", "run/a.json", "run/b.json"},
	}
	rs, err := s3.NewRawSourceFromClient(client, "bucket", "run/")
	test.ErrNil(t, err, "getting raw source")
	test.MustBe(t, rs.Len(), 2)

	var got []string
	for {
		r, err := rs.NextReader()
		if err == io.EOF {
			break
		}
		test.ErrNil(t, err, "next reader")
		body, err := ioutil.ReadAll(r)
		test.ErrNil(t, err, "reading")
		got = append(got, r.Name()+"="+string(body))
		test.ErrNil(t, r.Close(), "closing")
	}
	test.MustBe(t, got, []string{"run/a.json=aaa", "run/b.json=bbb"})
}

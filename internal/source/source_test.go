package source_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/redgreat/racewong/internal/source"
)

type fakeS3 struct {
	objects map[string]string // key -> body
	pages   [][]string        // ListObjectsV2 pages of keys
	calls   int
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: aws.Int64(int64(len(body))),
	}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, _ *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	page := f.pages[f.calls]
	f.calls++
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(f.calls < len(f.pages))}
	if f.calls < len(f.pages) {
		out.NextContinuationToken = aws.String("next")
	}
	for _, k := range page {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func TestParseS3(t *testing.T) {
	tests := []struct {
		uri, bucket, key string
		wantErr          bool
	}{
		{"s3://laps/2025/a.csv", "laps", "2025/a.csv", false},
		{"s3://laps/", "laps", "", false},
		{"s3://laps", "laps", "", false},
		{"s3:///a.csv", "", "", true},
		{"/tmp/a.csv", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			b, k, err := source.ParseS3(tt.uri)
			if tt.wantErr {
				if !errors.Is(err, source.ErrBadURI) {
					t.Fatalf("expected ErrBadURI, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseS3: %v", err)
			}
			if b != tt.bucket || k != tt.key {
				t.Errorf("got (%q, %q), want (%q, %q)", b, k, tt.bucket, tt.key)
			}
		})
	}
}

func TestLocalListAndOpen(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"b.csv":     "itow\n2\n",
		"a.CSV":     "itow\n1\n",
		"notes.txt": "ignore",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	src := source.New("")
	got, err := src.List(context.Background(), dir)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{filepath.Join(dir, "a.CSV"), filepath.Join(dir, "b.csv")}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("List = %v, want %v", got, want)
	}

	single, err := src.List(context.Background(), want[1])
	if err != nil || len(single) != 1 || single[0] != want[1] {
		t.Fatalf("List(file) = %v, %v", single, err)
	}

	rc, name, err := src.Open(context.Background(), want[1])
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	if name != "b.csv" || string(body) != "itow\n2\n" {
		t.Errorf("Open = (%q, %q)", name, body)
	}

	if _, err := src.List(context.Background(), filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for a missing path")
	}
}

func TestS3ListAndOpen(t *testing.T) {
	fake := &fakeS3{
		objects: map[string]string{"runs/s1.csv": "itow\n7\n"},
		pages: [][]string{
			{"runs/s2.csv", "runs/readme.md"},
			{"runs/s1.csv"},
		},
	}
	src := source.NewWithClient(fake)

	got, err := src.List(context.Background(), "s3://laps/runs/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"s3://laps/runs/s1.csv", "s3://laps/runs/s2.csv"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("List = %v, want %v", got, want)
	}

	rc, name, err := src.Open(context.Background(), "s3://laps/runs/s1.csv")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	if name != "s1.csv" || string(body) != "itow\n7\n" {
		t.Errorf("Open = (%q, %q)", name, body)
	}

	if _, _, err := src.Open(context.Background(), "s3://laps/runs/"); !errors.Is(err, source.ErrBadURI) {
		t.Errorf("Open(prefix) err = %v, want ErrBadURI", err)
	}
}

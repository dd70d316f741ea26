package publish

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/elements/pkg/ssr"
)

func TestDirPublisher(t *testing.T) {
	dir := t.TempDir()
	p := NewDirPublisher(dir)

	if err := p.Publish(context.Background(), "blog/index.html", []byte("<p>hi</p>")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "blog", "index.html"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "<p>hi</p>" {
		t.Errorf("expected page content, got %q", data)
	}

	if err := p.Publish(context.Background(), "blog/index.html", []byte("<p>v2</p>")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	entries, _ := os.ReadDir(filepath.Join(dir, "blog"))
	if len(entries) != 1 {
		t.Errorf("expected temporary files cleaned up, got %d entries", len(entries))
	}
}

func TestInvalidNames(t *testing.T) {
	p := NewDirPublisher(t.TempDir())
	for _, name := range []string{"", "/etc/passwd", "../up.html", "a/../../b", ".", `a\b`} {
		if err := p.Publish(context.Background(), name, nil); !stderrors.Is(err, ErrInvalidName) {
			t.Errorf("%q: expected ErrInvalidName, got %v", name, err)
		}
	}
}

func TestDirPublisherCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewDirPublisher(t.TempDir()).Publish(ctx, "x.html", nil); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

type fakeS3 struct {
	inputs []*s3.PutObjectInput
	bodies []string
	err    error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(in.Body)
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, string(body))
	return &s3.PutObjectOutput{}, nil
}

func TestS3Publisher(t *testing.T) {
	fake := &fakeS3{}
	p := NewS3Publisher(fake, "site", "pages")

	if err := p.Publish(context.Background(), "index.html", []byte("<h1>x</h1>")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fake.inputs) != 1 {
		t.Fatalf("expected 1 upload, got %d", len(fake.inputs))
	}
	in := fake.inputs[0]
	if *in.Bucket != "site" || *in.Key != "pages/index.html" {
		t.Errorf("expected site/pages/index.html, got %s/%s", *in.Bucket, *in.Key)
	}
	if !strings.HasPrefix(*in.ContentType, "text/html") {
		t.Errorf("expected html content type, got %q", *in.ContentType)
	}
	if fake.bodies[0] != "<h1>x</h1>" {
		t.Errorf("expected body uploaded, got %q", fake.bodies[0])
	}
}

func TestS3PublisherError(t *testing.T) {
	boom := stderrors.New("boom")
	p := NewS3Publisher(&fakeS3{err: boom}, "site", "")
	if err := p.Publish(context.Background(), "a.html", nil); !stderrors.Is(err, boom) {
		t.Errorf("expected wrapped upload error, got %v", err)
	}
	if key, _ := p.Key("a.html"); key != "a.html" {
		t.Errorf("expected unprefixed key, got %q", key)
	}
}

// isolateAWS points the default AWS chain at files under a temp dir and
// turns off instance metadata.
func isolateAWS(t *testing.T, credentials string) {
	t.Helper()
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config")
	credsFile := filepath.Join(dir, "credentials")
	if err := os.WriteFile(configFile, nil, 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(credsFile, []byte(credentials), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("AWS_CONFIG_FILE", configFile)
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", credsFile)
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")
	t.Setenv("AWS_SESSION_TOKEN", "")
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_REGION", "")
	t.Setenv("AWS_DEFAULT_REGION", "")
}

func TestNewS3ClientEnvironment(t *testing.T) {
	isolateAWS(t, "")
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIDENV")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")

	ctx := context.Background()
	client, err := NewS3Client(ctx, "eu-west-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	opts := client.Options()
	if opts.Region != "eu-west-1" {
		t.Errorf("expected region eu-west-1, got %q", opts.Region)
	}
	creds, err := opts.Credentials.Retrieve(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if creds.AccessKeyID != "AKIDENV" {
		t.Errorf("expected environment credentials, got %q", creds.AccessKeyID)
	}
}

func TestNewS3ClientSharedProfile(t *testing.T) {
	isolateAWS(t, "[publish]\naws_access_key_id = AKIDPROFILE\naws_secret_access_key = secret\n")
	t.Setenv("AWS_PROFILE", "publish")

	ctx := context.Background()
	client, err := NewS3Client(ctx, "us-east-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	creds, err := client.Options().Credentials.Retrieve(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if creds.AccessKeyID != "AKIDPROFILE" {
		t.Errorf("expected shared profile credentials, got %q", creds.AccessKeyID)
	}
}

func TestMultiStopsAtFirstError(t *testing.T) {
	boom := stderrors.New("boom")
	second := &fakeS3{}
	m := Multi{NewS3Publisher(&fakeS3{err: boom}, "a", ""), NewS3Publisher(second, "b", "")}
	if err := m.Publish(context.Background(), "x.html", nil); !stderrors.Is(err, boom) {
		t.Errorf("expected first error, got %v", err)
	}
	if len(second.inputs) != 0 {
		t.Error("expected later publishers skipped")
	}
}

func TestCollectorMerge(t *testing.T) {
	c, stop := Collect()
	ssr.EmitServerDefine("my-element", `<template shadowrootmode="open"><h1>{{attr:heading}}</h1></template>`)
	ssr.EmitServerDefine("other-element", `<b>other</b>`)
	stop()
	ssr.EmitServerDefine("late-element", `<i>late</i>`)

	if n := len(c.Definitions()); n != 2 {
		t.Fatalf("expected 2 definitions, got %d", n)
	}
	page := `<body><my-element heading="A"></my-element><other-element></other-element></body>`
	out, err := c.Merge(page)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `<my-element heading="A"><template shadowrootmode="open"><h1>A</h1></template></my-element>`) {
		t.Errorf("expected my-element filled, got %q", out)
	}
	if !strings.Contains(out, `<other-element><b>other</b></other-element>`) {
		t.Errorf("expected other-element filled, got %q", out)
	}
}

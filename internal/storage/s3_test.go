package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type putCall struct {
	bucket string
	key    string
}

type fakeS3API struct {
	puts        []putCall
	deletes     []putCall
	failBuckets map[string]error
	listKeys    map[string][]string // bucket -> keys
}

func (f *fakeS3API) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	bucket, key := aws.ToString(in.Bucket), aws.ToString(in.Key)
	if err := f.failBuckets[bucket]; err != nil {
		return nil, err
	}
	f.puts = append(f.puts, putCall{bucket: bucket, key: key})
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3API) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	bucket, key := aws.ToString(in.Bucket), aws.ToString(in.Key)
	if err := f.failBuckets[bucket]; err != nil {
		return nil, err
	}
	f.deletes = append(f.deletes, putCall{bucket: bucket, key: key})
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3API) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	bucket := aws.ToString(in.Bucket)
	if err := f.failBuckets[bucket]; err != nil {
		return nil, err
	}
	out := &s3.ListObjectsV2Output{}
	for _, k := range f.listKeys[bucket] {
		out.Contents = append(out.Contents, types.Object{
			Key:  aws.String(k),
			Size: aws.Int64(int64(len(k))),
		})
	}
	return out, nil
}

type fakePresign struct {
	url string
	err error
}

func (f *fakePresign) PresignGetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &v4.PresignedHTTPRequest{URL: f.url + "/" + aws.ToString(in.Key)}, nil
}

func testS3Client(api *fakeS3API, presign s3PresignAPI, backup string) *S3Client {
	return newS3ClientWithAPI(S3Config{
		Region:       "eu-central-1",
		Bucket:       "main",
		BackupBucket: backup,
	}, api, presign)
}

func testUploadContext() UploadContext {
	return UploadContext{TenantID: "t1", KitID: "k1", ClientID: "c1", StepID: "s1"}
}

func TestS3UploadWritesMainAndBackup(t *testing.T) {
	api := &fakeS3API{}
	c := testS3Client(api, &fakePresign{}, "backup")

	file := FileInfo{Name: "logo.png", Size: 4, ContentType: "image/png", Body: strings.NewReader("data")}
	res, err := c.Upload(context.Background(), file, testUploadContext(), nil)
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}

	if len(api.puts) != 2 {
		t.Fatalf("expected 2 puts (main + backup), got %d", len(api.puts))
	}
	if api.puts[0].bucket != "main" || api.puts[1].bucket != "backup" {
		t.Fatalf("unexpected put order: %+v", api.puts)
	}
	if api.puts[0].key != api.puts[1].key {
		t.Fatalf("backup must reuse the main key, got %q and %q", api.puts[0].key, api.puts[1].key)
	}
	if res.Provider != ProviderPrimary {
		t.Fatalf("expected provider %s, got %s", ProviderPrimary, res.Provider)
	}
	if !strings.HasPrefix(res.Key, "kits/k1/clients/c1/steps/s1/") {
		t.Fatalf("unexpected key %q", res.Key)
	}
	if res.BackupURL == "" {
		t.Fatal("expected backup URL after successful backup write")
	}
}

func TestS3UploadBackupFailureIsSwallowed(t *testing.T) {
	api := &fakeS3API{failBuckets: map[string]error{"backup": errors.New("backup down")}}
	c := testS3Client(api, &fakePresign{}, "backup")

	file := FileInfo{Name: "doc.pdf", Size: 3, ContentType: "application/pdf", Body: strings.NewReader("abc")}
	res, err := c.Upload(context.Background(), file, testUploadContext(), nil)
	if err != nil {
		t.Fatalf("backup failure must not fail the upload, got %v", err)
	}
	if res.BackupURL != "" {
		t.Fatalf("no backup URL expected after backup failure, got %q", res.BackupURL)
	}
	if len(api.puts) != 1 || api.puts[0].bucket != "main" {
		t.Fatalf("expected a single main-bucket put, got %+v", api.puts)
	}
}

func TestS3UploadMainFailureFailsTheCall(t *testing.T) {
	api := &fakeS3API{failBuckets: map[string]error{"main": errors.New("denied")}}
	c := testS3Client(api, &fakePresign{}, "backup")

	file := FileInfo{Name: "doc.pdf", Size: 3, ContentType: "application/pdf", Body: strings.NewReader("abc")}
	_, err := c.Upload(context.Background(), file, testUploadContext(), nil)
	if !IsCode(err, CodeUploadFailed) {
		t.Fatalf("expected UPLOAD_FAILED, got %v", err)
	}
	if len(api.puts) != 0 {
		t.Fatalf("backup must not be attempted after a main failure, got %+v", api.puts)
	}
}

func TestS3UploadReportsProgress(t *testing.T) {
	api := &fakeS3API{}
	c := testS3Client(api, &fakePresign{}, "")

	var reports []int64
	file := FileInfo{Name: "a.bin", Size: 10, ContentType: "application/octet-stream", Body: strings.NewReader("0123456789")}
	_, err := c.Upload(context.Background(), file, testUploadContext(), func(transferred, total int64) {
		reports = append(reports, transferred)
	})
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if len(reports) != 2 || reports[0] != 0 || reports[1] != 10 {
		t.Fatalf("expected progress reports [0 10], got %v", reports)
	}
}

func TestS3DeleteBackupFailureIsLoggedNotFatal(t *testing.T) {
	api := &fakeS3API{failBuckets: map[string]error{"backup": errors.New("backup down")}}
	c := testS3Client(api, &fakePresign{}, "backup")

	if err := c.Delete(context.Background(), "kits/k1/x"); err != nil {
		t.Fatalf("backup delete failure must not fail the call, got %v", err)
	}
	if len(api.deletes) != 1 || api.deletes[0].bucket != "main" {
		t.Fatalf("expected main-bucket delete only, got %+v", api.deletes)
	}
}

func TestS3DeleteMainFailurePropagates(t *testing.T) {
	api := &fakeS3API{failBuckets: map[string]error{"main": errors.New("denied")}}
	c := testS3Client(api, &fakePresign{}, "")

	err := c.Delete(context.Background(), "kits/k1/x")
	if !IsCode(err, CodeDeleteFailed) {
		t.Fatalf("expected DELETE_FAILED, got %v", err)
	}
}

func TestS3SignedURL(t *testing.T) {
	c := testS3Client(&fakeS3API{}, &fakePresign{url: "https://signed.example"}, "")

	url, err := c.SignedURL(context.Background(), "kits/k1/x", time.Minute)
	if err != nil {
		t.Fatalf("SignedURL returned error: %v", err)
	}
	if url != "https://signed.example/kits/k1/x" {
		t.Fatalf("unexpected signed url %q", url)
	}
}

func TestS3SignedURLFailure(t *testing.T) {
	c := testS3Client(&fakeS3API{}, &fakePresign{err: errors.New("no creds")}, "")

	_, err := c.SignedURL(context.Background(), "kits/k1/x", 0)
	if !IsCode(err, CodeSignFailed) {
		t.Fatalf("expected SIGN_FAILED, got %v", err)
	}
}

func TestS3ListAndListBackup(t *testing.T) {
	api := &fakeS3API{listKeys: map[string][]string{
		"main":   {"kits/a", "kits/b"},
		"backup": {"kits/a", "kits/b", "kits/orphan"},
	}}
	c := testS3Client(api, &fakePresign{}, "backup")

	main, err := c.List(context.Background(), "kits/")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(main) != 2 {
		t.Fatalf("expected 2 main objects, got %d", len(main))
	}

	backup, err := c.ListBackup(context.Background(), "kits/")
	if err != nil {
		t.Fatalf("ListBackup returned error: %v", err)
	}
	if len(backup) != 3 {
		t.Fatalf("expected 3 backup objects, got %d", len(backup))
	}
}

func TestS3ListBackupWithoutBackupBucket(t *testing.T) {
	c := testS3Client(&fakeS3API{}, &fakePresign{}, "")
	if _, err := c.ListBackup(context.Background(), "kits/"); err == nil {
		t.Fatal("expected error without a backup bucket")
	}
}

func TestS3PublicURL(t *testing.T) {
	c := testS3Client(&fakeS3API{}, &fakePresign{}, "")
	url := c.publicURL("main", "kits/k1/report 1.pdf")
	if url != "https://main.s3.eu-central-1.amazonaws.com/kits/k1/report%201.pdf" {
		t.Fatalf("unexpected public url %q", url)
	}
}

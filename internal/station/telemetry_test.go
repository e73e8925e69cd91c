package station

import "testing"

func TestOneUploadPerBucket(t *testing.T) {
	up := &fakeUploader{}
	// boot at minute 8, period 10: no upload until the minute-10 boundary
	s := NewUploadScheduler(up, 10, 8)

	for _, min := range []int{8, 9} {
		if s.MaybeUpload(min, 100, nil) {
			t.Fatalf("minute %d is inside the already-served startup bucket", min)
		}
	}
	if !s.MaybeUpload(10, 100, nil) {
		t.Fatal("entering the minute-10 bucket must upload")
	}
	if s.MaybeUpload(10, 101, nil) {
		t.Fatal("second cycle in the same bucket must be a no-op")
	}
	if s.MaybeUpload(11, 102, nil) {
		t.Fatal("minute 11 is still in the 10..19 bucket")
	}
	if len(up.uploads) != 1 {
		t.Fatalf("uploads = %d, want exactly 1", len(up.uploads))
	}
	if up.uploads[0].Level != 100 {
		t.Fatalf("uploaded level = %d, want 100", up.uploads[0].Level)
	}
}

func TestUploadRearmsOnNextBucket(t *testing.T) {
	up := &fakeUploader{}
	s := NewUploadScheduler(up, 2, 0) // period 2, start on a bucket edge

	if !s.MaybeUpload(0, 50, nil) {
		t.Fatal("start on a bucket edge uploads immediately")
	}
	if s.MaybeUpload(1, 50, nil) {
		t.Fatal("minute 1 shares bucket 0")
	}
	if !s.MaybeUpload(2, 51, nil) {
		t.Fatal("minute 2 opens a new bucket")
	}
	if got := len(up.uploads); got != 2 {
		t.Fatalf("uploads = %d, want 2", got)
	}
}

func TestBucketServedEvenIfTransportFails(t *testing.T) {
	up := &fakeUploader{err: errTransport}
	s := NewUploadScheduler(up, 10, 10)

	if !s.MaybeUpload(10, 70, nil) {
		t.Fatal("upload must be attempted")
	}
	if s.MaybeUpload(10, 70, nil) {
		t.Fatal("no retry protocol: the bucket stays served")
	}
}

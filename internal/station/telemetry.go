package station

import "log"

// Uploader pushes one telemetry sample to the server. Fire-and-forget: the
// outcome is logged, never retried.
type Uploader interface {
	Upload(levelCm int, tempTenths *int) error
}

// UploadScheduler enforces at most one periodic upload per minute bucket,
// however many sampling cycles fall inside it.
type UploadScheduler struct {
	uploader   Uploader
	period     int
	lastBucket int
	sent       bool
}

// NewUploadScheduler starts the schedule at startMinute. A start exactly on
// a bucket edge uploads on the first cycle, like the original minute%period
// check; anywhere else the startup bucket counts as already served.
func NewUploadScheduler(up Uploader, periodMin, startMinute int) *UploadScheduler {
	if periodMin <= 0 {
		periodMin = 10
	}
	return &UploadScheduler{
		uploader:   up,
		period:     periodMin,
		lastBucket: startMinute / periodMin,
		sent:       startMinute%periodMin != 0,
	}
}

// MaybeUpload performs the periodic upload when the bucket is due and
// reports whether one was attempted. The bucket is marked served even if the
// transport fails: there is no retry protocol.
func (s *UploadScheduler) MaybeUpload(minute, levelCm int, tempTenths *int) bool {
	if b := minute / s.period; b != s.lastBucket {
		s.lastBucket = b
		s.sent = false
	}
	if s.sent {
		return false
	}
	s.sent = true
	if err := s.uploader.Upload(levelCm, tempTenths); err != nil {
		log.Printf("telemetry: periodic upload error: %v", err)
	}
	return true
}

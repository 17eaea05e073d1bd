package app

import (
	"sync"
	"time"

	"github.com/vk/fxbuild/internal/bundler"
)

// StatusReport is the JSON body served on /status.
type StatusReport struct {
	Builds    int        `json:"builds"`
	Failures  int        `json:"failures"`
	LastBuild *LastBuild `json:"last_build,omitempty"`
}

// LastBuild summarizes the most recent pass.
type LastBuild struct {
	ID         string    `json:"id,omitempty"`
	Success    bool      `json:"success"`
	FinishedAt time.Time `json:"finished_at"`
	DurationMS int64     `json:"duration_ms,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// buildStatus records pass outcomes for the status endpoint.
type buildStatus struct {
	mu     sync.Mutex
	report StatusReport
}

func (s *buildStatus) record(res *bundler.Result, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.report.Builds++
	last := &LastBuild{FinishedAt: time.Now().UTC()}
	if err != nil {
		s.report.Failures++
		last.Error = err.Error()
	} else {
		last.Success = true
		last.ID = res.ID
		last.DurationMS = res.Duration.Milliseconds()
	}
	s.report.LastBuild = last
}

func (s *buildStatus) snapshot() StatusReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.report
	if out.LastBuild != nil {
		last := *out.LastBuild
		out.LastBuild = &last
	}
	return out
}

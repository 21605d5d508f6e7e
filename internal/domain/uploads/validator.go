package uploads

import (
	"fmt"
	"sort"
	"strings"

	"highlight-api/internal/infra/metrics"
)

const (
	MaxFileSize  int64 = 500 * 1024 * 1024
	MaxBatchSize       = 20
)

// AllowedMimeTypes is the video allow-list for raw footage and highlights.
var AllowedMimeTypes = map[string]struct{}{
	"video/mp4":        {},
	"video/quicktime":  {},
	"video/x-msvideo":  {},
	"video/webm":       {},
	"video/x-matroska": {},
}

// AcceptedTypes returns the allow-list sorted, for clients building a file picker.
func AcceptedTypes() []string {
	out := make([]string, 0, len(AllowedMimeTypes))
	for m := range AllowedMimeTypes {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

type Reason string

const (
	ReasonType      Reason = "type"
	ReasonSize      Reason = "size"
	ReasonDuplicate Reason = "duplicate"
	ReasonLimit     Reason = "limit"
)

type Candidate struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
}

type Rejection struct {
	Candidate
	Reason  Reason `json:"reason"`
	Message string `json:"message"`
}

type Result struct {
	Accepted     []Candidate `json:"accepted"`
	Rejected     []Rejection `json:"rejected"`
	Notification string      `json:"notification,omitempty"`
}

func (r Result) HasRejections() bool {
	return len(r.Rejected) > 0
}

// Validate filters candidates against the allow-list, size ceiling and duplicate
// names, then truncates the accepted files so the batch never exceeds MaxBatchSize.
func Validate(candidates []Candidate, alreadySelected []string) Result {
	return ValidateStored(candidates, alreadySelected, nil)
}

// ValidateStored is Validate for a project that already holds stored files.
// Stored names only block duplicates; the batch ceiling counts the current
// selection alone.
func ValidateStored(candidates []Candidate, alreadySelected, stored []string) Result {
	res := Result{Accepted: []Candidate{}, Rejected: []Rejection{}}

	seen := make(map[string]struct{}, len(alreadySelected)+len(stored)+len(candidates))
	for _, name := range stored {
		seen[name] = struct{}{}
	}
	for _, name := range alreadySelected {
		seen[name] = struct{}{}
	}

	for _, c := range candidates {
		if reason, msg, ok := check(c, seen); !ok {
			res.Rejected = append(res.Rejected, Rejection{Candidate: c, Reason: reason, Message: msg})
			continue
		}
		seen[c.Name] = struct{}{}
		res.Accepted = append(res.Accepted, c)
	}

	room := MaxBatchSize - len(alreadySelected)
	if room < 0 {
		room = 0
	}
	if len(res.Accepted) > room {
		for _, c := range res.Accepted[room:] {
			res.Rejected = append(res.Rejected, Rejection{
				Candidate: c,
				Reason:    ReasonLimit,
				Message:   fmt.Sprintf("%s: a batch can hold at most %d files", c.Name, MaxBatchSize),
			})
		}
		res.Accepted = res.Accepted[:room]
	}

	for _, r := range res.Rejected {
		metrics.UploadRejections.WithLabelValues(string(r.Reason)).Inc()
	}
	res.Notification = notification(res.Rejected)
	return res
}

// ValidateOne runs the per-file checks for a single upload against names already
// stored on the project. A lone upload is its own batch, so stored files never
// count toward MaxBatchSize.
func ValidateOne(c Candidate, stored []string) (Rejection, bool) {
	res := ValidateStored([]Candidate{c}, nil, stored)
	if len(res.Rejected) > 0 {
		return res.Rejected[0], false
	}
	return Rejection{}, true
}

func check(c Candidate, seen map[string]struct{}) (Reason, string, bool) {
	mime := strings.ToLower(strings.TrimSpace(c.MimeType))
	if _, ok := AllowedMimeTypes[mime]; !ok {
		return ReasonType, fmt.Sprintf("%s: unsupported file type %q, upload a video file", c.Name, c.MimeType), false
	}
	if c.Size > MaxFileSize {
		return ReasonSize, fmt.Sprintf("%s: file is too large (%s), the limit is %s", c.Name, humanSize(c.Size), humanSize(MaxFileSize)), false
	}
	if _, dup := seen[c.Name]; dup {
		return ReasonDuplicate, fmt.Sprintf("%s: a file with this name is already selected", c.Name), false
	}
	return "", "", true
}

func notification(rejected []Rejection) string {
	if len(rejected) == 0 {
		return ""
	}
	lines := make([]string, 0, len(rejected))
	for _, r := range rejected {
		lines = append(lines, r.Message)
	}
	noun := "files were"
	if len(rejected) == 1 {
		noun = "file was"
	}
	return fmt.Sprintf("%d %s not added: %s", len(rejected), noun, strings.Join(lines, "; "))
}

func humanSize(b int64) string {
	const mb = 1024 * 1024
	if b >= mb {
		return fmt.Sprintf("%d MB", b/mb)
	}
	return fmt.Sprintf("%d bytes", b)
}

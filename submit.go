package popstage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

const (
	// DefaultAnalysisBaseURL is the API root the analysis endpoint hangs off.
	DefaultAnalysisBaseURL = "http://localhost/api"
	// AnalysisPath is the fixed analysis endpoint path.
	AnalysisPath = "/analysis"
	// DefaultSubmitTimeout bounds one analysis request.
	DefaultSubmitTimeout = 5 * time.Second

	maxErrorBody = 64 << 10
)

// AnalysisResult is the decoded success response of the analysis endpoint.
type AnalysisResult struct {
	// Analysis is the "analysis" member of the response, if any.
	Analysis any
	// Raw is the full response body.
	Raw json.RawMessage
}

// Submitter sends one upload per call to the analysis endpoint. It never
// retries.
type Submitter struct {
	BaseURL string
	Timeout time.Duration
	Client  *http.Client
}

// NewSubmitter creates a submitter for baseURL. Empty or zero arguments
// take the defaults.
func NewSubmitter(baseURL string, timeout time.Duration) *Submitter {
	if baseURL == "" {
		baseURL = DefaultAnalysisBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultSubmitTimeout
	}
	return &Submitter{BaseURL: baseURL, Timeout: timeout, Client: http.DefaultClient}
}

// Endpoint returns the full analysis URL.
func (s *Submitter) Endpoint() string {
	return strings.TrimRight(s.BaseURL, "/") + AnalysisPath
}

// Submit posts rec's payload as the multipart field "file". Every failure
// is returned as a *SubmissionError.
func (s *Submitter) Submit(ctx context.Context, rec *UploadRecord) (*AnalysisResult, error) {
	if rec == nil || rec.File.Open == nil {
		return nil, &SubmissionError{Message: "No audio file to analyze."}
	}

	body, contentType, err := encodeUpload(rec)
	if err != nil {
		return nil, &SubmissionError{Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint(), body)
	if err != nil {
		return nil, &SubmissionError{Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", rec.ID.String())

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &SubmissionError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return nil, &SubmissionError{Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &SubmissionError{
			Status:  resp.StatusCode,
			Message: backendMessage(data),
			Err:     errors.New(http.StatusText(resp.StatusCode)),
		}
	}

	res := &AnalysisResult{Raw: json.RawMessage(data)}
	var decoded struct {
		Analysis any `json:"analysis"`
	}
	if len(data) > 0 && json.Unmarshal(data, &decoded) == nil {
		res.Analysis = decoded.Analysis
	}
	return res, nil
}

// encodeUpload builds the multipart body holding the upload's payload.
func encodeUpload(rec *UploadRecord) (io.Reader, string, error) {
	rc, err := rec.File.Open()
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", rec.FileName, err)
	}
	defer rc.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(rec.FileName)))
	mediaType := rec.File.MediaType
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	h.Set("Content-Type", mediaType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create part: %w", err)
	}
	if _, err := io.Copy(part, rc); err != nil {
		return nil, "", fmt.Errorf("copy %s: %w", rec.FileName, err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// backendMessage extracts a human-readable message from an error body.
// The analysis service answers {"detail": "..."}; a "message" member is
// accepted too. Structured details (validation lists) yield "".
func backendMessage(body []byte) string {
	var payload struct {
		Detail  any    `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if s, ok := payload.Detail.(string); ok && s != "" {
		return s
	}
	return payload.Message
}

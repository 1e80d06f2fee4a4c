package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Prajjwal888/Smart-Check-AI/internal/models"
	"github.com/Prajjwal888/Smart-Check-AI/pkg/analysis"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Assignment{},
		&models.Submission{},
		&models.SubmissionMatch{},
		&models.SubmissionResult{},
	))

	return db
}

func newTestFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {"form-data; name=\"file\"; filename=\"" + filename + "\""},
		"Content-Type":        {"application/octet-stream"},
	})
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(body, writer.Boundary())
	form, err := reader.ReadForm(int64(len(content) + 1024))
	require.NoError(t, err)
	files := form.File["file"]
	require.Len(t, files, 1)

	return files[0]
}

func floatPtr(v float64) *float64 {
	return &v
}

type checkerStub struct {
	response     analysis.SimilarityResponse
	err          error
	gotFileURLs  []string
	gotThreshold float64
	calls        int
}

func (s *checkerStub) Check(_ context.Context, fileURLs []string, threshold float64) (analysis.SimilarityResponse, error) {
	s.calls++
	s.gotFileURLs = fileURLs
	s.gotThreshold = threshold
	if s.err != nil {
		return analysis.SimilarityResponse{}, s.err
	}
	return s.response, nil
}

type graderStub struct {
	response     analysis.GradingResponse
	err          error
	gotFileURLs  []string
	gotAnswerKey string
}

func (s *graderStub) Evaluate(_ context.Context, fileURLs []string, answerKeyURL string) (analysis.GradingResponse, error) {
	s.gotFileURLs = fileURLs
	s.gotAnswerKey = answerKeyURL
	if s.err != nil {
		return analysis.GradingResponse{}, s.err
	}
	return s.response, nil
}

type reporterStub struct {
	html    string
	err     error
	gotRows []analysis.PerformanceRow
	calls   int
}

func (s *reporterStub) GenerateClassReport(_ context.Context, rows []analysis.PerformanceRow) (string, error) {
	s.calls++
	s.gotRows = rows
	if s.err != nil {
		return "", s.err
	}
	return s.html, nil
}

type publisherStub struct {
	mu     sync.Mutex
	events []SubmissionEvent
}

func (s *publisherStub) Publish(_ context.Context, event SubmissionEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *publisherStub) byType(eventType string) []SubmissionEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []SubmissionEvent
	for _, event := range s.events {
		if event.Type == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}

type uploaderStub struct {
	err      error
	uploaded []string
}

func (s *uploaderStub) Upload(_ context.Context, name string, reader io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", err
	}
	url := "https://cdn.example.com/" + name
	s.uploaded = append(s.uploaded, url)
	return url, nil
}

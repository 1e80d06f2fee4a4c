package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Prajjwal888/Smart-Check-AI/internal/models"
	"github.com/Prajjwal888/Smart-Check-AI/internal/repository"
	"github.com/Prajjwal888/Smart-Check-AI/pkg/analysis"
)

func seedEvaluatedSubmissions(t *testing.T, db *gorm.DB) models.Assignment {
	t.Helper()

	assignment, seeded := seedAssignmentWithSubmissions(t, db, 3)

	names := []string{"Asha", "Bhavesh"}
	for i := 0; i < 2; i++ {
		require.NoError(t, db.Model(&models.User{}).
			Where("id = ?", seeded[i].StudentID).
			Update("name", names[i]).Error)

		evaluatedAt := time.Now()
		grade := 80.0
		require.NoError(t, db.Model(&models.Submission{}).
			Where("id = ?", seeded[i].ID).
			Updates(map[string]interface{}{
				"status":       models.SubmissionStatusEvaluated,
				"grade":        grade,
				"evaluated_at": evaluatedAt,
			}).Error)

		results := []models.SubmissionResult{
			{SubmissionID: seeded[i].ID, Question: 1, Score: 4, Topic: "Trees", StudentAnswer: "BST answer", ReferenceAnswer: "BST reference"},
			{SubmissionID: seeded[i].ID, Question: 2, Score: 5, Topic: "Graphs", StudentAnswer: "BFS answer", ReferenceAnswer: "BFS reference"},
		}
		require.NoError(t, db.Create(&results).Error)
	}

	// The third submission stays pending; its rows must never reach the
	// report service.
	return assignment
}

func TestClassReportBuildsRowsFromEvaluatedSubmissions(t *testing.T) {
	db := newTestDB(t)
	assignment := seedEvaluatedSubmissions(t, db)

	reporter := &reporterStub{html: "<html><body>Class Performance Report</body></html>"}

	svc := NewReportService(repository.NewSubmissionRepository(db), repository.NewAssignmentRepository(db), reporter, testLogger())

	report, err := svc.ClassReport(context.Background(), assignment.ID)
	require.NoError(t, err)
	require.Equal(t, reporter.html, report)

	require.Equal(t, 1, reporter.calls)
	require.Len(t, reporter.gotRows, 4)

	byStudent := make(map[string]int)
	for _, row := range reporter.gotRows {
		byStudent[row.StudentName]++
	}
	require.Equal(t, map[string]int{"Asha": 2, "Bhavesh": 2}, byStudent)

	first := reporter.gotRows[0]
	require.Equal(t, 4.0, first.Score)
	require.Equal(t, "Trees", first.Topic)
	require.Equal(t, "BST answer", first.StudentAnswer)
	require.Equal(t, "BST reference", first.ReferenceAnswer)
}

func TestClassReportRequiresEvaluatedSubmissions(t *testing.T) {
	db := newTestDB(t)
	assignment, _ := seedAssignmentWithSubmissions(t, db, 2)

	reporter := &reporterStub{html: "<html></html>"}

	svc := NewReportService(repository.NewSubmissionRepository(db), repository.NewAssignmentRepository(db), reporter, testLogger())

	_, err := svc.ClassReport(context.Background(), assignment.ID)
	require.ErrorIs(t, err, ErrNothingToReport)
	require.Zero(t, reporter.calls)
}

func TestClassReportUnknownAssignment(t *testing.T) {
	db := newTestDB(t)

	svc := NewReportService(repository.NewSubmissionRepository(db), repository.NewAssignmentRepository(db), &reporterStub{}, testLogger())

	_, err := svc.ClassReport(context.Background(), 999)
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestClassReportSurfacesUpstreamFailure(t *testing.T) {
	db := newTestDB(t)
	assignment := seedEvaluatedSubmissions(t, db)

	upstream := &analysis.UpstreamError{Service: "report", StatusCode: 500, Detail: "renderer crashed"}
	reporter := &reporterStub{err: upstream}

	svc := NewReportService(repository.NewSubmissionRepository(db), repository.NewAssignmentRepository(db), reporter, testLogger())

	_, err := svc.ClassReport(context.Background(), assignment.ID)
	require.Error(t, err)

	var gotUpstream *analysis.UpstreamError
	require.ErrorAs(t, err, &gotUpstream)
	require.Equal(t, "report", gotUpstream.Service)
}

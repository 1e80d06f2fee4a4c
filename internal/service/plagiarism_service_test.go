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

func seedAssignmentWithSubmissions(t *testing.T, db *gorm.DB, studentCount int) (models.Assignment, []models.Submission) {
	t.Helper()

	teacher := models.User{Role: models.RoleTeacher, Name: "Teacher", Email: "teacher@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&teacher).Error)

	assignment := models.Assignment{
		Title:       "Data Structures Homework",
		Subject:     "Computer Science",
		Course:      "CS101",
		DueDate:     time.Now().Add(48 * time.Hour),
		FileURL:     "https://cdn.example.com/assignment.pdf",
		CreatedByID: teacher.ID,
	}
	require.NoError(t, db.Create(&assignment).Error)

	base := time.Now().Add(-time.Hour)
	submissions := make([]models.Submission, 0, studentCount)
	for i := 0; i < studentCount; i++ {
		student := models.User{
			Role:         models.RoleStudent,
			Name:         "Student",
			Email:        "student" + string(rune('a'+i)) + "@example.com",
			PasswordHash: "x",
		}
		require.NoError(t, db.Create(&student).Error)

		submission := models.Submission{
			AssignmentID: assignment.ID,
			StudentID:    student.ID,
			FileURL:      "https://cdn.example.com/sub" + string(rune('a'+i)) + ".pdf",
			Status:       models.SubmissionStatusPending,
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(&submission).Error)
		submissions = append(submissions, submission)
	}

	return assignment, submissions
}

func TestPlagiarismCheckFlagsAndOrders(t *testing.T) {
	db := newTestDB(t)
	assignment, seeded := seedAssignmentWithSubmissions(t, db, 3)

	checker := &checkerStub{response: analysis.SimilarityResponse{Results: []analysis.PairResult{
		{File1Index: 0, File2Index: 1, SimilarityScore: 0.92, IsPlagiarised: true},
		{File1Index: 0, File2Index: 2, SimilarityScore: 0.31, IsPlagiarised: false},
		{File1Index: 1, File2Index: 2, SimilarityScore: 0.15, IsPlagiarised: false},
	}}}
	events := &publisherStub{}

	svc := NewPlagiarismService(repository.NewSubmissionRepository(db), repository.NewAssignmentRepository(db), checker, events, 75, testLogger())

	report, err := svc.Check(context.Background(), assignment.ID)
	require.NoError(t, err)

	require.Equal(t, 1, checker.calls)
	require.Equal(t, 75.0, checker.gotThreshold)
	require.Equal(t, []string{seeded[0].FileURL, seeded[1].FileURL, seeded[2].FileURL}, checker.gotFileURLs)

	require.Equal(t, 3, report.Stats.Total)
	require.Equal(t, 2, report.Stats.Flagged)
	require.InDelta(t, 92.0, report.Stats.HighestSimilarity, 0.001)

	// Sorted by plagiarism score descending.
	require.Len(t, report.Submissions, 3)
	require.InDelta(t, 92.0, *report.Submissions[0].PlagiarismScore, 0.001)
	require.InDelta(t, 92.0, *report.Submissions[1].PlagiarismScore, 0.001)
	require.InDelta(t, 31.0, *report.Submissions[2].PlagiarismScore, 0.001)
	require.Equal(t, models.SubmissionStatusFlagged, report.Submissions[0].Status)
	require.Equal(t, models.SubmissionStatusFlagged, report.Submissions[1].Status)
	require.Equal(t, models.SubmissionStatusChecked, report.Submissions[2].Status)

	// The flagged pair points at each other, symmetrically.
	require.Len(t, report.Submissions[0].MatchedWith, 1)
	require.Len(t, report.Submissions[1].MatchedWith, 1)
	require.Empty(t, report.Submissions[2].MatchedWith)
	require.InDelta(t, 92.0, report.Submissions[0].MatchedWith[0].Similarity, 0.001)

	require.Len(t, events.byType(EventSubmissionFlagged), 2)
	require.Len(t, events.byType(EventSubmissionChecked), 1)
}

func TestPlagiarismCheckTracksScoreBelowThreshold(t *testing.T) {
	db := newTestDB(t)
	assignment, _ := seedAssignmentWithSubmissions(t, db, 2)

	checker := &checkerStub{response: analysis.SimilarityResponse{Results: []analysis.PairResult{
		{File1Index: 0, File2Index: 1, SimilarityScore: 0.74, IsPlagiarised: false},
	}}}

	svc := NewPlagiarismService(repository.NewSubmissionRepository(db), repository.NewAssignmentRepository(db), checker, nil, 75, testLogger())

	report, err := svc.Check(context.Background(), assignment.ID)
	require.NoError(t, err)

	require.Equal(t, 0, report.Stats.Flagged)
	for _, submission := range report.Submissions {
		require.Equal(t, models.SubmissionStatusChecked, submission.Status)
		require.InDelta(t, 74.0, *submission.PlagiarismScore, 0.001)
		require.Empty(t, submission.MatchedWith)
		require.NotNil(t, submission.CheckedAt)
	}
}

func TestPlagiarismCheckGatesMatchesOnThreshold(t *testing.T) {
	db := newTestDB(t)
	assignment, _ := seedAssignmentWithSubmissions(t, db, 2)

	// Upstream says plagiarised but the percentage sits under the threshold:
	// the score is recorded yet no match rows are written.
	checker := &checkerStub{response: analysis.SimilarityResponse{Results: []analysis.PairResult{
		{File1Index: 0, File2Index: 1, SimilarityScore: 0.60, IsPlagiarised: true},
	}}}

	svc := NewPlagiarismService(repository.NewSubmissionRepository(db), repository.NewAssignmentRepository(db), checker, nil, 75, testLogger())

	report, err := svc.Check(context.Background(), assignment.ID)
	require.NoError(t, err)

	for _, submission := range report.Submissions {
		require.Equal(t, models.SubmissionStatusChecked, submission.Status)
		require.InDelta(t, 60.0, *submission.PlagiarismScore, 0.001)
		require.Empty(t, submission.MatchedWith)
	}
}

func TestPlagiarismCheckDiscardsOutOfRangePairs(t *testing.T) {
	db := newTestDB(t)
	assignment, _ := seedAssignmentWithSubmissions(t, db, 2)

	checker := &checkerStub{response: analysis.SimilarityResponse{Results: []analysis.PairResult{
		{File1Index: 0, File2Index: 9, SimilarityScore: 0.99, IsPlagiarised: true},
		{File1Index: -1, File2Index: 1, SimilarityScore: 0.98, IsPlagiarised: true},
		{File1Index: 0, File2Index: 1, SimilarityScore: 0.50, IsPlagiarised: false},
	}}}

	svc := NewPlagiarismService(repository.NewSubmissionRepository(db), repository.NewAssignmentRepository(db), checker, nil, 75, testLogger())

	report, err := svc.Check(context.Background(), assignment.ID)
	require.NoError(t, err)

	require.Equal(t, 0, report.Stats.Flagged)
	require.InDelta(t, 50.0, report.Stats.HighestSimilarity, 0.001)
}

func TestPlagiarismCheckReplacesMatchesOnRerun(t *testing.T) {
	db := newTestDB(t)
	assignment, _ := seedAssignmentWithSubmissions(t, db, 2)

	subRepo := repository.NewSubmissionRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)

	checker := &checkerStub{response: analysis.SimilarityResponse{Results: []analysis.PairResult{
		{File1Index: 0, File2Index: 1, SimilarityScore: 0.95, IsPlagiarised: true},
	}}}
	svc := NewPlagiarismService(subRepo, assignmentRepo, checker, nil, 75, testLogger())

	first, err := svc.Check(context.Background(), assignment.ID)
	require.NoError(t, err)
	require.Equal(t, 2, first.Stats.Flagged)
	require.Len(t, first.Submissions[0].MatchedWith, 1)

	// The re-run comes back clean: statuses, scores and matches are all
	// overwritten, not accumulated.
	checker.response = analysis.SimilarityResponse{Results: []analysis.PairResult{
		{File1Index: 0, File2Index: 1, SimilarityScore: 0.10, IsPlagiarised: false},
	}}

	second, err := svc.Check(context.Background(), assignment.ID)
	require.NoError(t, err)
	require.Equal(t, 0, second.Stats.Flagged)
	for _, submission := range second.Submissions {
		require.Equal(t, models.SubmissionStatusChecked, submission.Status)
		require.InDelta(t, 10.0, *submission.PlagiarismScore, 0.001)
		require.Empty(t, submission.MatchedWith)
	}

	var matchCount int64
	require.NoError(t, db.Model(&models.SubmissionMatch{}).Count(&matchCount).Error)
	require.Zero(t, matchCount)
}

func TestPlagiarismCheckRequiresTwoSubmissions(t *testing.T) {
	db := newTestDB(t)
	assignment, _ := seedAssignmentWithSubmissions(t, db, 1)

	checker := &checkerStub{}
	svc := NewPlagiarismService(repository.NewSubmissionRepository(db), repository.NewAssignmentRepository(db), checker, nil, 75, testLogger())

	_, err := svc.Check(context.Background(), assignment.ID)
	require.ErrorIs(t, err, ErrNotEnoughSubmissions)
	require.Zero(t, checker.calls)
}

func TestPlagiarismCheckUnknownAssignment(t *testing.T) {
	db := newTestDB(t)

	svc := NewPlagiarismService(repository.NewSubmissionRepository(db), repository.NewAssignmentRepository(db), &checkerStub{}, nil, 75, testLogger())

	_, err := svc.Check(context.Background(), 999)
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestPlagiarismCheckLeavesStateOnUpstreamFailure(t *testing.T) {
	db := newTestDB(t)
	assignment, _ := seedAssignmentWithSubmissions(t, db, 2)

	upstream := &analysis.UpstreamError{Service: "similarity", StatusCode: 500, Detail: "model unavailable"}
	checker := &checkerStub{err: upstream}

	svc := NewPlagiarismService(repository.NewSubmissionRepository(db), repository.NewAssignmentRepository(db), checker, nil, 75, testLogger())

	_, err := svc.Check(context.Background(), assignment.ID)
	require.Error(t, err)

	var gotUpstream *analysis.UpstreamError
	require.ErrorAs(t, err, &gotUpstream)

	var submissions []models.Submission
	require.NoError(t, db.Where("assignment_id = ?", assignment.ID).Find(&submissions).Error)
	for _, submission := range submissions {
		require.Equal(t, models.SubmissionStatusPending, submission.Status)
		require.Nil(t, submission.PlagiarismScore)
	}
}

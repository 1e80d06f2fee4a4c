package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/Prajjwal888/Smart-Check-AI/internal/dto"
	"github.com/Prajjwal888/Smart-Check-AI/internal/models"
	"github.com/Prajjwal888/Smart-Check-AI/internal/repository"
)

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")

func TestSubmitCreatesPendingSubmission(t *testing.T) {
	db := newTestDB(t)
	assignment, seeded := seedAssignmentWithSubmissions(t, db, 1)
	studentID := seeded[0].StudentID + 100

	student := models.User{Role: models.RoleStudent, Name: "New Student", Email: "new@example.com", PasswordHash: "x"}
	student.ID = studentID
	require.NoError(t, db.Create(&student).Error)

	svc := NewSubmissionService(
		repository.NewSubmissionRepository(db),
		repository.NewAssignmentRepository(db),
		validator.New(validator.WithRequiredStructEnabled()),
		&uploaderStub{},
		nil,
		time.Minute,
		testLogger(),
	)

	file := newTestFileHeader(t, "homework.pdf", pdfBytes)
	created, err := svc.Submit(context.Background(), studentID, dto.SubmissionCreateRequest{AssignmentID: assignment.ID}, file)
	require.NoError(t, err)

	require.Equal(t, models.SubmissionStatusPending, created.Status)
	require.Equal(t, assignment.ID, created.AssignmentID)
	require.Equal(t, studentID, created.StudentID)
	require.Contains(t, created.FileURL, "homework.pdf")
	require.Nil(t, created.Grade)
}

func TestSubmitSupersedesPreviousSubmission(t *testing.T) {
	db := newTestDB(t)
	assignment, seeded := seedAssignmentWithSubmissions(t, db, 1)

	// Give the existing submission a full plagiarism and evaluation history.
	previous := seeded[0]
	require.NoError(t, db.Model(&models.Submission{}).Where("id = ?", previous.ID).Updates(map[string]interface{}{
		"status":           models.SubmissionStatusFlagged,
		"plagiarism_score": 88.0,
		"grade":            55.0,
	}).Error)
	require.NoError(t, db.Create(&models.SubmissionMatch{SubmissionID: previous.ID, MatchedStudentID: 42, Similarity: 88}).Error)
	require.NoError(t, db.Create(&models.SubmissionResult{SubmissionID: previous.ID, Question: 1, Score: 3}).Error)

	svc := NewSubmissionService(
		repository.NewSubmissionRepository(db),
		repository.NewAssignmentRepository(db),
		validator.New(validator.WithRequiredStructEnabled()),
		&uploaderStub{},
		nil,
		time.Minute,
		testLogger(),
	)

	file := newTestFileHeader(t, "resubmission.pdf", pdfBytes)
	created, err := svc.Submit(context.Background(), previous.StudentID, dto.SubmissionCreateRequest{AssignmentID: assignment.ID}, file)
	require.NoError(t, err)

	require.NotEqual(t, previous.ID, created.ID)
	require.Equal(t, models.SubmissionStatusPending, created.Status)
	require.Nil(t, created.Grade)
	require.Nil(t, created.PlagiarismScore)
	require.Empty(t, created.MatchedWith)
	require.Empty(t, created.Results)

	// Exactly one submission remains for the pair, and orphaned child rows
	// are gone with it.
	var count int64
	require.NoError(t, db.Model(&models.Submission{}).
		Where("assignment_id = ? AND student_id = ?", assignment.ID, previous.StudentID).
		Count(&count).Error)
	require.EqualValues(t, 1, count)

	require.NoError(t, db.Model(&models.SubmissionMatch{}).Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, db.Model(&models.SubmissionResult{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestSubmitRejectsUnknownAssignment(t *testing.T) {
	db := newTestDB(t)

	svc := NewSubmissionService(
		repository.NewSubmissionRepository(db),
		repository.NewAssignmentRepository(db),
		validator.New(validator.WithRequiredStructEnabled()),
		&uploaderStub{},
		nil,
		time.Minute,
		testLogger(),
	)

	file := newTestFileHeader(t, "homework.pdf", pdfBytes)
	_, err := svc.Submit(context.Background(), 1, dto.SubmissionCreateRequest{AssignmentID: 999}, file)
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestSubmitRejectsUnsupportedFileType(t *testing.T) {
	db := newTestDB(t)
	assignment, seeded := seedAssignmentWithSubmissions(t, db, 1)

	svc := NewSubmissionService(
		repository.NewSubmissionRepository(db),
		repository.NewAssignmentRepository(db),
		validator.New(validator.WithRequiredStructEnabled()),
		&uploaderStub{},
		nil,
		time.Minute,
		testLogger(),
	)

	pngHeader := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	file := newTestFileHeader(t, "image.png", pngHeader)
	_, err := svc.Submit(context.Background(), seeded[0].StudentID, dto.SubmissionCreateRequest{AssignmentID: assignment.ID}, file)
	require.ErrorIs(t, err, ErrUnsupportedFileType)
}

func TestStudentFeedStatusesAndLateTransition(t *testing.T) {
	db := newTestDB(t)
	assignment, seeded := seedAssignmentWithSubmissions(t, db, 1)
	studentID := seeded[0].StudentID

	// A second assignment the student never submitted, already past due.
	overdue := models.Assignment{
		Title:       "Overdue Assignment",
		Subject:     "Computer Science",
		Course:      "CS101",
		DueDate:     time.Now().Add(-24 * time.Hour),
		FileURL:     "https://cdn.example.com/overdue.pdf",
		CreatedByID: assignment.CreatedByID,
	}
	require.NoError(t, db.Create(&overdue).Error)

	// A third assignment with a pending submission past its deadline.
	lateAssignment := models.Assignment{
		Title:       "Late Assignment",
		Subject:     "Computer Science",
		Course:      "CS101",
		DueDate:     time.Now().Add(-time.Hour),
		FileURL:     "https://cdn.example.com/late.pdf",
		CreatedByID: assignment.CreatedByID,
	}
	require.NoError(t, db.Create(&lateAssignment).Error)
	lateSubmission := models.Submission{
		AssignmentID: lateAssignment.ID,
		StudentID:    studentID,
		FileURL:      "https://cdn.example.com/late-sub.pdf",
		Status:       models.SubmissionStatusPending,
	}
	require.NoError(t, db.Create(&lateSubmission).Error)

	svc := NewSubmissionService(
		repository.NewSubmissionRepository(db),
		repository.NewAssignmentRepository(db),
		validator.New(validator.WithRequiredStructEnabled()),
		&uploaderStub{},
		nil,
		time.Minute,
		testLogger(),
	)

	entries, err := svc.StudentFeed(context.Background(), studentID)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	byTitle := make(map[string]dto.StudentAssignmentEntry, len(entries))
	for _, entry := range entries {
		byTitle[entry.Assignment.Title] = entry
	}

	require.Equal(t, models.SubmissionStatusPending, byTitle[assignment.Title].Status)
	require.Equal(t, "not_submitted", byTitle["Overdue Assignment"].Status)
	require.Equal(t, models.SubmissionStatusLate, byTitle["Late Assignment"].Status)

	var persisted models.Submission
	require.NoError(t, db.First(&persisted, lateSubmission.ID).Error)
	require.Equal(t, models.SubmissionStatusLate, persisted.Status)
}

func TestStudentFeedUsesCache(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()
	cache := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	db := newTestDB(t)
	assignment, seeded := seedAssignmentWithSubmissions(t, db, 1)
	studentID := seeded[0].StudentID

	svc := NewSubmissionService(
		repository.NewSubmissionRepository(db),
		repository.NewAssignmentRepository(db),
		validator.New(validator.WithRequiredStructEnabled()),
		&uploaderStub{},
		cache,
		time.Minute,
		testLogger(),
	)

	first, err := svc.StudentFeed(context.Background(), studentID)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// A direct database change is invisible while the cache entry lives.
	require.NoError(t, db.Model(&models.Assignment{}).Where("id = ?", assignment.ID).Update("title", "Renamed").Error)

	second, err := svc.StudentFeed(context.Background(), studentID)
	require.NoError(t, err)
	require.Equal(t, first, second)

	// Submitting invalidates the cache and the next read sees fresh data.
	file := newTestFileHeader(t, "refresh.pdf", pdfBytes)
	_, err = svc.Submit(context.Background(), studentID, dto.SubmissionCreateRequest{AssignmentID: assignment.ID}, file)
	require.NoError(t, err)

	third, err := svc.StudentFeed(context.Background(), studentID)
	require.NoError(t, err)
	require.Equal(t, "Renamed", third[0].Assignment.Title)
}

func TestRecentForTeacherScopesByOwnership(t *testing.T) {
	db := newTestDB(t)
	assignment, seeded := seedAssignmentWithSubmissions(t, db, 2)

	var owner models.User
	require.NoError(t, db.First(&owner, assignment.CreatedByID).Error)

	other := models.User{Role: models.RoleTeacher, Name: "Other Teacher", Email: "other@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&other).Error)

	otherAssignment := models.Assignment{
		Title:       "Other Course Work",
		Subject:     "History",
		Course:      "H101",
		DueDate:     time.Now().Add(24 * time.Hour),
		FileURL:     "https://cdn.example.com/other.pdf",
		CreatedByID: other.ID,
	}
	require.NoError(t, db.Create(&otherAssignment).Error)
	require.NoError(t, db.Create(&models.Submission{
		AssignmentID: otherAssignment.ID,
		StudentID:    seeded[0].StudentID,
		FileURL:      "https://cdn.example.com/other-sub.pdf",
		Status:       models.SubmissionStatusPending,
	}).Error)

	svc := NewSubmissionService(
		repository.NewSubmissionRepository(db),
		repository.NewAssignmentRepository(db),
		validator.New(validator.WithRequiredStructEnabled()),
		&uploaderStub{},
		nil,
		time.Minute,
		testLogger(),
	)

	recent, err := svc.RecentForTeacher(context.Background(), assignment.CreatedByID, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	for _, submission := range recent {
		require.Equal(t, assignment.ID, submission.AssignmentID)
	}
}

package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Prajjwal888/Smart-Check-AI/internal/models"
)

// PlagiarismUpdate carries the aggregate plagiarism outcome for one
// submission. All fields are applied together so a document is never left
// half-updated.
type PlagiarismUpdate struct {
	SubmissionID uint
	Status       string
	Score        float64
	CheckedAt    time.Time
	Matches      []models.SubmissionMatch
}

// SubmissionRepository defines data operations for submissions.
type SubmissionRepository interface {
	ListByAssignment(ctx context.Context, assignmentID uint) ([]models.Submission, error)
	ListByAssignmentOrdered(ctx context.Context, assignmentID uint) ([]models.Submission, error)
	ListByAssignmentAndStatus(ctx context.Context, assignmentID uint, status string) ([]models.Submission, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.Submission, error)
	ListRecentForTeacher(ctx context.Context, teacherID uint, limit int) ([]models.Submission, error)
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	ReplaceForStudent(ctx context.Context, submission *models.Submission) error
	BulkApplyPlagiarism(ctx context.Context, updates []PlagiarismUpdate) error
	ApplyEvaluation(ctx context.Context, submission *models.Submission, results []models.SubmissionResult) error
	MarkLate(ctx context.Context, id uint) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Submission{}).
		Preload("Student").
		Preload("Matches.MatchedStudent")
}

func (r *submissionRepository) ListByAssignment(ctx context.Context, assignmentID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.baseQuery(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("created_at ASC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) ListByAssignmentOrdered(ctx context.Context, assignmentID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.baseQuery(ctx).
		Preload("Results").
		Where("assignment_id = ?", assignmentID).
		Order("plagiarism_score DESC NULLS LAST").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) ListByAssignmentAndStatus(ctx context.Context, assignmentID uint, status string) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.baseQuery(ctx).
		Preload("Results").
		Where("assignment_id = ?", assignmentID).
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) ListRecentForTeacher(ctx context.Context, teacherID uint, limit int) ([]models.Submission, error) {
	if limit <= 0 {
		limit = 20
	}

	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Assignment").
		Joins("JOIN assignments ON assignments.id = submissions.assignment_id").
		Where("assignments.created_by_id = ?", teacherID).
		Order("submissions.created_at DESC").
		Limit(limit).
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).Preload("Results").First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

// ReplaceForStudent creates the submission, superseding any previous row for
// the same (assignment, student) pair in the same transaction.
func (r *submissionRepository) ReplaceForStudent(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var previous []models.Submission
		if err := tx.
			Where("assignment_id = ?", submission.AssignmentID).
			Where("student_id = ?", submission.StudentID).
			Find(&previous).Error; err != nil {
			return err
		}

		for _, old := range previous {
			if err := tx.Where("submission_id = ?", old.ID).Delete(&models.SubmissionMatch{}).Error; err != nil {
				return err
			}
			if err := tx.Where("submission_id = ?", old.ID).Delete(&models.SubmissionResult{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.Submission{}, old.ID).Error; err != nil {
				return err
			}
		}

		return tx.Create(submission).Error
	})
}

// BulkApplyPlagiarism applies the plagiarism outcome for every submission in
// one transaction. Per submission the status, score, checked timestamp and
// match list change together; the match list is replaced, not appended to.
func (r *submissionRepository) BulkApplyPlagiarism(ctx context.Context, updates []PlagiarismUpdate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, update := range updates {
			fields := map[string]interface{}{
				"status":           update.Status,
				"plagiarism_score": update.Score,
				"checked_at":       update.CheckedAt,
			}
			if err := tx.Model(&models.Submission{}).
				Where("id = ?", update.SubmissionID).
				Updates(fields).Error; err != nil {
				return err
			}

			if err := tx.Where("submission_id = ?", update.SubmissionID).
				Delete(&models.SubmissionMatch{}).Error; err != nil {
				return err
			}

			for i := range update.Matches {
				update.Matches[i].ID = 0
				update.Matches[i].SubmissionID = update.SubmissionID
			}
			if len(update.Matches) > 0 {
				if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
					Create(&update.Matches).Error; err != nil {
					return err
				}
			}
		}

		return nil
	})
}

// ApplyEvaluation persists the grade, feedback, status and per-question
// results for a single submission. Result rows are replaced.
func (r *submissionRepository) ApplyEvaluation(ctx context.Context, submission *models.Submission, results []models.SubmissionResult) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fields := map[string]interface{}{
			"status":       submission.Status,
			"grade":        submission.Grade,
			"feedback":     submission.Feedback,
			"evaluated_at": submission.EvaluatedAt,
		}
		if err := tx.Model(&models.Submission{}).
			Where("id = ?", submission.ID).
			Updates(fields).Error; err != nil {
			return err
		}

		if err := tx.Where("submission_id = ?", submission.ID).
			Delete(&models.SubmissionResult{}).Error; err != nil {
			return err
		}

		for i := range results {
			results[i].ID = 0
			results[i].SubmissionID = submission.ID
		}
		if len(results) > 0 {
			if err := tx.Create(&results).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// MarkLate transitions a pending submission to late. A no-op for rows already
// past pending.
func (r *submissionRepository) MarkLate(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("id = ?", id).
		Where("status = ?", models.SubmissionStatusPending).
		Update("status", models.SubmissionStatusLate).Error
}

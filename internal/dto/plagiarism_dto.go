package dto

// PlagiarismStats summarizes one plagiarism check run.
type PlagiarismStats struct {
	Total             int     `json:"total"`
	Flagged           int     `json:"flagged"`
	HighestSimilarity float64 `json:"highest_similarity"`
}

// PlagiarismReport is returned after a plagiarism check, listing every
// submission sorted by plagiarism score descending.
type PlagiarismReport struct {
	Submissions []SubmissionResponse `json:"submissions"`
	Stats       PlagiarismStats      `json:"stats"`
}

package domain

// Progress is reported after each course of a classification pass.
type Progress struct {
	Index int // 1-based position of the course just handled
	Total int
	Found int // Empty courses found so far
}

// ProgressFunc observes classification progress.
type ProgressFunc func(Progress)

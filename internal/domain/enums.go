package domain

// TaskType is the pedagogical phase a plan entry belongs to.
// Phase 1 is LEARN, Phase 2 REVIEW, Phase 3 PRACTICE.
type TaskType string

const (
	TaskLearn    TaskType = "LEARN"
	TaskReview   TaskType = "REVIEW"
	TaskPractice TaskType = "PRACTICE"
)

// ValidTaskTypes is the canonical set of accepted task type strings.
var ValidTaskTypes = map[string]bool{
	"LEARN": true, "REVIEW": true, "PRACTICE": true,
}

// Phase returns the 1-based phase number of the task type, or 0 if unknown.
func (t TaskType) Phase() int {
	switch t {
	case TaskLearn:
		return 1
	case TaskReview:
		return 2
	case TaskPractice:
		return 3
	default:
		return 0
	}
}

type EntryStatus string

const (
	StatusPending    EntryStatus = "PENDING"
	StatusInProgress EntryStatus = "IN_PROGRESS"
	StatusCompleted  EntryStatus = "COMPLETED"
	StatusSkipped    EntryStatus = "SKIPPED"
)

// ValidEntryStatuses is the canonical set of accepted status strings.
var ValidEntryStatuses = map[string]bool{
	"PENDING": true, "IN_PROGRESS": true, "COMPLETED": true, "SKIPPED": true,
}

// SessionBucket names one of the four groupings used to present today's workload.
type SessionBucket string

const (
	BucketNone              SessionBucket = ""
	BucketSessionCourte     SessionBucket = "sessionCourte"
	BucketSessionLongue     SessionBucket = "sessionLongue"
	BucketSessionCourteSupp SessionBucket = "sessionCourteSupplementaire"
	BucketSessionLongueSupp SessionBucket = "sessionLongueSupplementaire"
)

// ValidSessionBuckets is the canonical set of accepted bucket tags.
var ValidSessionBuckets = map[string]bool{
	"sessionCourte": true, "sessionLongue": true,
	"sessionCourteSupplementaire": true, "sessionLongueSupplementaire": true,
}

// BlockMinutes is the length of one estimated study block.
const BlockMinutes = 25

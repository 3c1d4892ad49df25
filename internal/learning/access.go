package learning

import (
	"learnshop/internal/domain" // Lesson and question models
	"learnshop/internal/utils"  // Rounding
)

// Access reasons
const (
	ReasonPreview       = "preview"       // Free preview lesson
	ReasonEnrolled      = "enrolled"      // Enrolled and unlocked
	ReasonNotEnrolled   = "not_enrolled"  // Enrollment required
	ReasonLocked        = "locked"        // Locked by an admin
	ReasonPrerequisites = "prerequisites" // Required lessons not completed
	ReasonAdmin         = "admin"         // Admin bypass
)

// Access is the verdict for one lesson and one user
type Access struct {
	Accessible bool   `json:"isAccessible"`                   // Whether the lesson may be opened
	Reason     string `json:"reason"`                         // One of the Reason constants
	Missing    []uint `json:"missingPrerequisites,omitempty"` // Uncompleted required lessons
}

// CheckAccess decides whether a lesson can be opened.
// completed holds the IDs of lessons the user has finished.
func CheckAccess(lesson domain.Lesson, enrolled bool, completed map[uint]bool) Access {
	if lesson.IsPreview {
		return Access{Accessible: true, Reason: ReasonPreview} // Previews skip every other check
	}
	if !enrolled {
		return Access{Reason: ReasonNotEnrolled}
	}
	if lesson.IsLocked {
		return Access{Reason: ReasonLocked}
	}
	var missing []uint
	for _, id := range lesson.UnlockRequirements {
		if !completed[id] {
			missing = append(missing, id) // Keep requirement order
		}
	}
	if len(missing) > 0 {
		return Access{Reason: ReasonPrerequisites, Missing: missing}
	}
	return Access{Accessible: true, Reason: ReasonEnrolled}
}

// Bypass grants access without consulting enrollment or prerequisites
func Bypass() Access {
	return Access{Accessible: true, Reason: ReasonAdmin}
}

// Message returns a client facing explanation for a denied access
func (a Access) Message() string {
	switch a.Reason {
	case ReasonNotEnrolled:
		return "Enroll in this course to access this lesson"
	case ReasonLocked:
		return "This lesson is locked"
	case ReasonPrerequisites:
		return "Complete the required lessons first"
	default:
		return ""
	}
}

// CompletionPercentage returns completed/total as a percentage with two decimals
func CompletionPercentage(completed, total int) float64 {
	if total == 0 {
		return 0 // Empty course
	}
	return utils.Round2(float64(completed) / float64(total) * 100)
}

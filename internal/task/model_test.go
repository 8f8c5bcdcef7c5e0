package task

import "testing"

func TestValidStatus(t *testing.T) {
	valid := []Status{StatusPending, StatusOnHold, StatusInProgress, StatusUnderReview, StatusCompleted}
	for _, s := range valid {
		if !ValidStatus(s) {
			t.Errorf("%q should be valid", s)
		}
	}

	invalid := []Status{"", "done", "Pending", "in_progress", "completed "}
	for _, s := range invalid {
		if ValidStatus(s) {
			t.Errorf("%q should be invalid", s)
		}
	}
}

package route

import "testing"

func TestMembership(t *testing.T) {
	tests := []struct {
		path    string
		public  bool
		private bool
	}{
		{"/", true, true},
		{"/login", true, false},
		{"/forgot-password", true, false},
		{"/reset-password", true, false},
		{"/vancies-training", true, false},
		{"/register/assessor", true, false},
		{"/register/assessment-centre", true, false},
		{"/register/accreditor", true, false},
		{"/register/institute-proposal", true, false},
		{"/register/institute", true, false},
		{"/register/qms-auditor", true, false},
		{"/register/trainer", true, false},
		{"/vacancies-training", false, false},
		{"/my-task-index", false, true},
		{"/switch-role", false, true},
		{"/change-password", false, true},
		{"/user-dashboard", false, true},
		{"/nonexistent", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsPublic(tt.path); got != tt.public {
				t.Errorf("IsPublic(%q) = %v, want %v", tt.path, got, tt.public)
			}
			if got := IsPrivate(tt.path); got != tt.private {
				t.Errorf("IsPrivate(%q) = %v, want %v", tt.path, got, tt.private)
			}
			if got := Known(tt.path); got != (tt.public || tt.private) {
				t.Errorf("Known(%q) = %v", tt.path, got)
			}
		})
	}
}

func TestExactMatchOnly(t *testing.T) {
	// Membership is exact: no prefix or suffix matching.
	for _, path := range []string{"/login/", "/login?next=/", "/my-task-index/42", "/LOGIN"} {
		if Known(path) {
			t.Errorf("Known(%q) = true, want false (exact match only)", path)
		}
	}
}

package access

import "testing"

func TestLevelValid(t *testing.T) {
	tests := []struct {
		level Level
		want  bool
	}{
		{ViewOnly, true},
		{Edit, true},
		{Admin, true},
		{Level(""), false},
		{Level("view_only"), false},
		{Level("OWNER"), false},
	}
	for _, tt := range tests {
		if got := tt.level.Valid(); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestLevelAtLeast(t *testing.T) {
	tests := []struct {
		name  string
		level Level
		min   Level
		want  bool
	}{
		{"view only meets view only", ViewOnly, ViewOnly, true},
		{"view only fails edit", ViewOnly, Edit, false},
		{"view only fails admin", ViewOnly, Admin, false},
		{"edit meets view only", Edit, ViewOnly, true},
		{"edit meets edit", Edit, Edit, true},
		{"edit fails admin", Edit, Admin, false},
		{"admin meets everything", Admin, ViewOnly, true},
		{"admin meets edit", Admin, Edit, true},
		{"admin meets admin", Admin, Admin, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.level.AtLeast(tt.min); got != tt.want {
				t.Fatalf("%s.AtLeast(%s) = %v, want %v", tt.level, tt.min, got, tt.want)
			}
		})
	}
}

func TestUnknownLevelNeverSatisfiesMinimum(t *testing.T) {
	if Level("BOGUS").AtLeast(ViewOnly) {
		t.Fatal("unknown level must not satisfy any minimum")
	}
}

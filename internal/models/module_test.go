package models

import "testing"

func TestParseModuleStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    ModuleStatus
		wantErr bool
	}{
		{"draft", ModuleDraft, false},
		{"published", ModulePublished, false},
		{"archived", ModuleArchived, false},
		{"retired", "", true},
		{"", "", true},
		{"Published", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseModuleStatus(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseModuleStatus(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseModuleStatus(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from ModuleStatus
		to   ModuleStatus
		want bool
	}{
		{"draft to published", ModuleDraft, ModulePublished, true},
		{"published to archived", ModulePublished, ModuleArchived, true},
		{"draft straight to archived", ModuleDraft, ModuleArchived, false},
		{"published back to draft", ModulePublished, ModuleDraft, false},
		{"archived is terminal", ModuleArchived, ModulePublished, false},
		{"no self transition", ModulePublished, ModulePublished, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("%s.CanTransitionTo(%s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

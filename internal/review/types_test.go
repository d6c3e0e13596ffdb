package review

import "testing"

func TestSeverityRank(t *testing.T) {
	tests := []struct {
		severity Severity
		want     int
	}{
		{SeverityInfo, 1},
		{SeverityWarning, 2},
		{SeverityError, 3},
		{Severity("unknown"), 0},
	}
	for _, tt := range tests {
		got := SeverityRank(tt.severity)
		if got != tt.want {
			t.Errorf("SeverityRank(%q) = %d, want %d", tt.severity, got, tt.want)
		}
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeStandard, false},
		{"standard", ModeStandard, false},
		{"OFF", ModeOff, false},
		{" lenient ", ModeLenient, false},
		{"strict", ModeStrict, false},
		{"pedantic", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDefault(t *testing.T) {
	d := Default()
	if !d.Passed || d.Severity != SeverityInfo {
		t.Errorf("Default() = %+v", d)
	}
	if d.Issues == nil || d.Suggestions == nil {
		t.Error("Default() slices must be non-nil")
	}
	if len(d.Issues) != 0 || len(d.Suggestions) != 0 {
		t.Error("Default() slices must be empty")
	}
}

package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestFailPreservesKind(t *testing.T) {
	inner := Failf(FailValidation, "bad host")
	wrapped := Fail(FailAcquisition, inner)

	if wrapped.Kind != FailValidation {
		t.Errorf("Kind = %v, re-wrapping must not overwrite the original kind", wrapped.Kind)
	}
}

func TestFailWrapsUntyped(t *testing.T) {
	cause := fmt.Errorf("disk full")
	serr := Fail(FailCleaning, cause)

	if serr.Kind != FailCleaning {
		t.Errorf("Kind = %v, want cleaning", serr.Kind)
	}
	if !errors.Is(serr, cause) {
		t.Error("wrapped cause must stay reachable via errors.Is")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailureKind
	}{
		{"typed", Failf(FailTranscription, "whisper exited"), FailTranscription},
		{"wrapped typed", fmt.Errorf("run: %w", Failf(FailAnalysis, "quota")), FailAnalysis},
		{"untyped", fmt.Errorf("plain"), 0},
		{"nil", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStageErrorMessage(t *testing.T) {
	serr := Failf(FailComposition, "model refused")
	if !strings.Contains(serr.Error(), "composition") {
		t.Errorf("Error() = %q, want the stage name in the message", serr.Error())
	}
	if !strings.Contains(serr.Error(), "model refused") {
		t.Errorf("Error() = %q, want the cause in the message", serr.Error())
	}
}

func TestKindStrings(t *testing.T) {
	kinds := []FailureKind{FailValidation, FailAcquisition, FailCleaning, FailTranscription, FailAnalysis, FailComposition}
	seen := map[string]bool{}
	for _, k := range kinds {
		s := k.String()
		if s == "unknown" || seen[s] {
			t.Errorf("kind %d has bad or duplicate name %q", k, s)
		}
		seen[s] = true
	}
}

package errors

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"testing"
)

func TestHasCodeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("stage failed: %w", TiedWinners([]int{1, 3}))
	if !HasCode(err, CodeTiedWinners) {
		t.Error("HasCode should unwrap")
	}
	if HasCode(err, CodeWrongWinner) {
		t.Error("HasCode matched the wrong code")
	}
	if CodeOf(err) != CodeTiedWinners {
		t.Errorf("CodeOf = %q", CodeOf(err))
	}
	if CodeOf(fmt.Errorf("plain")) != "" {
		t.Error("CodeOf of a foreign error should be empty")
	}
}

func TestErrorMessagesCarryPayload(t *testing.T) {
	if msg := TiedWinners([]int{1, 3}).Error(); !strings.Contains(msg, "[1 3]") {
		t.Errorf("message %q should name the tied candidates", msg)
	}
	if msg := CouldNotRuleOut([]int{2, 0, 1}).Error(); !strings.Contains(msg, "[2 0 1]") {
		t.Errorf("message %q should name the suffix", msg)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	cases := []*Error{
		InvalidTimeout(),
		WrongWinner([]int{2}),
		CouldNotRuleOut([]int{0, 1}),
		TimeoutFindingAssertions(27.5),
	}
	for _, e := range cases {
		data, err := json.Marshal(e)
		if err != nil {
			t.Fatalf("marshal %v: %v", e.Code, err)
		}
		var back Error
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if back.Code != e.Code || back.DifficultyAtStop != e.DifficultyAtStop {
			t.Errorf("round trip of %v gave %+v", e.Code, back)
		}
	}
}

func TestTimeoutClampsNonFiniteBound(t *testing.T) {
	e := TimeoutFindingAssertions(math.Inf(1))
	if math.IsInf(e.DifficultyAtStop, 1) {
		t.Error("infinite bound should be clamped for JSON encoding")
	}
	if _, err := json.Marshal(e); err != nil {
		t.Errorf("marshal clamped error: %v", err)
	}
}

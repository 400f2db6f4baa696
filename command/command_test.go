package command

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		text    string
		want    Command
		wantErr bool
	}{
		{text: "reset", want: Command{Kind: Reset}},
		{text: "  Forward ", want: Command{Kind: Forward}},
		{text: "reverse", want: Command{Kind: Reverse}},
		{text: "STOP", want: Command{Kind: Stop}},
		{text: "clear", want: Command{Kind: Clear}},
		{text: "+", want: Command{Kind: StepForward}},
		{text: "-", want: Command{Kind: StepBackward}},
		{text: "now", want: Command{Kind: Now}},
		{text: "step 120", want: Command{Kind: StepTo, Generation: 120}},
		{text: "step -3", want: Command{Kind: StepTo, Generation: -3}},
		{text: "aB3_x-9", want: Command{Kind: Configure, Token: "aB3_x-9"}},
		{text: "", wantErr: true},
		{text: "step", wantErr: true},
		{text: "step ten", wantErr: true},
		{text: "step 1 2", wantErr: true},
		{text: "go faster", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := Parse(tt.text)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCommand) {
					t.Errorf("Parse(%q) error = %v, want ErrInvalidCommand", tt.text, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.text, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

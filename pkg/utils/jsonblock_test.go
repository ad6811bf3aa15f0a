package utils

import "testing"

func TestExtractJSONBlock(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   string
		wantOk bool
	}{
		{
			name:   "fenced json",
			text:   "Here you go:\n```json\n{\"title\": \"Go\"}\n```\nDone.",
			want:   `{"title": "Go"}`,
			wantOk: true,
		},
		{
			name:   "bare fence",
			text:   "```\n[1, 2, 3]\n```",
			want:   "[1, 2, 3]",
			wantOk: true,
		},
		{
			name:   "no fence object fallback",
			text:   `The answer is {"passed": true} as requested.`,
			want:   `{"passed": true}`,
			wantOk: true,
		},
		{
			name:   "no fence array fallback",
			text:   `Topics: ["a", "b"]`,
			want:   `["a", "b"]`,
			wantOk: true,
		},
		{
			name:   "no json at all",
			text:   "Sorry, I cannot help with that.",
			wantOk: false,
		},
		{
			name:   "empty",
			text:   "",
			wantOk: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSONBlock(tt.text)
			if ok != tt.wantOk {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOk)
			}
			if ok && got != tt.want {
				t.Errorf("block = %q, want %q", got, tt.want)
			}
		})
	}
}

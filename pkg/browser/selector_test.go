package browser

import "testing"

func TestTargetSelectorPriority(t *testing.T) {
	tests := []struct {
		name   string
		target Target
		want   string
	}{
		{
			name:   "aria-label wins over everything",
			target: Target{Tag: "input", Label: "Username", Name: "user", Placeholder: "user", CSS: "#u"},
			want:   "input[aria-label='Username']",
		},
		{
			name:   "name over placeholder",
			target: Target{Tag: "input", Name: "password", Placeholder: "Password"},
			want:   "input[name='password']",
		},
		{
			name:   "placeholder over testid",
			target: Target{Tag: "input", Placeholder: "Search", TestID: "search"},
			want:   "input[placeholder='Search']",
		},
		{
			name:   "testid is tag independent",
			target: Target{Tag: "button", TestID: "login-button"},
			want:   "[data-testid='login-button']",
		},
		{
			name:   "role attribute",
			target: Target{Tag: "div", Role: "button"},
			want:   "div[role='button']",
		},
		{
			name:   "explicit CSS fallback",
			target: Target{CSS: "a[href*='/t/']"},
			want:   "a[href*='/t/']",
		},
		{
			name:   "bare tag",
			target: Target{Tag: "h1"},
			want:   "h1",
		},
		{
			name:   "text-only target matches any element",
			target: Target{Text: "Log In"},
			want:   "*",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.target.Selector(); got != tt.want {
				t.Errorf("Selector() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTargetString(t *testing.T) {
	target := Target{Tag: "button", Text: "Log In"}
	want := `button {text="Log In"}`
	if got := target.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

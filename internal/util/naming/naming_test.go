package naming

import "testing"

func TestVM(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{
			name:     "control plane node",
			got:      VM("control-plane", 0, "demo.local"),
			expected: "control-plane-0-demo.local",
		},
		{
			name:     "worker node",
			got:      VM("worker", 2, "demo.local"),
			expected: "worker-2-demo.local",
		},
		{
			name:     "single label domain",
			got:      VM("worker", 0, "demo"),
			expected: "worker-0-demo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %q, expected %q", tt.got, tt.expected)
			}
		})
	}
}

func TestRunLog(t *testing.T) {
	if got := RunLog("abc123"); got != "kubeprism-abc123.log" {
		t.Errorf("got %q", got)
	}
}

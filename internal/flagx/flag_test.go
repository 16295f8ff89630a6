package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		known []string
		want  []string
	}{
		{
			name:  "separate value",
			args:  []string{"-d", "postgres://x", "-a", ":8080"},
			known: []string{"-d"},
			want:  []string{"-d", "postgres://x"},
		},
		{
			name:  "equals form",
			args:  []string{"-s=secret", "-a", ":8080"},
			known: []string{"-s"},
			want:  []string{"-s=secret"},
		},
		{
			name:  "unknown flags dropped",
			args:  []string{"-x", "1", "--y=2", "positional"},
			known: []string{"-c"},
			want:  []string{},
		},
		{
			name:  "flag at end without value",
			args:  []string{"-c"},
			known: []string{"-c"},
			want:  []string{"-c"},
		},
		{
			name:  "next flag is not a value",
			args:  []string{"-c", "-a", ":8080"},
			known: []string{"-c"},
			want:  []string{"-c"},
		},
		{
			name:  "order preserved",
			args:  []string{"-config=first.json", "-c", "second.json"},
			known: []string{"-c", "-config"},
			want:  []string{"-config=first.json", "-c", "second.json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.known))
		})
	}
}

func TestConfigFileFlag(t *testing.T) {
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })

	os.Args = []string{"server", "-a", ":9000", "-c", "cfg.json"}
	assert.Equal(t, "cfg.json", ConfigFileFlag())

	os.Args = []string{"server", "-config=other.json"}
	assert.Equal(t, "other.json", ConfigFileFlag())

	os.Args = []string{"server", "-a", ":9000"}
	assert.Equal(t, "", ConfigFileFlag())
}

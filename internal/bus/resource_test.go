package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResource(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Resource
		wantErr bool
	}{
		{
			name:  "gpib with controller port and address",
			input: "gpib::/dev/ttyUSB0::5",
			want:  Resource{Scheme: "gpib", Target: "/dev/ttyUSB0::5"},
		},
		{
			name:  "serial device path",
			input: "serial::/dev/ttyS0",
			want:  Resource{Scheme: "serial", Target: "/dev/ttyS0"},
		},
		{
			name:  "tcp host and port",
			input: "tcp::192.168.1.100:5025",
			want:  Resource{Scheme: "tcp", Target: "192.168.1.100:5025"},
		},
		{
			name:  "scheme is lowercased",
			input: "TCP::localhost:5025",
			want:  Resource{Scheme: "tcp", Target: "localhost:5025"},
		},
		{
			name:    "missing separator",
			input:   "/dev/ttyUSB0",
			wantErr: true,
		},
		{
			name:    "empty scheme",
			input:   "::/dev/ttyUSB0",
			wantErr: true,
		},
		{
			name:    "empty target",
			input:   "serial::",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseResource(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrBadResource)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResourceString(t *testing.T) {
	res := Resource{Scheme: "gpib", Target: "/dev/ttyUSB0::5"}
	assert.Equal(t, "gpib::/dev/ttyUSB0::5", res.String())
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register("fake", &fakeDriver{}))

	err := registry.Register("fake", &fakeDriver{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDriverConflict)
}

func TestRegistryUnknownScheme(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Open(Resource{Scheme: "bogus", Target: "x"}, DefaultTimeout)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownScheme)
}

func TestRegistryEnumerate(t *testing.T) {
	registry := NewRegistry()
	registry.MustRegister("fake", &fakeDriver{target: "dev0"})

	resources := registry.Enumerate()
	require.Len(t, resources, 1)
	assert.Equal(t, "fake::dev0", resources[0].String())
}

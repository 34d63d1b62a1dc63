package envstruct_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"noircase/internal/envstruct"
)

func TestPopulate(t *testing.T) {
	tests := []struct {
		name      string
		v         any
		lookupEnv func(string) (string, bool)
		want      any
		wantErr   error
	}{
		{
			name:      "not pointer",
			v:         struct{}{},
			lookupEnv: func(_ string) (string, bool) { return "", false },
			wantErr:   envstruct.ErrInvalidValue,
		},
		{
			name: "env not set and no default",
			v: &struct {
				APIKey string `env:"OPENAI_API_KEY"`
			}{},
			lookupEnv: func(_ string) (string, bool) { return "", false },
			wantErr:   envstruct.ErrEnvNotSet,
		},
		{
			name: "env is set",
			v: &struct {
				APIKey string `env:"OPENAI_API_KEY"`
			}{},
			lookupEnv: func(_ string) (string, bool) { return "sk-test", true },
			want:      &struct{ APIKey string }{APIKey: "sk-test"},
		},
		{
			name: "default applies when env missing",
			v: &struct {
				DBPath string `env:"NOIRCASE_SQLITE_URL" envDefault:"./noircase.sqlite"`
			}{},
			lookupEnv: func(_ string) (string, bool) { return "", false },
			want:      &struct{ DBPath string }{DBPath: "./noircase.sqlite"},
		},
		{
			name: "only strings are supported",
			v: &struct {
				Port int `env:"PORT"`
			}{},
			lookupEnv: func(_ string) (string, bool) { return "4000", true },
			wantErr:   envstruct.ErrInvalidValue,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := envstruct.Populate(tt.v, tt.lookupEnv)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.EqualValues(t, tt.want, tt.v)
		})
	}
}

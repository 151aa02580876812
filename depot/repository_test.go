package depot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRepository(t *testing.T) {
	testCases := []struct {
		input   string
		want    Repository
		wantErr bool
	}{
		{input: "octo/templates", want: Repository{Owner: "octo", Repo: "templates"}},
		{input: "octo/templates/extra", want: Repository{Owner: "octo", Repo: "templates/extra"}},
		{input: "/templates", want: Repository{Owner: "", Repo: "templates"}},
		{input: "octo/", want: Repository{Owner: "octo", Repo: ""}},
		{input: "/", want: Repository{}},
		{input: "octo", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseRepository(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRepositoryString(t *testing.T) {
	assert.Equal(t, "octo/templates", Repository{Owner: "octo", Repo: "templates"}.String())
}

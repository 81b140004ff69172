package errors

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatErrorPlain(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err  *CLIError
		want string
	}{
		"message only": {
			err:  NewRuntimeError("boom"),
			want: "Error [Runtime Error]: boom\n",
		},
		"usage and remediation": {
			err: MissingVersion(),
			want: "Error [Argument Error]: version is required\n" +
				"\nUsage: newsmerge merge <version>\n" +
				"\nTo fix this:\n" +
				"  • Provide the release version, e.g.: newsmerge merge 1.4.0\n",
		},
		"nil": {
			err:  nil,
			want: "",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FormatErrorPlain(tt.err))
		})
	}
}

func TestMessages(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("field 'news_dir': is required")

	tests := map[string]struct {
		err          *CLIError
		wantCategory ErrorCategory
		wantMessage  string
	}{
		"anchor": {
			err:          AnchorNotFound("CHANGELOG.rst", ".. current developments"),
			wantCategory: Runtime,
			wantMessage:  `anchor ".. current developments" not found in CHANGELOG.rst`,
		},
		"news dir": {
			err:          NewsDirNotFound("news"),
			wantCategory: Prerequisite,
			wantMessage:  "news directory not found: news",
		},
		"invalid config": {
			err:          InvalidConfig(cause),
			wantCategory: Configuration,
			wantMessage:  "invalid configuration: field 'news_dir': is required",
		},
		"fragment exists": {
			err:          FragmentExists("news/fix.rst"),
			wantCategory: Argument,
			wantMessage:  "fragment already exists: news/fix.rst",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.wantCategory, tt.err.Category)
			assert.Equal(t, tt.wantMessage, tt.err.Error())
			assert.NotEmpty(t, tt.err.Remediation)
		})
	}
}

func TestAsCLIError(t *testing.T) {
	t.Parallel()

	cause := os.ErrNotExist
	wrapped := WrapWithMessage(cause, Prerequisite, "reading changelog")

	tests := map[string]struct {
		err         error
		wantMessage string
		wantNil     bool
	}{
		"direct":  {err: NewConfigError("bad"), wantMessage: "bad"},
		"wrapped": {err: fmt.Errorf("merge: %w", wrapped), wantMessage: "reading changelog: file does not exist"},
		"plain":   {err: fmt.Errorf("plain"), wantNil: true},
		"nil":     {err: nil, wantNil: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := AsCLIError(tt.err)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantMessage, got.Message)
		})
	}
}

func TestWrap(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Wrap(nil, Runtime))
	assert.Nil(t, WrapWithMessage(nil, Runtime, "x"))

	err := Wrap(os.ErrPermission, Runtime)
	assert.Equal(t, os.ErrPermission.Error(), err.Error())
	assert.ErrorIs(t, err, os.ErrPermission)
	assert.Equal(t, "Runtime Error", err.Category.String())
	assert.Equal(t, "Error", ErrorCategory(42).String())
}

package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Success(map[string]string{"result": "success"}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, map[string]any{"result": "success"}, resp.Data)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf, ErrWriter: errBuf}

	require.NoError(t, formatter.Error(ErrCodeRuntime, "failed to open runtime", map[string]string{"url": "http://node"}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeRuntime, resp.Error.Code)
	assert.Equal(t, "failed to open runtime", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
	assert.Empty(t, errBuf.String(), "JSON errors belong on stdout")
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Success("3 checks listed"))
	assert.Equal(t, "3 checks listed\n", buf.String())
}

func TestOutputFormatter_TextErrorGoesToErrWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf, ErrWriter: errBuf}

	require.NoError(t, formatter.Error(ErrCodeConfigLoad, "failed to load config", "details"))
	assert.Empty(t, buf.String())
	assert.Equal(t, "Error [E002]: failed to load config\n", errBuf.String())
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	errBuf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: &bytes.Buffer{}, ErrWriter: errBuf, Verbose: true}

	require.NoError(t, formatter.Error(ErrCodeGeneric, "boom", "line 3"))
	assert.Contains(t, errBuf.String(), "Details: line 3")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		want    string
	}{
		{"enabled", true, "deploying 3 contracts\n"},
		{"disabled", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			errBuf := &bytes.Buffer{}
			formatter := &OutputFormatter{Writer: buf, ErrWriter: errBuf, Verbose: tt.verbose}

			formatter.VerboseLog("deploying %d contracts", 3)
			assert.Equal(t, tt.want, errBuf.String())
			assert.Empty(t, buf.String())
		})
	}
}

func TestOutputFormatter_GetErrWriterFallsBack(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Writer: buf}
	assert.Same(t, buf, formatter.GetErrWriter())
}

func TestOutputFormatter_Respond(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Respond(CLIResponse{
		Status: "error",
		Data:   []int{1, 2},
		Error:  &CLIError{Code: ErrCodeChecksFailed, Message: "1 of 2 check(s) failed"},
	}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, []any{float64(1), float64(2)}, resp.Data)
	assert.Equal(t, ErrCodeChecksFailed, resp.Error.Code)
}

func TestCLIResponse_OmitsEmptyFields(t *testing.T) {
	data, err := json.Marshal(CLIResponse{Status: "ok"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok"}`, string(data))
}

func TestExitError(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")

	err := WrapExitError(ExitCommandError, "failed to open runtime", cause)
	assert.Equal(t, "failed to open runtime: dial tcp: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)

	plain := NewExitError(ExitFailure, "1 of 6 check(s) failed")
	assert.Equal(t, "1 of 6 check(s) failed", plain.Error())
	assert.Nil(t, plain.Unwrap())
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"failure", NewExitError(ExitFailure, "failed"), ExitFailure},
		{"errored", NewExitError(ExitErrored, "errored"), ExitErrored},
		{"wrapped", fmt.Errorf("outer: %w", NewExitError(ExitErrored, "errored")), ExitErrored},
		{"plain error", errors.New("unknown flag: --bogus"), ExitCommandError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestFail(t *testing.T) {
	errBuf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: &bytes.Buffer{}, ErrWriter: errBuf}
	cause := errors.New("no such file")

	err := fail(formatter, ExitCommandError, ErrCodeConfigLoad, "failed to load config", cause, nil)

	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Error [E002]: failed to load config: no such file\n", errBuf.String())
}

package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avelements/internal/address"
	"avelements/internal/verification/policy"
)

func withService(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	path := filepath.Join(t.TempDir(), "avctl.yaml")
	cfg := "verification:\n  apis:\n    us_verify: " + srv.URL + "/v1/us_verifications\n"
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	t.Setenv("AV_CONFIG_FILE", path)
	t.Setenv("AV_STRICTNESS", "")
}

func execute(t *testing.T, args ...string) (verifyOutput, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		return verifyOutput{}, err
	}
	var parsed verifyOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &parsed))
	return parsed, nil
}

func TestVerifyDeliverable(t *testing.T) {
	withService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"deliverability":"deliverable","primary_line":"185 BERRY ST STE 6100","secondary_line":""}`))
	})

	out, err := execute(t, "verify", "--primary", "185 berry st ste 6100", "--city", "san francisco", "--state", "ca", "--zip", "94107")
	require.NoError(t, err)
	assert.Equal(t, address.OutcomeDeliverable, out.Outcome)
	assert.Equal(t, policy.VerdictAllow, out.Verdict)
	require.NotNil(t, out.Suggested)
	assert.Equal(t, "185 BERRY ST STE 6100", out.Suggested.Primary)
}

func TestVerifyStrictBlocksMissingUnit(t *testing.T) {
	withService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"deliverability":"deliverable_missing_unit","primary_line":"185 BERRY ST"}`))
	})

	out, err := execute(t, "verify", "--primary", "185 berry st", "--zip", "94107", "--strictness", "strict")
	require.NoError(t, err)
	assert.Equal(t, policy.VerdictBlock, out.Verdict)
	assert.NotEmpty(t, out.Message)
}

func TestVerifyRequiresPrimary(t *testing.T) {
	withService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("service must not be called")
	})

	_, err := execute(t, "verify", "--zip", "94107")
	require.Error(t, err)
}

func TestVerifyStrictnessOffSkipsService(t *testing.T) {
	withService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("service must not be called")
	})

	out, err := execute(t, "verify", "--primary", "185 berry st", "--zip", "94107", "--strictness", "false")
	require.NoError(t, err)
	assert.Equal(t, address.OutcomeDeliverable, out.Outcome)
	assert.Equal(t, policy.VerdictAllow, out.Verdict)
	assert.Nil(t, out.Suggested)
}

func TestVerifySuggestsDenormalizedLines(t *testing.T) {
	withService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"deliverability":"deliverable","primary_line":"185 BERRY ST STE 6100","secondary_line":"","components":{"secondary_designator":"STE"}}`))
	})

	t.Run("unit typed on its own line is split back out", func(t *testing.T) {
		out, err := execute(t, "verify", "--primary", "185 berry st", "--secondary", "ste 6100", "--zip", "94107")
		require.NoError(t, err)
		require.NotNil(t, out.Suggested)
		assert.Equal(t, "185 BERRY ST", out.Suggested.Primary)
		assert.Equal(t, "STE 6100", out.Suggested.Secondary)
	})

	t.Run("disabled keeps the service lines", func(t *testing.T) {
		out, err := execute(t, "verify", "--primary", "185 berry st", "--secondary", "ste 6100", "--zip", "94107", "--denormalize=false")
		require.NoError(t, err)
		require.NotNil(t, out.Suggested)
		assert.Equal(t, "185 BERRY ST STE 6100", out.Suggested.Primary)
		assert.Empty(t, out.Suggested.Secondary)
	})
}

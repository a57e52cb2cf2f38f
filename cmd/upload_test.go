package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/audience-cli/internal/ingest"
	"github.com/sells-group/audience-cli/internal/model"
	"github.com/sells-group/audience-cli/internal/snapshot"
)

func TestParseUploadArgs(t *testing.T) {
	uploads, err := parseUploadArgs([]string{"substack=subs.zip", "crm=contacts.csv"})
	require.NoError(t, err)
	require.Len(t, uploads, 2)
	assert.Equal(t, model.SourceSubstack, uploads[0].source)
	assert.Equal(t, "subs.zip", uploads[0].path)
	assert.Equal(t, model.SourceCRM, uploads[1].source)
	assert.Equal(t, "contacts.csv", uploads[1].path)
}

func TestParseUploadArgs_BadShape(t *testing.T) {
	_, err := parseUploadArgs([]string{"justafile.csv"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want source=file")

	_, err = parseUploadArgs([]string{"crm="})
	require.Error(t, err)
}

func TestParseUploadArgs_InvalidSource(t *testing.T) {
	_, err := parseUploadArgs([]string{"mailchimp=list.csv"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid source")
}

func TestRunUploads(t *testing.T) {
	dir := t.TempDir()
	subsPath := filepath.Join(dir, "subs.csv")
	crmPath := filepath.Join(dir, "crm.csv")
	require.NoError(t, os.WriteFile(subsPath, []byte("Email,Name\na@x.com,A\n"), 0o644))
	require.NoError(t, os.WriteFile(crmPath, []byte("Email,Company\na@x.com,Acme\n"), 0o644))

	store := snapshot.NewMemory(0)
	ctx := context.Background()

	err := runUploads(ctx, ingest.New(store), []fileUpload{
		{source: model.SourceSubstack, path: subsPath},
		{source: model.SourceCRM, path: crmPath},
	}, 2)
	require.NoError(t, err)

	subs, err := store.Load(ctx, model.SourceSubstack)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "a@x.com", subs[0].Email())

	crm, err := store.Load(ctx, model.SourceCRM)
	require.NoError(t, err)
	require.Len(t, crm, 1)
	assert.Equal(t, "Acme", crm[0]["company"])
}

func TestRunUploads_MissingFile(t *testing.T) {
	store := snapshot.NewMemory(0)

	err := runUploads(context.Background(), ingest.New(store), []fileUpload{
		{source: model.SourceSubstack, path: filepath.Join(t.TempDir(), "missing.csv")},
	}, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read")
}

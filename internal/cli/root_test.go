package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dcm "dicom-deid/internal/dicom"
	"dicom-deid/internal/dicom/dicomtest"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRoot(context.Background(), "abc123")
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRoot_Version(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "abc123\n", out)
}

func TestRoot_InvalidArguments(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "dicom-deid.log")

	out, err := execute(t, "-i", "bad name", "-a", "10Y", "--log-file", logFile)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	assert.Contains(t, out, "filename should be in this pattern: ^[a-zA-Z0-9\\-_.]*$")
	assert.Contains(t, out, "Age format is bad")
	assert.Contains(t, out, "please check the input parameters !")
}

func TestRoot_InvalidArgumentsWriteNoLog(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "dicom-deid.log")

	_, err := execute(t, "-i", "bad name", "--log-level", "LOUD", "--log-file", logFile)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NoFileExists(t, logFile)
}

func TestRoot_MissingInput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "dicom-deid.log")

	out, err := execute(t, "--log-file", logFile)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, out, "input directory is required")
}

func TestRoot_EndToEnd(t *testing.T) {
	work, opts := workspace(t, copyStub)
	dicomtest.Patient(t, filepath.Join(work, "subjA", "IM0001"), "Jane Doe", "PID42", "033Y")
	logFile := filepath.Join(work, "dicom-deid.log")
	outDir := filepath.Join(work, "anonymizedOut")

	out, err := execute(t,
		"-i", "subjA",
		"-p", "ANON001",
		"-a", "010Y",
		"-t", "StudyID",
		"--anonymizer", opts.AnonymizerBin,
		"-o", outDir,
		"--log-file", logFile,
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Complete! 1 folder(s), 1 file(s) edited")

	ds, err := dcm.ReadDicom(filepath.Join(outDir, "subjA", "IM0001"))
	require.NoError(t, err)
	assert.Equal(t, "ANON001", ds.GetPatientName())
	assert.Equal(t, "ANON001", ds.GetPatientID())
	assert.Equal(t, "010Y", ds.GetPatientAge())

	logData, err := os.ReadFile(logFile)
	require.NoError(t, err)
	log := string(logData)
	assert.Contains(t, log, "INFO  Started run with invocation: [")
	assert.Contains(t, log, "INFO  StudyID not in the dataset")
	assert.Contains(t, log, "INFO  Anonymized for this folder: subjA")
	assert.Contains(t, log, "INFO  Ended run with invocation: [")
}

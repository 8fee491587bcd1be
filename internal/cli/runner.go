package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"dicom-deid/internal/anonymizer"
	dcm "dicom-deid/internal/dicom"
	"dicom-deid/internal/fsutil"
	"dicom-deid/internal/logging"
	"dicom-deid/internal/progress"
	"dicom-deid/internal/scrubber"
)

// Summary describes a finished run.
type Summary struct {
	RunID     string
	OutputDir string
	Subjects  []string
	Retried   []string // subjects the journal had recorded as failed
	anonymizer.Stats

	// journal totals over every run that wrote to OutputDir
	JournalEdited int
	JournalFailed int
}

// Run executes the anonymization: every subdirectory of the input is first
// scrubbed by the external anonymizer into the output directory, then its
// files are edited in place. The first failure stops the run; whatever was
// written before it stays on disk.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	scrub, err := scrubber.New(opts.AnonymizerBin, opts.KeepPrivateTags)
	if err != nil {
		return nil, err
	}

	outDir, err := ensureOutputDir(opts)
	if err != nil {
		return nil, err
	}

	summary := &Summary{RunID: uuid.NewString(), OutputDir: outDir}
	ctx = logging.AppendCtx(ctx, slog.String("run", summary.RunID))
	logger := slog.Default()

	logger.InfoContext(ctx, fmt.Sprintf("Started run with invocation: %v", opts.Argv))

	tracker := progress.NewTracker(filepath.Join(outDir, progress.JournalName), summary.RunID, logger)
	directive := anonymizer.NewDirective(opts.PatientName, opts.PatientAge, opts.HashTags)
	editor := anonymizer.NewEditor(directive, logger, tracker)

	subjects, err := collectSubjects(ctx, opts.Input, outDir)
	if err != nil {
		return summary, err
	}

	for _, subj := range subjects {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		name, src := subj.name, subj.src

		if prev, ok := tracker.Subject(name); ok && prev.Status == progress.StatusError {
			summary.Retried = append(summary.Retried, name)
			logger.InfoContext(ctx, fmt.Sprintf("Retrying folder that failed before: %s", name), "error", prev.Error)
		}

		stats, err := processSubject(ctx, scrub, editor, src, outDir, name)
		summary.Stats.Add(stats)
		tracker.MarkSubject(name, err)
		if err != nil {
			logger.ErrorContext(ctx, fmt.Sprintf("Anonymization failed for this folder: %s", name), "error", err)
			return summary, fmt.Errorf("anonymize %s: %w", name, err)
		}

		summary.Subjects = append(summary.Subjects, name)
		logger.InfoContext(ctx, fmt.Sprintf("Anonymized for this folder: %s", name),
			"files", stats.Files, "hashed", stats.Hashed, "missing", stats.Missing)
	}

	summary.JournalEdited, summary.JournalFailed = tracker.GetStats()
	logger.InfoContext(ctx, fmt.Sprintf("Ended run with invocation: %v", opts.Argv),
		"edited", summary.JournalEdited, "failed", summary.JournalFailed)
	return summary, nil
}

type subject struct {
	name string
	src  string
}

// collectSubjects lists the subject folders of input. When input holds files
// but no folders, input itself is the only subject. The output directory is
// never a subject.
func collectSubjects(ctx context.Context, input, outDir string) ([]subject, error) {
	entries, err := dcm.ListEntries(input)
	if err != nil {
		return nil, err
	}

	var subjects []subject
	var looseFiles int
	for _, entry := range entries {
		src := filepath.Join(input, entry.Name())
		if sameDir(src, outDir) {
			continue
		}
		info, err := os.Stat(src)
		switch {
		case err == nil && info.IsDir():
			subjects = append(subjects, subject{name: entry.Name(), src: src})
		case err == nil && info.Mode().IsRegular():
			looseFiles++
		default:
			slog.InfoContext(ctx, fmt.Sprintf("Skipping %s: not a directory", src))
		}
	}

	if len(subjects) == 0 && looseFiles > 0 {
		abs, err := filepath.Abs(input)
		if err != nil {
			return nil, fmt.Errorf("could not resolve %s: %w", input, err)
		}
		return []subject{{name: filepath.Base(abs), src: input}}, nil
	}
	if looseFiles > 0 {
		slog.InfoContext(ctx, fmt.Sprintf("Skipping %d file(s) at the top of %s", looseFiles, input))
	}
	return subjects, nil
}

func sameDir(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

// processSubject scrubs src into outDir/name and edits the result.
func processSubject(ctx context.Context, scrub *scrubber.Scrubber, editor *anonymizer.Editor, src, outDir, name string) (anonymizer.Stats, error) {
	target, err := fsutil.EnsureDirectory(outDir, name)
	if err != nil {
		return anonymizer.Stats{}, err
	}

	slog.DebugContext(ctx, "running anonymizer", "args", strings.Join(scrub.Args(src, target), " "))
	output, err := scrub.Run(ctx, src, target)
	if output = strings.TrimSpace(output); output != "" {
		slog.DebugContext(ctx, "anonymizer output", "subject", name, "output", output)
	}
	if err != nil {
		return anonymizer.Stats{}, err
	}

	return editor.EditDirectory(ctx, target)
}

func ensureOutputDir(opts Options) (string, error) {
	out := opts.OutputDir
	if out == "" {
		out = DefaultOutputDir
	}
	if filepath.IsAbs(out) {
		return fsutil.EnsureDirectory(filepath.Dir(out), filepath.Base(out))
	}

	base := opts.BaseDir
	if base == "" {
		dir, err := fsutil.ExecutableDir()
		if err != nil {
			return "", err
		}
		base = dir
	}
	return fsutil.EnsureDirectory(base, out)
}

// printHeader prints the CLI header with configuration
func printHeader(w io.Writer, opts Options) {
	fmt.Fprintln(w, "DICOM Anonymizer")
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintf(w, "Input:     %s\n", opts.Input)
	if opts.PatientName != "" {
		fmt.Fprintf(w, "Name/ID:   %s\n", opts.PatientName)
	}
	if opts.PatientAge != "" {
		fmt.Fprintf(w, "Age:       %s\n", opts.PatientAge)
	}
	if tags := anonymizer.SplitHashTags(opts.HashTags); len(tags) > 0 {
		fmt.Fprintf(w, "Hash tags: %s\n", strings.Join(tags, ", "))
	}
	fmt.Fprintf(w, "Tool:      %s\n", opts.AnonymizerBin)
}

// printSummary prints the processing summary
func printSummary(w io.Writer, s *Summary) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintf(w, "Complete! %d folder(s), %d file(s) edited\n", len(s.Subjects), s.Files)
	fmt.Fprintf(w, "Tags:      %d hashed, %d missing, %d skipped\n", s.Hashed, s.Missing, s.Skipped)
	if len(s.Retried) > 0 {
		fmt.Fprintf(w, "Retried:   %s\n", strings.Join(s.Retried, ", "))
	}
	fmt.Fprintf(w, "Journal:   %d file(s) edited, %d failed\n", s.JournalEdited, s.JournalFailed)
	fmt.Fprintf(w, "Output:    %s\n", s.OutputDir)
	fmt.Fprintf(w, "Run:       %s\n", s.RunID)
}

// printValidation prints one diagnostic per rejected option.
func printValidation(w io.Writer, verr *ValidationError) {
	for _, msg := range verr.Messages() {
		fmt.Fprintln(w, msg)
	}
	fmt.Fprintln(w, "please check the input parameters !")
}

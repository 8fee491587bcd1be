package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"dicom-deid/internal/fsutil"
	"dicom-deid/internal/logging"
)

// NewRoot builds the dicom-deid command.
func NewRoot(ctx context.Context, gitsha string) *cobra.Command {
	opts := DefaultOptions()

	cmd := &cobra.Command{
		Use:   "dicom-deid",
		Short: "Anonymize the DICOM data within a folder",
		Long: `Anonymize every subject folder of the input directory.

Each folder is first copied and scrubbed by the external dicom-anonymizer tool
into anonymizedOut/<folder>, then patient name, ID and age are overwritten and
the listed tags are replaced by their MD5 digest.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Argv = os.Args
			out := cmd.OutOrStdout()

			// nothing is written, log file included, until the arguments pass
			if err := opts.Validate(); err != nil {
				var verr *ValidationError
				if errors.As(err, &verr) {
					printValidation(out, verr)
				}
				return err
			}

			logFile, _ := cmd.Flags().GetString("log-file")
			logLevel, _ := cmd.Flags().GetString("log-level")

			closer, err := setupLogging(logFile, logLevel)
			if err != nil {
				return err
			}
			defer closer.Close()

			printHeader(out, opts)
			summary, err := Run(ctx, opts)
			if err != nil {
				slog.ErrorContext(ctx, "run failed", "error", err)
				return err
			}
			printSummary(out, summary)
			return nil
		},
	}
	cmd.AddCommand(NewVersionCmd(ctx, gitsha))

	f := cmd.Flags()
	f.StringVarP(&opts.Input, "input", "i", "", "Input directory name for original dicom files.")
	f.StringVarP(&opts.HashTags, "hash-tags", "t", "", "Tag keywords to hash, in PatientName;PatientID; format.")
	f.StringVarP(&opts.PatientName, "patient-name", "p", "", "Anonymized patient name, also used as patient ID.")
	f.StringVarP(&opts.PatientAge, "patient-age", "a", "", "Anonymized patient age, e.g. 010Y, 006M, 012W.")
	f.BoolVar(&opts.Strict, "strict", false, "Require the whole age and hash-tags values to match their patterns.")
	f.StringVar(&opts.AnonymizerBin, "anonymizer", opts.AnonymizerBin, "External anonymizer binary.")
	f.BoolVar(&opts.KeepPrivateTags, "keep-private-tags", opts.KeepPrivateTags, "Pass --keepPrivateTags to the anonymizer.")
	f.StringVarP(&opts.OutputDir, "output", "o", opts.OutputDir, "Output directory, created next to the program unless absolute.")

	pf := cmd.PersistentFlags()
	pf.String("log-file", "", "Log file (default <program-dir>/<program-name>.log)")
	pf.String("log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	return cmd
}

func NewVersionCmd(ctx context.Context, gitsha string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "git sha for this build",
		Long:  "git sha for this build",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), gitsha)
		},
	}
	return cmd
}

// setupLogging points the process-wide logger at the log file.
func setupLogging(logFile, logLevel string) (io.Closer, error) {
	if logFile == "" {
		dir, err := fsutil.ExecutableDir()
		if err != nil {
			return nil, err
		}
		logFile = logging.DefaultFile(dir)
	}

	level, err := logging.ParseLevel(logLevel)
	w := logging.FileWriter(logFile)
	slog.SetDefault(logging.Logger(w, level))
	if err != nil {
		slog.Warn("Invalid log level, defaulting to INFO", "level", logLevel, "error", err)
	}
	return w, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"dicom-deid/internal/cli"
)

var (
	GitSHA string = "NA"
)

func main() {
	// cancel the run (and the running anonymizer) on ctrl-c / sigterm
	ctx, cnc := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cnc()

	err := cli.NewRoot(ctx, GitSHA).Execute()
	if err == nil {
		return
	}

	var verr *cli.ValidationError
	if errors.As(err, &verr) {
		// diagnostics were already printed
		cnc()
		os.Exit(2)
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	cnc()
	os.Exit(1)
}

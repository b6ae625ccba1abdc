package main

import (
	"context"
	"os"

	"github.com/pkg/errors"
)

func (cli *commandLine) importFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening csv file")
	}
	defer f.Close()

	summary, err := cli.importer.Import(context.Background(), f)
	if err != nil {
		return cli.translate(err)
	}

	cli.printf("Batch %s: imported %d of %d %s rows.\n", summary.BatchID, summary.Imported, summary.Total, summary.Kind)
	for _, rErr := range summary.Failed {
		cli.printf("  line %d: %s\n", rErr.Line, rErr.Error)
	}
	return nil
}

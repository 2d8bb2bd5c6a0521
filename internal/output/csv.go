package output

import (
	"encoding/csv"
	"os"
)

// CSVGraphWriter writes one row per changed path per commit.
type CSVGraphWriter struct{}

// Write outputs the change sets as CSV. Commits without visible changes
// produce no rows.
func (w *CSVGraphWriter) Write(report *GraphReport, options OutputOptions) error {
	writer, file, err := createCSVWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	if err := writer.Write([]string{"Commit", "Subject", "Path", "Kind"}); err != nil {
		return err
	}
	for _, c := range report.Graph.Nodes() {
		for _, ch := range options.Render.Filter.Apply(c.Changes) {
			if err := writer.Write([]string{c.ID.String(), c.Subject(), ch.Path, ch.Kind.String()}); err != nil {
				return err
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

func createCSVWriter(outputPath string) (*csv.Writer, *os.File, error) {
	if outputPath != "" {
		file, err := os.Create(outputPath)
		if err != nil {
			return nil, nil, err
		}
		return csv.NewWriter(file), file, nil
	}
	return csv.NewWriter(os.Stdout), nil, nil
}

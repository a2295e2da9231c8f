package cmd

import (
	"fmt"

	"github.com/jmurray2011/sumoknife/internal/sumo"

	"github.com/spf13/cobra"
)

var resultsWait bool

var resultsCmd = &cobra.Command{
	Use:   "results JOBID",
	Short: "Print a page of results of an existing search job",
	Long: `Check the status of a search job submitted earlier and print one
page of its messages or records.

Examples:
  # Second page of records of a job
  sumoknife results 1A2B3C4D5E6F --records --page 2

  # Wait for a running job to finish first
  sumoknife results 1A2B3C4D5E6F --wait`,
	Args: cobra.ExactArgs(1),
	RunE: runResults,
}

func init() {
	rootCmd.AddCommand(resultsCmd)
	addResultFlags(resultsCmd)
	resultsCmd.Flags().BoolVar(&resultsWait, "wait", false, "Poll a running job until it is done")
}

func runResults(cmd *cobra.Command, args []string) error {
	app := GetApp(cmd)
	ctx := cmd.Context()

	format, err := app.ResultsFormat()
	if err != nil {
		return err
	}
	loc, err := app.Location()
	if err != nil {
		return err
	}
	conn, err := app.Connection(app.Config.Connection)
	if err != nil {
		return err
	}
	f, err := app.Client(conn)
	if err != nil {
		return err
	}
	orch := app.Orchestrator(f)

	job := &sumo.Job{ID: args[0]}
	if err := orch.Check(ctx, job); err != nil {
		return err
	}
	if !job.Terminal() && resultsWait {
		err := orch.Poll(ctx, job, func(j *sumo.Job) {
			app.Render.Progress(fmt.Sprintf("Job %s", j.ID), j.Progress)
		})
		if err != nil {
			return err
		}
	}
	return renderJob(ctx, app, orch, job, format, loc)
}

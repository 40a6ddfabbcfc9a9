package cmd

import (
	"context"

	"withings/pkg/withings"

	"github.com/spf13/cobra"
)

// fetchFunc performs one data call with a ready client.
type fetchFunc func(ctx context.Context, client *withings.Client) (*withings.Response, error)

// runDataCommand fetches data with stored tokens, saves refreshed tokens and
// prints the reply body.
func runDataCommand(cmd *cobra.Command, opts *rootOptions, fetch fetchFunc) error {
	s, err := opts.newSession(cmd, true)
	if err != nil {
		return err
	}

	resp, callErr := fetch(cmd.Context(), s.client)
	// A refresh may have happened even when the call failed afterwards.
	if err := s.saveIfRefreshed(); err != nil {
		return err
	}
	if callErr != nil {
		return callErr
	}
	return printJSON(cmd.OutOrStdout(), []byte(resp.Body().Raw))
}

func newMeasuresCmd(opts *rootOptions) *cobra.Command {
	var q withings.MeasuresQuery

	cmd := &cobra.Command{
		Use:   "measures",
		Short: "Fetch body measures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDataCommand(cmd, opts, func(ctx context.Context, client *withings.Client) (*withings.Response, error) {
				return client.Measures(ctx, q)
			})
		},
	}

	cmd.Flags().Int64Var(&q.LastUpdate, "lastupdate", 0, "only return data modified since this unix timestamp")
	cmd.Flags().IntVar(&q.Offset, "offset", 0, "paging offset from a previous reply")
	cmd.Flags().IntSliceVar(&q.MeasTypes, "meastype", nil, "measure types to return (e.g. 1 for weight)")
	cmd.Flags().IntVar(&q.Category, "category", 0, "1 for real measures, 2 for user objectives")
	cmd.Flags().Int64Var(&q.StartDate, "startdate", 0, "start of the measurement window (unix timestamp)")
	cmd.Flags().Int64Var(&q.EndDate, "enddate", 0, "end of the measurement window (unix timestamp)")
	return cmd
}

func newActivityCmd(opts *rootOptions) *cobra.Command {
	return newSummaryCmd(opts, "activity", "Fetch daily activity summaries",
		func(ctx context.Context, client *withings.Client, q withings.DataQuery) (*withings.Response, error) {
			return client.Activity(ctx, q)
		})
}

func newSleepCmd(opts *rootOptions) *cobra.Command {
	return newSummaryCmd(opts, "sleep", "Fetch nightly sleep summaries",
		func(ctx context.Context, client *withings.Client, q withings.DataQuery) (*withings.Response, error) {
			return client.SleepSummary(ctx, q)
		})
}

func newSummaryCmd(opts *rootOptions, use, short string,
	fetch func(context.Context, *withings.Client, withings.DataQuery) (*withings.Response, error)) *cobra.Command {
	var q withings.DataQuery

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDataCommand(cmd, opts, func(ctx context.Context, client *withings.Client) (*withings.Response, error) {
				return fetch(ctx, client, q)
			})
		},
	}

	cmd.Flags().Int64Var(&q.LastUpdate, "lastupdate", 0, "only return data modified since this unix timestamp")
	cmd.Flags().IntVar(&q.Offset, "offset", 0, "paging offset from a previous reply")
	cmd.Flags().StringVar(&q.DataFields, "data-fields", "", "comma-separated fields (default: every summary field)")
	return cmd
}

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"dialogvec/internal/tui"
)

func newVocabCmd(a *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "vocab <scripts...>",
		Short: "Fit on the scripts and print the ranked vocabulary",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, summary, err := a.ingest(args)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), summary)

			selected := len(svc.Vocabulary())
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Rank", "Term", "P-Value", "High", "Low", "Selected"})
			table.SetAutoWrapText(false)
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetBorder(false)
			for i, r := range svc.Ranking() {
				if i >= selected && !all {
					break
				}
				table.Append([]string{
					strconv.Itoa(i + 1),
					r.Term,
					strconv.FormatFloat(r.PValue, 'g', 4, 64),
					strconv.Itoa(r.HighPresent),
					strconv.Itoa(r.LowPresent),
					strconv.FormatBool(i < selected),
				})
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Also list candidates that were not selected")
	return cmd
}

func newMatchCmd(a *app) *cobra.Command {
	var (
		query string
		k     int
	)
	cmd := &cobra.Command{
		Use:   "match <scripts...>",
		Short: "Find the training lines nearest to a query line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := a.ingest(args)
			if err != nil {
				return err
			}
			matches, err := svc.Query(query, k)
			if err != nil {
				return err
			}
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"#", "Speaker", "Distance", "Line"})
			table.SetAutoWrapText(false)
			table.SetBorder(false)
			for i, m := range matches {
				table.Append([]string{
					strconv.Itoa(i + 1),
					m.Record.Speaker,
					strconv.FormatFloat(m.Distance, 'f', 3, 64),
					m.Record.Line,
				})
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "Line to match")
	cmd.Flags().IntVar(&k, "k", 0, "Number of matches (default from config)")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}

func newFrameCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "frame <scripts...>",
		Short: "Write the training frame as CSV",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := a.ingest(args)
			if err != nil {
				return err
			}
			if out == "" {
				return svc.Frame().WriteCSV(cmd.OutOrStdout())
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := svc.Frame().WriteCSV(f); err != nil {
				return err
			}
			a.log.Info("Frame written", "path", out, "rows", svc.Frame().Len(), "columns", len(svc.Frame().Columns()))
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to this file instead of stdout")
	return cmd
}

func newSpeakersCmd(a *app) *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "speakers <scripts...>",
		Short: "List speakers with their most characteristic lines",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := a.ingest(args)
			if err != nil {
				return err
			}
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Code", "Speaker", "Lines", "Signature"})
			table.SetAutoWrapText(false)
			table.SetBorder(false)
			for _, p := range svc.Profiles(n) {
				table.Append([]string{
					strconv.Itoa(p.Code),
					p.Speaker,
					strconv.Itoa(p.Lines),
					strings.Join(p.Signature, " / "),
				})
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().IntVarP(&n, "lines", "n", 2, "Signature lines per speaker")
	return cmd
}

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui <scripts...>",
		Short: "Interactive speaker lookup",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, summary, err := a.ingest(args)
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(tui.New(svc, summary, a.cfg.Matcher.TopK), tea.WithAltScreen()).Run()
			return err
		},
	}
}

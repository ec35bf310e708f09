package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/mcqprep/internal/bank"
	"github.com/abhisek/mcqprep/internal/question"
)

var validateCmd = &cobra.Command{
	Use:   "validate [pool...]",
	Short: "Load question banks and report dropped records",
	Long: "Load each bank from the data directory, working directory and bank URL,\n" +
		"normalize it, and list every record that could not be admitted.\n" +
		"Pools: module1..module6, review. With no arguments every pool is checked.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := bank.AllPoolIDs()
		if len(args) > 0 {
			ids = ids[:0]
			for _, a := range args {
				src, err := parseSource(a)
				if err != nil {
					return err
				}
				ids = append(ids, string(src))
			}
		}

		e, err := openEnv(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer e.Close()

		samples, _ := cmd.Flags().GetBool("samples")
		failed := validatePools(cmd.Context(), cmd.OutOrStdout(), e.loader(samples), ids)
		if failed > 0 {
			return fmt.Errorf("%d of %d bank(s) unavailable", failed, len(ids))
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().Bool("samples", false, "Fall back to the bundled sample banks")
}

// validatePools prints a report per pool and returns how many failed.
func validatePools(ctx context.Context, w io.Writer, l bank.Loader, ids []string) int {
	failed := 0
	for _, id := range ids {
		res, err := bank.LoadPool(ctx, l, id, nil)
		if err != nil {
			failed++
			fmt.Fprintf(w, "✗ %-24s %v\n", bank.PoolName(id), err)
			continue
		}
		fmt.Fprintf(w, "✓ %-24s %d questions, %d dropped  (%s)\n",
			res.Pool.Name, res.Pool.Len(), len(res.Drops), res.Origin)
		printDrops(w, res.Drops)
	}
	return failed
}

func printDrops(w io.Writer, drops []*question.NormalizationError) {
	byReason := make(map[question.Reason][]string)
	var order []question.Reason
	for _, d := range drops {
		if _, ok := byReason[d.Reason]; !ok {
			order = append(order, d.Reason)
		}
		ref := d.ID
		if ref == "" {
			ref = fmt.Sprintf("#%d", d.Index+1)
		}
		byReason[d.Reason] = append(byReason[d.Reason], ref)
	}
	for _, r := range order {
		fmt.Fprintf(w, "    %-34s %s\n", string(r)+":", strings.Join(byReason[r], ", "))
	}
}
